package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CampaignType distinguishes questionnaire campaigns, which broadcast one
// instance per recipient, from plain email campaigns.
type CampaignType string

const (
	CampaignTypeQuestionnaire CampaignType = "Questionnaire"
	CampaignTypeEmail         CampaignType = "Email"
)

// Audience is the recipient population a campaign targets.
type Audience string

const (
	AudienceVendors Audience = "Vendors"
	AudienceClients Audience = "Clients"
)

// CampaignStatus is the lifecycle state of a campaign.
// Only NotStarted -> InProgress is driven by this service.
type CampaignStatus string

const (
	CampaignStatusNotStarted CampaignStatus = "Not Started"
	CampaignStatusInProgress CampaignStatus = "In Progress"
	CampaignStatusCompleted  CampaignStatus = "Completed"
)

// EntityCampaign is the counter key used for campaign references.
const EntityCampaign = "campaign"

// CampaignEmail is the email template embedded in a campaign. To, CC and BCC
// hold channel names, not addresses.
type CampaignEmail struct {
	To               []string    `json:"to"`
	CC               []string    `json:"cc"`
	BCC              []string    `json:"bcc"`
	FromEmailAddress string      `json:"fromEmailAddress"`
	Subject          string      `json:"subject"`
	Body             string      `json:"body"`
	Attachments      []uuid.UUID `json:"attachments"`
}

// ReminderSettings are stored with the campaign and consumed by the reminder scheduler.
type ReminderSettings struct {
	UseReminderEmailAfterCampaignEnrollment bool       `json:"useReminderEmailAfterCampaignEnrollment"`
	CampaignEnrollmentEmailTemplate         *uuid.UUID `json:"campaignEnrollmentEmailTemplate,omitempty"`
	DaysAfterCampaignEnrollment             *int       `json:"daysAfterCampaignEnrollment,omitempty"`

	UseRepeatReminderEmail             bool       `json:"useRepeatReminderEmail"`
	RepeatReminderEmailTemplate        *uuid.UUID `json:"repeatReminderEmailTemplate,omitempty"`
	IntervalDaysForRepeatReminderEmail *int       `json:"intervalDaysForRepeatReminderEmail,omitempty"`

	UseReminderEmailComingDue bool       `json:"useReminderEmailComingDue"`
	EmailTemplateComingDue    *uuid.UUID `json:"emailTemplateComingDue,omitempty"`
	DaysBeforeComingDue       *int       `json:"daysBeforeComingDue,omitempty"`

	UseReminderEmailOverdue bool       `json:"useReminderEmailOverdue"`
	EmailTemplateOverdue    *uuid.UUID `json:"emailTemplateOverdue,omitempty"`
	DaysAfterOverdue        *int       `json:"daysAfterOverdue,omitempty"`
}

type Campaign struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenantId"`
	Reference       int64           `json:"reference"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Type            CampaignType    `json:"type"`
	Audience        Audience        `json:"audience"`
	Status          CampaignStatus  `json:"status"`
	DueDate         time.Time       `json:"dueDate"`
	Progress        int             `json:"progress"`
	TotalRecipients int             `json:"totalRecipients"`
	QuestionnaireID *uuid.UUID      `json:"questionnaireId,omitempty"`
	Questionnaire   json.RawMessage `json:"questionnaire,omitempty"`
	Vendors         []uuid.UUID     `json:"vendors"`
	Clients         []uuid.UUID     `json:"clients"`
	EmailTemplateID *uuid.UUID      `json:"emailTemplateId,omitempty"`
	EmailTemplate   CampaignEmail   `json:"emailTemplate"`
	ReminderSettings
	ImportHash *string    `json:"importHash,omitempty"`
	CreatedBy  *uuid.UUID `json:"createdById,omitempty"`
	UpdatedBy  *uuid.UUID `json:"updatedById,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CampaignInput is the writable part of a campaign as accepted by create,
// update and import.
type CampaignInput struct {
	Name               string
	Description        string
	Type               CampaignType
	Audience           Audience
	DueDate            time.Time
	Progress           int
	TotalRecipients    int
	QuestionnaireID    *uuid.UUID
	Questionnaire      json.RawMessage
	Vendors            []uuid.UUID
	Clients            []uuid.UUID
	EmailTemplateID    *uuid.UUID
	EmailTemplateName  string
	DoServerValidation bool
	To                 []string
	CC                 []string
	BCC                []string
	FromEmailAddress   string
	Subject            string
	Body               string
	Attachments        []uuid.UUID
	ReminderSettings
}

// CampaignFilter narrows FindAndCountAll. Zero values mean "no filter".
type CampaignFilter struct {
	Name     string
	Type     CampaignType
	Audience Audience
	Status   CampaignStatus
	Limit    int
	Offset   int
	OrderBy  string
}

// AutocompleteItem is the id/label pair returned by autocomplete lookups.
type AutocompleteItem struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// CampaignReview summarises a campaign before it is sent.
type CampaignReview struct {
	TotalVendorsOrClients   int          `json:"totalVendorsOrClients"`
	NoEmailVendorsOrClients int          `json:"noEmailVendorsOrClients"`
	DueDate                 time.Time    `json:"dueDate"`
	CurrentDate             time.Time    `json:"currentDate"`
	Type                    CampaignType `json:"type"`
	Audience                Audience     `json:"audience"`
	ComingDueDays           int          `json:"comingDueDays"`
	EmailTemplateName       string       `json:"emailTemplateName"`
}

// SendResult reports what a successful send produced.
type SendResult struct {
	CampaignID       uuid.UUID `json:"campaignId"`
	InstancesCreated int       `json:"instancesCreated"`
	EmailsRecorded   int       `json:"emailsRecorded"`
	EmailsSent       int       `json:"emailsSent"`
}

// Actor identifies who performs an operation and in which tenant.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}
