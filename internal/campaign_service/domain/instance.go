package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type InstanceStatus string

const InstanceStatusNotStarted InstanceStatus = "Not Started"

// EntityCampaignInstanceEmail is the audit entity name of instance emails.
const EntityCampaignInstanceEmail = "campaignInstanceEmail"

// CampaignInstance tracks one recipient's progress on a questionnaire campaign.
// Exactly one of VendorID and ClientID is set.
type CampaignInstance struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenantId"`
	Reference     int64           `json:"reference"`
	CampaignID    uuid.UUID       `json:"campaignId"`
	Name          string          `json:"name"`
	DueDate       time.Time       `json:"dueDate"`
	Status        InstanceStatus  `json:"status"`
	Progress      int             `json:"progress"`
	Questionnaire json.RawMessage `json:"questionnaire,omitempty"`
	VendorID      *uuid.UUID      `json:"vendorId,omitempty"`
	ClientID      *uuid.UUID      `json:"clientId,omitempty"`
	UserIDs       []uuid.UUID     `json:"users"`
	CreatedBy     *uuid.UUID      `json:"createdById,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type CampaignInstanceFilter struct {
	CampaignID *uuid.UUID
	VendorID   *uuid.UUID
	ClientID   *uuid.UUID
	Limit      int
	Offset     int
}

// CampaignInstanceEmail is the record of one outbound email. It is written
// before transmission; Sent stays nil until the transport accepted the message.
type CampaignInstanceEmail struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenantId"`
	CampaignID       *uuid.UUID `json:"campaignId,omitempty"`
	ToEmailAddress   string     `json:"toEmailAddress"`
	FromEmailAddress string     `json:"fromEmailAddress"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	Sent             *time.Time `json:"sent,omitempty"`
	ImportHash       *string    `json:"importHash,omitempty"`
	CreatedBy        *uuid.UUID `json:"createdById,omitempty"`
	UpdatedBy        *uuid.UUID `json:"updatedById,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type CampaignInstanceEmailInput struct {
	CampaignID       *uuid.UUID
	ToEmailAddress   string
	FromEmailAddress string
	Subject          string
	Body             string
	Sent             *time.Time
}

type CampaignInstanceEmailFilter struct {
	CampaignID     *uuid.UUID
	ToEmailAddress string
	Sent           *bool
	Limit          int
	Offset         int
}

// EmailTemplate is a reusable tenant template.
type EmailTemplate struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenantId"`
	Name             string     `json:"name"`
	FromEmailAddress string     `json:"fromEmailAddress"`
	Subject          string     `json:"subject"`
	Body             string     `json:"body"`
	CreatedBy        *uuid.UUID `json:"createdById,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
