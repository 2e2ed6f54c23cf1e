package http

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
)

// CampaignRequest is the body of create and update.
type CampaignRequest struct {
	Name               string          `json:"name" validate:"required,max=255"`
	Description        string          `json:"description" validate:"max=2000"`
	Type               string          `json:"type" validate:"required,oneof=Questionnaire Email"`
	Audience           string          `json:"audience" validate:"required,oneof=Vendors Clients"`
	DueDate            time.Time       `json:"dueDate" validate:"required"`
	Progress           int             `json:"progress" validate:"min=0,max=100"`
	TotalRecipients    int             `json:"totalRecipients" validate:"min=0"`
	QuestionnaireID    *uuid.UUID      `json:"questionnaireId"`
	Questionnaire      json.RawMessage `json:"questionnaire"`
	Vendors            []uuid.UUID     `json:"vendors"`
	Clients            []uuid.UUID     `json:"clients"`
	EmailTemplateID    *uuid.UUID      `json:"emailTemplateId"`
	EmailTemplateName  string          `json:"emailTemplateName" validate:"max=255"`
	DoServerValidation bool            `json:"doServerValidation"`
	To                 []string        `json:"to" validate:"dive,omitempty,oneof=primary support infoSec privacy"`
	CC                 []string        `json:"cc" validate:"dive,omitempty,oneof=primary support infoSec privacy"`
	BCC                []string        `json:"bcc" validate:"dive,omitempty,oneof=primary support infoSec privacy"`
	FromEmailAddress   string          `json:"fromEmailAddress" validate:"omitempty,email"`
	Subject            string          `json:"subject" validate:"max=998"`
	Body               string          `json:"body"`
	Attachments        []uuid.UUID     `json:"attachments"`
	domain.ReminderSettings
}

func (r CampaignRequest) toInput() domain.CampaignInput {
	return domain.CampaignInput{
		Name:               r.Name,
		Description:        r.Description,
		Type:               domain.CampaignType(r.Type),
		Audience:           domain.Audience(r.Audience),
		DueDate:            r.DueDate,
		Progress:           r.Progress,
		TotalRecipients:    r.TotalRecipients,
		QuestionnaireID:    r.QuestionnaireID,
		Questionnaire:      r.Questionnaire,
		Vendors:            r.Vendors,
		Clients:            r.Clients,
		EmailTemplateID:    r.EmailTemplateID,
		EmailTemplateName:  r.EmailTemplateName,
		DoServerValidation: r.DoServerValidation,
		To:                 r.To,
		CC:                 r.CC,
		BCC:                r.BCC,
		FromEmailAddress:   r.FromEmailAddress,
		Subject:            r.Subject,
		Body:               r.Body,
		Attachments:        r.Attachments,
		ReminderSettings:   r.ReminderSettings,
	}
}

// CampaignImportRequest wraps one imported campaign with its dedupe hash.
type CampaignImportRequest struct {
	Data       CampaignRequest `json:"data" validate:"required"`
	ImportHash string          `json:"importHash" validate:"required,max=255"`
}

type CampaignInstanceEmailRequest struct {
	CampaignID       *uuid.UUID `json:"campaignId"`
	ToEmailAddress   string     `json:"toEmailAddress" validate:"required,email"`
	FromEmailAddress string     `json:"fromEmailAddress" validate:"omitempty,email"`
	Subject          string     `json:"subject" validate:"max=998"`
	Body             string     `json:"body"`
	Sent             *time.Time `json:"sent"`
}

func (r CampaignInstanceEmailRequest) toInput() domain.CampaignInstanceEmailInput {
	return domain.CampaignInstanceEmailInput{
		CampaignID:       r.CampaignID,
		ToEmailAddress:   r.ToEmailAddress,
		FromEmailAddress: r.FromEmailAddress,
		Subject:          r.Subject,
		Body:             r.Body,
		Sent:             r.Sent,
	}
}

type CampaignInstanceEmailImportRequest struct {
	Data       CampaignInstanceEmailRequest `json:"data" validate:"required"`
	ImportHash string                       `json:"importHash" validate:"required,max=255"`
}

// ListResponse is the paged envelope of the list endpoints.
type ListResponse[T any] struct {
	Rows  []T `json:"rows"`
	Count int `json:"count"`
}

type AutocompleteResponse []domain.AutocompleteItem

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
