package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
)

type CampaignInstanceAppService interface {
	FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignInstance, error)
	FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error)
}

type CampaignInstanceEmailAppService interface {
	Create(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error)
	Import(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput, importHash string) (*domain.CampaignInstanceEmail, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error)
	FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error)
}

type CampaignInstanceHandler struct {
	instances CampaignInstanceAppService
	emails    CampaignInstanceEmailAppService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewCampaignInstanceHandler(instances CampaignInstanceAppService, emails CampaignInstanceEmailAppService, validate *validator.Validate, logger *slog.Logger) *CampaignInstanceHandler {
	return &CampaignInstanceHandler{
		instances: instances,
		emails:    emails,
		validate:  validate,
		logger:    logger.With("handler", "campaign_instance"),
	}
}

func (h *CampaignInstanceHandler) GetInstance(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign instance id", http.StatusBadRequest, nil)
		return
	}
	inst, err := h.instances.FindByID(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

func (h *CampaignInstanceHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	var filter domain.CampaignInstanceFilter
	var err error
	if filter.CampaignID, err = queryUUID(r, "campaignId"); err == nil {
		if filter.VendorID, err = queryUUID(r, "vendorId"); err == nil {
			filter.ClientID, err = queryUUID(r, "clientId")
		}
	}
	if err != nil {
		jsonError(w, r, logger, "invalid id filter", http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit = queryInt(r, "limit", 0)
	filter.Offset = queryInt(r, "offset", 0)

	rows, count, err := h.instances.FindAndCountAll(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	if rows == nil {
		rows = []*domain.CampaignInstance{}
	}
	writeJSON(w, http.StatusOK, ListResponse[*domain.CampaignInstance]{Rows: rows, Count: count})
}

func (h *CampaignInstanceHandler) CreateEmail(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	var req CampaignInstanceEmailRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	e, err := h.emails.Create(r.Context(), actor, req.toInput())
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *CampaignInstanceHandler) ImportEmail(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	var req CampaignInstanceEmailImportRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	e, err := h.emails.Import(r.Context(), actor, req.Data.toInput(), req.ImportHash)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *CampaignInstanceHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign instance email id", http.StatusBadRequest, nil)
		return
	}
	var req CampaignInstanceEmailRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	e, err := h.emails.Update(r.Context(), actor, id, req.toInput())
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *CampaignInstanceHandler) ListEmails(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	campaignID, err := queryUUID(r, "campaignId")
	if err != nil {
		jsonError(w, r, logger, "invalid campaignId", http.StatusBadRequest, nil)
		return
	}
	filter := domain.CampaignInstanceEmailFilter{
		CampaignID:     campaignID,
		ToEmailAddress: r.URL.Query().Get("toEmailAddress"),
		Limit:          queryInt(r, "limit", 0),
		Offset:         queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("sent"); raw != "" {
		sent, err := strconv.ParseBool(raw)
		if err != nil {
			jsonError(w, r, logger, "sent must be true or false", http.StatusBadRequest, nil)
			return
		}
		filter.Sent = &sent
	}

	rows, count, err := h.emails.FindAndCountAll(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	if rows == nil {
		rows = []*domain.CampaignInstanceEmail{}
	}
	writeJSON(w, http.StatusOK, ListResponse[*domain.CampaignInstanceEmail]{Rows: rows, Count: count})
}
