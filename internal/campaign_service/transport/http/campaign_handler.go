package http

import (
	"context"
	"log/slog"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/middleware"
)

// CampaignAppService is the campaign use-case surface the handler needs.
type CampaignAppService interface {
	Create(ctx context.Context, actor domain.Actor, in domain.CampaignInput) (*domain.Campaign, error)
	Import(ctx context.Context, actor domain.Actor, in domain.CampaignInput, importHash string) (*domain.Campaign, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInput) (*domain.Campaign, error)
	DestroyAll(ctx context.Context, actor domain.Actor, ids []uuid.UUID) error
	FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Campaign, error)
	FindAllAutocomplete(ctx context.Context, actor domain.Actor, search string, limit int) ([]domain.AutocompleteItem, error)
	FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignFilter) ([]*domain.Campaign, int, error)
	ReviewByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignReview, error)
	Send(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.SendResult, error)
}

type CampaignHandler struct {
	service  CampaignAppService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCampaignHandler(service CampaignAppService, validate *validator.Validate, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		service:  service,
		validate: validate,
		logger:   logger.With("handler", "campaign"),
	}
}

// requestContext pulls the actor and a request-scoped logger. It answers 401
// itself when the request carries no user.
func requestContext(w http.ResponseWriter, r *http.Request, base *slog.Logger) (domain.Actor, *slog.Logger, bool) {
	logger := base.With("request_id", chiMiddleware.GetReqID(r.Context()))
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		jsonError(w, r, logger, "user not authenticated", http.StatusUnauthorized, nil)
		return domain.Actor{}, logger, false
	}
	return authUser.Actor(), logger.With("tenant_id", authUser.TenantID, "user_id", authUser.UserID), true
}

func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	var req CampaignRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), actor, req.toInput())
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	logger.InfoContext(r.Context(), "campaign created", "campaign_id", c.ID, "reference", c.Reference)
	writeJSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	var req CampaignImportRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	c, err := h.service.Import(r.Context(), actor, req.Data.toInput(), req.ImportHash)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign id", http.StatusBadRequest, nil)
		return
	}
	var req CampaignRequest
	if !decodeAndValidate(w, r, logger, h.validate, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), actor, id, req.toInput())
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) DestroyAll(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	ids, err := queryIDs(r, "ids")
	if err != nil || len(ids) == 0 {
		jsonError(w, r, logger, "ids must be a non-empty list of uuids", http.StatusBadRequest, nil)
		return
	}
	if err := h.service.DestroyAll(r.Context(), actor, ids); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CampaignHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	items, err := h.service.FindAllAutocomplete(r.Context(), actor, r.URL.Query().Get("query"), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, AutocompleteResponse(items))
}

func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.CampaignFilter{
		Name:     q.Get("name"),
		Type:     domain.CampaignType(q.Get("type")),
		Audience: domain.Audience(q.Get("audience")),
		Status:   domain.CampaignStatus(q.Get("status")),
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
		OrderBy:  q.Get("orderBy"),
	}
	rows, count, err := h.service.FindAndCountAll(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	if rows == nil {
		rows = []*domain.Campaign{}
	}
	writeJSON(w, http.StatusOK, ListResponse[*domain.Campaign]{Rows: rows, Count: count})
}

func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign id", http.StatusBadRequest, nil)
		return
	}
	c, err := h.service.FindByID(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign id", http.StatusBadRequest, nil)
		return
	}
	review, err := h.service.ReviewByID(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, logger, ok := requestContext(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		jsonError(w, r, logger, "invalid campaign id", http.StatusBadRequest, nil)
		return
	}
	logger.InfoContext(r.Context(), "campaign send requested", "campaign_id", id)
	result, err := h.service.Send(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
