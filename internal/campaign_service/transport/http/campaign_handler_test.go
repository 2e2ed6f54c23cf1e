package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/middleware"
	httptransport "github.com/vendorrisk/golang_services/internal/campaign_service/transport/http"
)

var jwtSecret = []byte("handler-test-secret")

type MockCampaignService struct {
	mock.Mock
}

func (m *MockCampaignService) Create(ctx context.Context, actor domain.Actor, in domain.CampaignInput) (*domain.Campaign, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignService) Import(ctx context.Context, actor domain.Actor, in domain.CampaignInput, importHash string) (*domain.Campaign, error) {
	args := m.Called(ctx, actor, in, importHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInput) (*domain.Campaign, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignService) DestroyAll(ctx context.Context, actor domain.Actor, ids []uuid.UUID) error {
	return m.Called(ctx, actor, ids).Error(0)
}

func (m *MockCampaignService) FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Campaign, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignService) FindAllAutocomplete(ctx context.Context, actor domain.Actor, search string, limit int) ([]domain.AutocompleteItem, error) {
	args := m.Called(ctx, actor, search, limit)
	return args.Get(0).([]domain.AutocompleteItem), args.Error(1)
}

func (m *MockCampaignService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignFilter) ([]*domain.Campaign, int, error) {
	args := m.Called(ctx, actor, filter)
	rows, _ := args.Get(0).([]*domain.Campaign)
	return rows, args.Int(1), args.Error(2)
}

func (m *MockCampaignService) ReviewByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignReview, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignReview), args.Error(1)
}

func (m *MockCampaignService) Send(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.SendResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SendResult), args.Error(1)
}

type MockInstanceService struct {
	mock.Mock
}

func (m *MockInstanceService) FindByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CampaignInstance, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInstance), args.Error(1)
}

func (m *MockInstanceService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error) {
	args := m.Called(ctx, actor, filter)
	rows, _ := args.Get(0).([]*domain.CampaignInstance)
	return rows, args.Int(1), args.Error(2)
}

type MockInstanceEmailService struct {
	mock.Mock
}

func (m *MockInstanceEmailService) Create(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInstanceEmail), args.Error(1)
}

func (m *MockInstanceEmailService) Import(ctx context.Context, actor domain.Actor, in domain.CampaignInstanceEmailInput, importHash string) (*domain.CampaignInstanceEmail, error) {
	args := m.Called(ctx, actor, in, importHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInstanceEmail), args.Error(1)
}

func (m *MockInstanceEmailService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in domain.CampaignInstanceEmailInput) (*domain.CampaignInstanceEmail, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampaignInstanceEmail), args.Error(1)
}

func (m *MockInstanceEmailService) FindAndCountAll(ctx context.Context, actor domain.Actor, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error) {
	args := m.Called(ctx, actor, filter)
	rows, _ := args.Get(0).([]*domain.CampaignInstanceEmail)
	return rows, args.Int(1), args.Error(2)
}

type testAPI struct {
	router    http.Handler
	campaigns *MockCampaignService
	instances *MockInstanceService
	emails    *MockInstanceEmailService
	actor     domain.Actor
	token     string
}

func allPermissions() []string {
	return []string{
		domain.PermissionCampaignCreate, domain.PermissionCampaignEdit, domain.PermissionCampaignDestroy,
		domain.PermissionCampaignImport, domain.PermissionCampaignAutocomplete, domain.PermissionCampaignRead,
		domain.PermissionCampaignSend, domain.PermissionCampaignInstanceRead,
		domain.PermissionCampaignInstanceEmailsCreate, domain.PermissionCampaignInstanceEmailsEdit,
		domain.PermissionCampaignInstanceEmailsRead, domain.PermissionCampaignInstanceEmailsImport,
	}
}

func tokenFor(t *testing.T, actor domain.Actor, perms []string) string {
	t.Helper()
	claims := middleware.AccessClaims{
		TenantID:    actor.TenantID.String(),
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	require.NoError(t, err)
	return s
}

func newTestAPI(t *testing.T, sendLimiter func(http.Handler) http.Handler) *testAPI {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := validator.New(validator.WithRequiredStructEnabled())
	api := &testAPI{
		campaigns: new(MockCampaignService),
		instances: new(MockInstanceService),
		emails:    new(MockInstanceEmailService),
		actor:     domain.Actor{TenantID: uuid.New(), UserID: uuid.New()},
	}
	api.token = tokenFor(t, api.actor, allPermissions())

	router := chi.NewRouter()
	httptransport.RegisterRoutes(router,
		httptransport.NewCampaignHandler(api.campaigns, validate, logger),
		httptransport.NewCampaignInstanceHandler(api.instances, api.emails, validate, logger),
		httptransport.RouteConfig{JWTSecret: jwtSecret, SendLimiter: sendLimiter, Logger: logger},
	)
	api.router = router
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return a.doAs(t, a.token, method, "/api/v1/tenant/"+a.actor.TenantID.String()+path, body)
}

func (a *testAPI) doAs(t *testing.T, token, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func validCampaignBody() map[string]any {
	return map[string]any{
		"name":             "Q4 security review",
		"type":             "Questionnaire",
		"audience":         "Vendors",
		"dueDate":          "2026-11-30T00:00:00Z",
		"vendors":          []string{uuid.NewString()},
		"to":               []string{"primary"},
		"cc":               []string{"support"},
		"fromEmailAddress": "team@acme.test",
		"subject":          "Please complete",
		"body":             "Hello [[FIRST_NAME]]",
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httptransport.ErrorResponse {
	t.Helper()
	var resp httptransport.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestCampaignHandler_Create(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.campaigns.On("Create", mock.Anything, api.actor, mock.MatchedBy(func(in domain.CampaignInput) bool {
			return in.Name == "Q4 security review" &&
				in.Type == domain.CampaignTypeQuestionnaire &&
				in.Audience == domain.AudienceVendors &&
				len(in.Vendors) == 1 &&
				in.FromEmailAddress == "team@acme.test"
		})).Return(&domain.Campaign{ID: uuid.New(), Reference: 7, Name: "Q4 security review"}, nil).Once()

		rr := api.do(t, http.MethodPost, "/campaign", validCampaignBody())

		require.Equal(t, http.StatusCreated, rr.Code)
		var c domain.Campaign
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
		assert.Equal(t, int64(7), c.Reference)
		api.campaigns.AssertExpectations(t)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		api := newTestAPI(t, nil)
		body := validCampaignBody()
		body["type"] = "Survey"
		body["to"] = []string{"everyone"}
		delete(body, "name")

		rr := api.do(t, http.MethodPost, "/campaign", body)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "validation failed", resp.Error)
		details, ok := resp.Details.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "Name")
		assert.Contains(t, details, "Type")
		assert.Contains(t, details, "To[0]")
		api.campaigns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		api := newTestAPI(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tenant/"+api.actor.TenantID.String()+"/campaign", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+api.token)
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("RequiredFieldFromServerValidation", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.campaigns.On("Create", mock.Anything, api.actor, mock.Anything).
			Return(nil, &domain.RequiredFieldError{Field: "subject"}).Once()

		rr := api.do(t, http.MethodPost, "/campaign", validCampaignBody())

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"validation failed","details":{"subject":["required"]}}`, rr.Body.String())
	})
}

func TestCampaignHandler_AccessControl(t *testing.T) {
	api := newTestAPI(t, nil)

	t.Run("MissingToken", func(t *testing.T) {
		rr := api.doAs(t, "", http.MethodGet, "/api/v1/tenant/"+api.actor.TenantID.String()+"/campaign", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ForeignTenantPath", func(t *testing.T) {
		rr := api.doAs(t, api.token, http.MethodGet, "/api/v1/tenant/"+uuid.NewString()+"/campaign", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("MissingPermission", func(t *testing.T) {
		readOnly := tokenFor(t, api.actor, []string{domain.PermissionCampaignRead})
		rr := api.doAs(t, readOnly, http.MethodPost, "/api/v1/tenant/"+api.actor.TenantID.String()+"/campaign/"+uuid.NewString()+"/send", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		api.campaigns.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCampaignHandler_Send(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"AlreadySent", domain.ErrCampaignAlreadySent, http.StatusConflict},
		{"NotFound", domain.ErrNotFound, http.StatusNotFound},
		{"TransportFailure", errors.New("send email to a@x.com: smtp send: 421"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI(t, nil)
			id := uuid.New()
			api.campaigns.On("Send", mock.Anything, api.actor, id).Return(nil, tc.err).Once()

			rr := api.do(t, http.MethodPost, "/campaign/"+id.String()+"/send", nil)
			assert.Equal(t, tc.wantStatus, rr.Code)
			api.campaigns.AssertExpectations(t)
		})
	}

	t.Run("Sent", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.campaigns.On("Send", mock.Anything, api.actor, id).
			Return(&domain.SendResult{CampaignID: id, InstancesCreated: 3, EmailsRecorded: 4, EmailsSent: 4}, nil).Once()

		rr := api.do(t, http.MethodPost, "/campaign/"+id.String()+"/send", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var result domain.SendResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, 4, result.EmailsSent)
	})

	t.Run("RateLimited", func(t *testing.T) {
		limiter := func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
		}
		api := newTestAPI(t, limiter)
		rr := api.do(t, http.MethodPost, "/campaign/"+uuid.NewString()+"/send", nil)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		api.campaigns.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidID", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr := api.do(t, http.MethodPost, "/campaign/not-a-uuid/send", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCampaignHandler_ReadEndpoints(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.campaigns.On("FindAndCountAll", mock.Anything, api.actor, domain.CampaignFilter{
			Name: "review", Status: domain.CampaignStatusNotStarted, Limit: 10, Offset: 20, OrderBy: "dueDate_ASC",
		}).Return([]*domain.Campaign{{Name: "Q4 security review"}}, 21, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign?name=review&status=Not+Started&limit=10&offset=20&orderBy=dueDate_ASC", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Rows  []domain.Campaign `json:"rows"`
			Count int               `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 21, resp.Count)
		assert.Len(t, resp.Rows, 1)
	})

	t.Run("EmptyListIsArray", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.campaigns.On("FindAndCountAll", mock.Anything, api.actor, mock.Anything).Return(nil, 0, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign", nil)
		assert.JSONEq(t, `{"rows":[],"count":0}`, rr.Body.String())
	})

	t.Run("Autocomplete", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.campaigns.On("FindAllAutocomplete", mock.Anything, api.actor, "q4", 5).
			Return([]domain.AutocompleteItem{{ID: id, Label: "Q4 security review"}}, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign/autocomplete?query=q4&limit=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[{"id":"`+id.String()+`","label":"Q4 security review"}]`, rr.Body.String())
	})

	t.Run("Review", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.campaigns.On("ReviewByID", mock.Anything, api.actor, id).
			Return(&domain.CampaignReview{TotalVendorsOrClients: 2, NoEmailVendorsOrClients: 1, ComingDueDays: 10}, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign/"+id.String()+"/review", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var review domain.CampaignReview
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &review))
		assert.Equal(t, 10, review.ComingDueDays)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.campaigns.On("FindByID", mock.Anything, api.actor, id).Return(nil, domain.ErrNotFound).Once()

		rr := api.do(t, http.MethodGet, "/campaign/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "resource not found", decodeError(t, rr).Error)
	})
}

func TestCampaignHandler_WriteEndpoints(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.campaigns.On("Update", mock.Anything, api.actor, id, mock.Anything).
			Return(&domain.Campaign{ID: id, Name: "Q4 security review"}, nil).Once()

		rr := api.do(t, http.MethodPut, "/campaign/"+id.String(), validCampaignBody())
		assert.Equal(t, http.StatusOK, rr.Code)
		api.campaigns.AssertExpectations(t)
	})

	t.Run("DestroyAll", func(t *testing.T) {
		api := newTestAPI(t, nil)
		a, b := uuid.New(), uuid.New()
		api.campaigns.On("DestroyAll", mock.Anything, api.actor, []uuid.UUID{a, b}).Return(nil).Once()

		rr := api.do(t, http.MethodDelete, "/campaign?ids="+a.String()+","+b.String(), nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		api.campaigns.AssertExpectations(t)
	})

	t.Run("DestroyAllWithoutIDs", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr := api.do(t, http.MethodDelete, "/campaign", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("ImportDuplicate", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.campaigns.On("Import", mock.Anything, api.actor, mock.Anything, "legacy-1").
			Return(nil, domain.ErrImportHashExists).Once()

		rr := api.do(t, http.MethodPost, "/campaign/import", map[string]any{"data": validCampaignBody(), "importHash": "legacy-1"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("ImportWithoutHash", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr := api.do(t, http.MethodPost, "/campaign/import", map[string]any{"data": validCampaignBody()})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		api.campaigns.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCampaignInstanceHandler(t *testing.T) {
	t.Run("ListInstancesByCampaign", func(t *testing.T) {
		api := newTestAPI(t, nil)
		campaignID := uuid.New()
		api.instances.On("FindAndCountAll", mock.Anything, api.actor, domain.CampaignInstanceFilter{CampaignID: &campaignID}).
			Return([]*domain.CampaignInstance{{CampaignID: campaignID, Reference: 1}}, 1, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign-instance?campaignId="+campaignID.String(), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		api.instances.AssertExpectations(t)
	})

	t.Run("GetInstance", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.instances.On("FindByID", mock.Anything, api.actor, id).
			Return(&domain.CampaignInstance{ID: id, Questionnaire: json.RawMessage(`{"sections":[]}`)}, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign-instance/"+id.String(), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"questionnaire":{"sections":[]}`)
	})

	t.Run("CreateEmail", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.emails.On("Create", mock.Anything, api.actor, domain.CampaignInstanceEmailInput{
			ToEmailAddress: "sec@globex.test",
			Subject:        "Manual",
		}).Return(&domain.CampaignInstanceEmail{ID: uuid.New(), ToEmailAddress: "sec@globex.test"}, nil).Once()

		rr := api.do(t, http.MethodPost, "/campaign-instance-emails", map[string]any{"toEmailAddress": "sec@globex.test", "subject": "Manual"})
		assert.Equal(t, http.StatusCreated, rr.Code)
		api.emails.AssertExpectations(t)
	})

	t.Run("CreateEmailRejectsBadAddress", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr := api.do(t, http.MethodPost, "/campaign-instance-emails", map[string]any{"toEmailAddress": "not-an-address"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("ListUnsentEmails", func(t *testing.T) {
		api := newTestAPI(t, nil)
		unsent := false
		api.emails.On("FindAndCountAll", mock.Anything, api.actor, domain.CampaignInstanceEmailFilter{Sent: &unsent}).
			Return([]*domain.CampaignInstanceEmail{}, 0, nil).Once()

		rr := api.do(t, http.MethodGet, "/campaign-instance-emails?sent=false", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		api.emails.AssertExpectations(t)
	})

	t.Run("ListEmailsBadSentFlag", func(t *testing.T) {
		api := newTestAPI(t, nil)
		rr := api.do(t, http.MethodGet, "/campaign-instance-emails?sent=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("UpdateEmailNotFound", func(t *testing.T) {
		api := newTestAPI(t, nil)
		id := uuid.New()
		api.emails.On("Update", mock.Anything, api.actor, id, mock.Anything).Return(nil, domain.ErrNotFound).Once()

		rr := api.do(t, http.MethodPut, "/campaign-instance-emails/"+id.String(), map[string]any{"toEmailAddress": "a@x.com"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("ImportEmail", func(t *testing.T) {
		api := newTestAPI(t, nil)
		api.emails.On("Import", mock.Anything, api.actor, mock.Anything, "legacy-7").
			Return(&domain.CampaignInstanceEmail{ID: uuid.New()}, nil).Once()

		rr := api.do(t, http.MethodPost, "/campaign-instance-emails/import", map[string]any{
			"data":       map[string]any{"toEmailAddress": "a@x.com"},
			"importHash": "legacy-7",
		})
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}
