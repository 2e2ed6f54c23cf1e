package app

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	"github.com/vendorrisk/golang_services/internal/platform/database"
)

// --- In-memory store with transactional semantics ---

type tenantUser struct {
	tenantID uuid.UUID
	user     domain.User
}

type memState struct {
	campaigns map[uuid.UUID]domain.Campaign
	vendors   map[uuid.UUID]domain.Vendor
	clients   map[uuid.UUID]domain.Client
	users     []tenantUser
	templates map[uuid.UUID]domain.EmailTemplate
	files     map[uuid.UUID]uuid.UUID
	refs      map[string]int64
	instances []domain.CampaignInstance
	emails    []domain.CampaignInstanceEmail
}

func (s memState) clone() memState {
	out := memState{
		campaigns: make(map[uuid.UUID]domain.Campaign, len(s.campaigns)),
		vendors:   make(map[uuid.UUID]domain.Vendor, len(s.vendors)),
		clients:   make(map[uuid.UUID]domain.Client, len(s.clients)),
		users:     append([]tenantUser(nil), s.users...),
		templates: make(map[uuid.UUID]domain.EmailTemplate, len(s.templates)),
		files:     make(map[uuid.UUID]uuid.UUID, len(s.files)),
		refs:      make(map[string]int64, len(s.refs)),
		instances: append([]domain.CampaignInstance(nil), s.instances...),
		emails:    append([]domain.CampaignInstanceEmail(nil), s.emails...),
	}
	for k, v := range s.campaigns {
		out.campaigns[k] = v
	}
	for k, v := range s.vendors {
		out.vendors[k] = v
	}
	for k, v := range s.clients {
		out.clients[k] = v
	}
	for k, v := range s.templates {
		out.templates[k] = v
	}
	for k, v := range s.files {
		out.files[k] = v
	}
	for k, v := range s.refs {
		out.refs[k] = v
	}
	return out
}

type memStore struct {
	mu        sync.Mutex
	state     memState
	auditLogs []domain.AuditLog
	commits   int
	rollbacks int

	// userLookupErr, when set, is returned by every FindByEmail call.
	userLookupErr error
}

func newMemStore() *memStore {
	return &memStore{state: memState{}.clone()}
}

// WithinTransaction applies fn's writes directly and restores the snapshot
// taken at begin when fn fails.
func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, q database.Querier) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, nil); err != nil {
		m.state = snapshot
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *memStore) repositories() Repositories {
	return Repositories{
		Campaigns:      &memCampaigns{m},
		Vendors:        &memVendors{m},
		Clients:        &memClients{m},
		Users:          &memUsers{m},
		EmailTemplates: &memTemplates{m},
		Files:          &memFiles{m},
		References:     &memReferences{m},
		Instances:      &memInstances{m},
		Emails:         &memEmails{m},
		AuditLogs:      &memAuditLogs{m},
	}
}

func (m *memStore) addVendor(v domain.Vendor) domain.Vendor {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.state.vendors[v.ID] = v
	return v
}

func (m *memStore) addClient(c domain.Client) domain.Client {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.state.clients[c.ID] = c
	return c
}

func (m *memStore) addUser(tenantID uuid.UUID, u domain.User) domain.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.state.users = append(m.state.users, tenantUser{tenantID: tenantID, user: u})
	return u
}

func (m *memStore) addCampaign(c domain.Campaign) domain.Campaign {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.state.campaigns[c.ID] = c
	return c
}

func (m *memStore) campaign(id uuid.UUID) domain.Campaign {
	return m.state.campaigns[id]
}

func filterInTenant(tenantID uuid.UUID, ids []uuid.UUID, owner func(uuid.UUID) (uuid.UUID, bool)) []uuid.UUID {
	out := []uuid.UUID{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		t, ok := owner(id)
		if !ok || t != tenantID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type memCampaigns struct{ m *memStore }

func (r *memCampaigns) Create(_ context.Context, _ repository.Querier, c *domain.Campaign) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.m.state.campaigns[c.ID] = *c
	return nil
}

func (r *memCampaigns) Update(_ context.Context, _ repository.Querier, c *domain.Campaign) error {
	existing, ok := r.m.state.campaigns[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return domain.ErrNotFound
	}
	r.m.state.campaigns[c.ID] = *c
	return nil
}

func (r *memCampaigns) UpdateStatus(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID, status domain.CampaignStatus, updatedBy uuid.UUID) error {
	c, ok := r.m.state.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return domain.ErrNotFound
	}
	c.Status = status
	c.UpdatedBy = &updatedBy
	r.m.state.campaigns[id] = c
	return nil
}

func (r *memCampaigns) Delete(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID) error {
	c, ok := r.m.state.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(r.m.state.campaigns, id)
	return nil
}

func (r *memCampaigns) FindByID(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID) (*domain.Campaign, error) {
	c, ok := r.m.state.campaigns[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memCampaigns) FindByIDForUpdate(ctx context.Context, q repository.Querier, tenantID, id uuid.UUID) (*domain.Campaign, error) {
	return r.FindByID(ctx, q, tenantID, id)
}

func (r *memCampaigns) FindAndCountAll(_ context.Context, _ repository.Querier, tenantID uuid.UUID, filter domain.CampaignFilter) ([]*domain.Campaign, int, error) {
	var out []*domain.Campaign
	for _, c := range r.m.state.campaigns {
		c := c
		if c.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, len(out), nil
}

func (r *memCampaigns) FindAllAutocomplete(_ context.Context, _ repository.Querier, tenantID uuid.UUID, search string, limit int) ([]domain.AutocompleteItem, error) {
	items := []domain.AutocompleteItem{}
	for _, c := range r.m.state.campaigns {
		if c.TenantID == tenantID && strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			items = append(items, domain.AutocompleteItem{ID: c.ID, Label: c.Name})
		}
	}
	return items, nil
}

func (r *memCampaigns) ExistsByImportHash(_ context.Context, _ repository.Querier, tenantID uuid.UUID, importHash string) (bool, error) {
	for _, c := range r.m.state.campaigns {
		if c.TenantID == tenantID && c.ImportHash != nil && *c.ImportHash == importHash {
			return true, nil
		}
	}
	return false, nil
}

type memVendors struct{ m *memStore }

func (r *memVendors) FilterIDsInTenant(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterInTenant(tenantID, ids, func(id uuid.UUID) (uuid.UUID, bool) {
		v, ok := r.m.state.vendors[id]
		return v.TenantID, ok
	}), nil
}

func (r *memVendors) FindAllByIDs(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Vendor, error) {
	out := []*domain.Vendor{}
	for _, id := range ids {
		if v, ok := r.m.state.vendors[id]; ok && v.TenantID == tenantID {
			v := v
			out = append(out, &v)
		}
	}
	return out, nil
}

func (r *memVendors) CountWithoutEmail(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if v, ok := r.m.state.vendors[id]; ok && v.TenantID == tenantID && (v.SupportEmail == "" || v.InfoSecEmail == "") {
			n++
		}
	}
	return n, nil
}

type memClients struct{ m *memStore }

func (r *memClients) FilterIDsInTenant(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterInTenant(tenantID, ids, func(id uuid.UUID) (uuid.UUID, bool) {
		c, ok := r.m.state.clients[id]
		return c.TenantID, ok
	}), nil
}

func (r *memClients) FindAllByIDs(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]*domain.Client, error) {
	out := []*domain.Client{}
	for _, id := range ids {
		if c, ok := r.m.state.clients[id]; ok && c.TenantID == tenantID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memClients) CountWithoutEmail(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if c, ok := r.m.state.clients[id]; ok && c.TenantID == tenantID && c.InfoSecEmail == "" {
			n++
		}
	}
	return n, nil
}

type memUsers struct{ m *memStore }

func (r *memUsers) FindByEmail(_ context.Context, _ repository.Querier, tenantID uuid.UUID, email string) (*domain.User, error) {
	if r.m.userLookupErr != nil {
		return nil, r.m.userLookupErr
	}
	for _, tu := range r.m.state.users {
		if tu.tenantID == tenantID && strings.EqualFold(tu.user.Email, email) {
			u := tu.user
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memTemplates struct{ m *memStore }

func (r *memTemplates) FilterIDInTenant(_ context.Context, _ repository.Querier, tenantID uuid.UUID, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil {
		return nil, nil
	}
	t, ok := r.m.state.templates[*id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	kept := *id
	return &kept, nil
}

func (r *memTemplates) Create(_ context.Context, _ repository.Querier, t *domain.EmailTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.m.state.templates[t.ID] = *t
	return nil
}

func (r *memTemplates) FindByID(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID) (*domain.EmailTemplate, error) {
	t, ok := r.m.state.templates[id]
	if !ok || t.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

type memFiles struct{ m *memStore }

func (r *memFiles) FilterIDsInTenant(_ context.Context, _ repository.Querier, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return filterInTenant(tenantID, ids, func(id uuid.UUID) (uuid.UUID, bool) {
		t, ok := r.m.state.files[id]
		return t, ok
	}), nil
}

type memReferences struct{ m *memStore }

func (r *memReferences) Next(_ context.Context, _ repository.Querier, tenantID uuid.UUID, entity string) (int64, error) {
	key := tenantID.String() + "/" + entity
	r.m.state.refs[key]++
	return r.m.state.refs[key], nil
}

type memInstances struct{ m *memStore }

func (r *memInstances) Create(_ context.Context, _ repository.Querier, i *domain.CampaignInstance) error {
	if (i.VendorID == nil) == (i.ClientID == nil) {
		return domain.ErrValidation
	}
	i.ID = uuid.New()
	r.m.state.instances = append(r.m.state.instances, *i)
	return nil
}

func (r *memInstances) FindByID(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID) (*domain.CampaignInstance, error) {
	for _, i := range r.m.state.instances {
		if i.ID == id && i.TenantID == tenantID {
			i := i
			return &i, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memInstances) FindAndCountAll(_ context.Context, _ repository.Querier, tenantID uuid.UUID, filter domain.CampaignInstanceFilter) ([]*domain.CampaignInstance, int, error) {
	var out []*domain.CampaignInstance
	for _, i := range r.m.state.instances {
		i := i
		if i.TenantID == tenantID && (filter.CampaignID == nil || *filter.CampaignID == i.CampaignID) {
			out = append(out, &i)
		}
	}
	return out, len(out), nil
}

type memEmails struct{ m *memStore }

func (r *memEmails) Create(_ context.Context, _ repository.Querier, e *domain.CampaignInstanceEmail) error {
	e.ID = uuid.New()
	r.m.state.emails = append(r.m.state.emails, *e)
	return nil
}

func (r *memEmails) Update(_ context.Context, _ repository.Querier, e *domain.CampaignInstanceEmail) error {
	for i := range r.m.state.emails {
		if r.m.state.emails[i].ID == e.ID && r.m.state.emails[i].TenantID == e.TenantID {
			r.m.state.emails[i] = *e
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memEmails) MarkSent(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID, sent time.Time) error {
	for i := range r.m.state.emails {
		if r.m.state.emails[i].ID == id && r.m.state.emails[i].TenantID == tenantID {
			r.m.state.emails[i].Sent = &sent
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memEmails) FindByID(_ context.Context, _ repository.Querier, tenantID, id uuid.UUID) (*domain.CampaignInstanceEmail, error) {
	for _, e := range r.m.state.emails {
		if e.ID == id && e.TenantID == tenantID {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memEmails) FindAndCountAll(_ context.Context, _ repository.Querier, tenantID uuid.UUID, filter domain.CampaignInstanceEmailFilter) ([]*domain.CampaignInstanceEmail, int, error) {
	var out []*domain.CampaignInstanceEmail
	for _, e := range r.m.state.emails {
		e := e
		if e.TenantID == tenantID {
			out = append(out, &e)
		}
	}
	return out, len(out), nil
}

func (r *memEmails) ExistsByImportHash(_ context.Context, _ repository.Querier, tenantID uuid.UUID, importHash string) (bool, error) {
	for _, e := range r.m.state.emails {
		if e.TenantID == tenantID && e.ImportHash != nil && *e.ImportHash == importHash {
			return true, nil
		}
	}
	return false, nil
}

type memAuditLogs struct{ m *memStore }

func (r *memAuditLogs) Log(_ context.Context, entry domain.AuditLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.auditLogs = append(r.m.auditLogs, entry)
	return nil
}

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockEmailSender) SendTo(ctx context.Context, template domain.MailTemplate, to string, content domain.MailContent) error {
	args := m.Called(ctx, template, to, content)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
