package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared across the service tests
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubClientRepo struct {
	byID    map[string]*domain.Client
	listErr error
	findErr error
}

func newStubClientRepo(clients ...*domain.Client) *stubClientRepo {
	r := &stubClientRepo{byID: make(map[string]*domain.Client)}
	for _, c := range clients {
		clone := *c
		r.byID[c.ID] = &clone
	}
	return r
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context, f ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	inFilter := func(c *domain.Client) bool {
		if c.IsDemo != f.IsDemo {
			return false
		}
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if len(f.ProgramIDs) == 0 {
			return true
		}
		for _, programID := range f.ProgramIDs {
			if c.EnrolledIn(programID) {
				return true
			}
		}
		return false
	}
	var matched []*domain.Client
	for _, c := range r.byID {
		if inFilter(c) {
			clone := *c
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) UpdateDVSafe(_ context.Context, id string, old, new bool) error {
	c, ok := r.byID[id]
	if !ok || c.DVSafe != old {
		return domain.ErrNotFound
	}
	c.DVSafe = new
	return nil
}

func (r *stubClientRepo) UpdateSharing(_ context.Context, id string, old, new domain.SharingPreference) error {
	c, ok := r.byID[id]
	if !ok || c.Sharing != old {
		return domain.ErrNotFound
	}
	c.Sharing = new
	return nil
}

func (r *stubClientRepo) UpdateStatus(_ context.Context, id string, old, new domain.ClientStatus) error {
	c, ok := r.byID[id]
	if !ok || c.Status != old {
		return domain.ErrNotFound
	}
	c.Status = new
	return nil
}

type blockKey struct{ principalID, clientID string }

type stubBlockRepo struct {
	active    map[blockKey]*domain.AccessBlock
	lookupErr error
}

func newStubBlockRepo() *stubBlockRepo {
	return &stubBlockRepo{active: make(map[blockKey]*domain.AccessBlock)}
}

func (r *stubBlockRepo) block(principalID, clientID string) {
	r.active[blockKey{principalID, clientID}] = &domain.AccessBlock{
		ID:          principalID + ":" + clientID,
		PrincipalID: principalID,
		ClientID:    clientID,
		IsActive:    true,
	}
}

func (r *stubBlockRepo) ActiveBlock(_ context.Context, principalID, clientID string) (*domain.AccessBlock, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	b, ok := r.active[blockKey{principalID, clientID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (r *stubBlockRepo) ActiveClientIDs(_ context.Context, principalID string) ([]string, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	var ids []string
	for key := range r.active {
		if key.principalID == principalID {
			ids = append(ids, key.clientID)
		}
	}
	return ids, nil
}

func (r *stubBlockRepo) Create(_ context.Context, b *domain.AccessBlock) error {
	r.active[blockKey{b.PrincipalID, b.ClientID}] = b
	return nil
}

func (r *stubBlockRepo) Deactivate(_ context.Context, id, deactivatedBy string) error {
	for key, b := range r.active {
		if b.ID == id {
			delete(r.active, key)
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubNoteRepo struct {
	byID      map[string]*domain.CaseNote
	createErr error
}

func newStubNoteRepo(notes ...*domain.CaseNote) *stubNoteRepo {
	r := &stubNoteRepo{byID: make(map[string]*domain.CaseNote)}
	for _, n := range notes {
		clone := *n
		r.byID[n.ID] = &clone
	}
	return r
}

func (r *stubNoteRepo) FindByID(_ context.Context, id string) (*domain.CaseNote, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *stubNoteRepo) ListByClient(_ context.Context, clientID string) ([]*domain.CaseNote, error) {
	var notes []*domain.CaseNote
	for _, n := range r.byID {
		if n.ClientID == clientID {
			clone := *n
			notes = append(notes, &clone)
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

func (r *stubNoteRepo) Create(_ context.Context, n *domain.CaseNote) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *n
	r.byID[n.ID] = &clone
	return nil
}

type stubDvRepo struct {
	byID map[string]*domain.DvRemovalRequest
}

func newStubDvRepo(reqs ...*domain.DvRemovalRequest) *stubDvRepo {
	r := &stubDvRepo{byID: make(map[string]*domain.DvRemovalRequest)}
	for _, req := range reqs {
		clone := *req
		r.byID[req.ID] = &clone
	}
	return r
}

func (r *stubDvRepo) FindByID(_ context.Context, id string) (*domain.DvRemovalRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubDvRepo) ListPending(_ context.Context) ([]*domain.DvRemovalRequest, error) {
	var pending []*domain.DvRemovalRequest
	for _, req := range r.byID {
		if req.Pending() {
			clone := *req
			pending = append(pending, &clone)
		}
	}
	return pending, nil
}

func (r *stubDvRepo) Create(_ context.Context, req *domain.DvRemovalRequest) error {
	clone := *req
	r.byID[req.ID] = &clone
	return nil
}

func (r *stubDvRepo) Review(_ context.Context, id, reviewedBy string, approved bool) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !req.Pending() {
		return domain.ErrAlreadyReviewed
	}
	now := time.Now().UTC()
	req.Approved = &approved
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &now
	return nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	clone := *u
	r.byID[u.ID] = &clone
	return &clone, nil
}

func (r *stubUserRepo) Grant(_ context.Context, userID string, grant domain.RoleGrant) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Grants = append(u.Grants, grant)
	return nil
}

func (r *stubUserRepo) Revoke(_ context.Context, userID, programID string, role domain.Role) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for i, g := range u.Grants {
		if g.ProgramID == programID && g.Role == role && g.Active() {
			u.Grants[i].Status = domain.GrantRevoked
			return nil
		}
	}
	return domain.ErrNotFound
}

type stubAttrRepo struct {
	defs   []domain.AttributeDefinition
	values map[string][]domain.AttributeValue // keyed by client id
}

func newStubAttrRepo(defs []domain.AttributeDefinition) *stubAttrRepo {
	return &stubAttrRepo{defs: defs, values: make(map[string][]domain.AttributeValue)}
}

func (r *stubAttrRepo) Definitions(_ context.Context) ([]domain.AttributeDefinition, error) {
	return r.defs, nil
}

func (r *stubAttrRepo) ValuesByClient(_ context.Context, clientID string) ([]domain.AttributeValue, error) {
	return r.values[clientID], nil
}

func (r *stubAttrRepo) Upsert(_ context.Context, value domain.AttributeValue) error {
	existing := r.values[value.ClientID]
	for i, v := range existing {
		if v.Key == value.Key {
			existing[i] = value
			return nil
		}
	}
	r.values[value.ClientID] = append(existing, value)
	return nil
}

type stubGroupRepo struct {
	groups []*domain.CareGroup
}

func (r *stubGroupRepo) FindByID(_ context.Context, id string) (*domain.CareGroup, error) {
	for _, g := range r.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubGroupRepo) ListByClient(_ context.Context, clientID string) ([]*domain.CareGroup, error) {
	var out []*domain.CareGroup
	for _, g := range r.groups {
		for _, m := range g.Members {
			if m.ClientID != nil && *m.ClientID == clientID {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (r *stubGroupRepo) Create(_ context.Context, g *domain.CareGroup) error {
	r.groups = append(r.groups, g)
	return nil
}

type stubToggleRepo struct {
	values map[string]bool
	getErr error
}

func newStubToggleRepo() *stubToggleRepo {
	return &stubToggleRepo{values: make(map[string]bool)}
}

func (r *stubToggleRepo) Get(_ context.Context, name string) (bool, error) {
	if r.getErr != nil {
		return false, r.getErr
	}
	v, ok := r.values[name]
	if !ok {
		return false, domain.ErrNotFound
	}
	return v, nil
}

func (r *stubToggleRepo) Set(_ context.Context, name string, value bool) error {
	r.values[name] = value
	return nil
}

type stubToggleCache struct {
	values      map[string]bool
	getErr      error
	invalidated []string
}

func newStubToggleCache() *stubToggleCache {
	return &stubToggleCache{values: make(map[string]bool)}
}

func (c *stubToggleCache) Get(_ context.Context, name string) (bool, bool, error) {
	if c.getErr != nil {
		return false, false, c.getErr
	}
	v, ok := c.values[name]
	return v, ok, nil
}

func (c *stubToggleCache) Put(_ context.Context, name string, value bool) error {
	c.values[name] = value
	return nil
}

func (c *stubToggleCache) Invalidate(_ context.Context, name string) error {
	delete(c.values, name)
	c.invalidated = append(c.invalidated, name)
	return nil
}

type stubAuditRepo struct {
	records   []*domain.AuditRecord
	appendErr error
}

func (r *stubAuditRepo) Append(_ context.Context, record *domain.AuditRecord) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *stubAuditRepo) Query(_ context.Context, filter ports.AuditQueryFilter) ([]*domain.AuditRecord, int64, error) {
	var out []*domain.AuditRecord
	for _, rec := range r.records {
		if rec.IsDemo != filter.IsDemo {
			continue
		}
		if filter.Action != "" && rec.Action != filter.Action {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *stubAuditRepo) lastAction() string {
	if len(r.records) == 0 {
		return ""
	}
	return r.records[len(r.records)-1].Action
}

type stubPortalRepo struct {
	deactivated []string
	err         error
}

func (r *stubPortalRepo) DeactivateByClient(_ context.Context, clientID string) error {
	if r.err != nil {
		return r.err
	}
	r.deactivated = append(r.deactivated, clientID)
	return nil
}

// ---------------------------------------------------------------------------
// Builders
// ---------------------------------------------------------------------------

func principalWith(id string, isDemo bool, grants ...domain.RoleGrant) domain.Principal {
	return domain.Principal{ID: id, DisplayLabel: id, IsDemo: isDemo, Grants: grants}
}

func grant(programID string, role domain.Role) domain.RoleGrant {
	return domain.RoleGrant{ProgramID: programID, Role: role, Status: domain.GrantActive}
}

func clientWith(id string, isDemo bool, programs ...string) *domain.Client {
	c := &domain.Client{
		ID:      id,
		IsDemo:  isDemo,
		Status:  domain.ClientActive,
		Sharing: domain.SharingDefault,
	}
	for _, programID := range programs {
		c.Enrolments = append(c.Enrolments, domain.Enrolment{
			ProgramID: programID,
			Status:    domain.EnrolmentActive,
		})
	}
	return c
}

func strptr(s string) *string { return &s }
