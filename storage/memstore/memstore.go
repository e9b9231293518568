// Package memstore provides an in-memory implementation of storage.Store.
// It backs the unit tests and the MONGO_URI-less dev mode; the original
// prototype kept its groups in a process-global slice and this preserves
// those semantics behind the store interface.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

// Ensure MemStore implements storage.Store.
var _ storage.Store = (*MemStore)(nil)

// MemStore implements storage.Store with maps guarded by a single RWMutex.
type MemStore struct {
	mu           sync.RWMutex
	groups       map[primitive.ObjectID]models.Group
	users        map[primitive.ObjectID]models.User
	payments     map[primitive.ObjectID]models.Payment
	transactions map[primitive.ObjectID]models.Transaction
	sermons      map[primitive.ObjectID]models.Sermon
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{
		groups:       make(map[primitive.ObjectID]models.Group),
		users:        make(map[primitive.ObjectID]models.User),
		payments:     make(map[primitive.ObjectID]models.Payment),
		transactions: make(map[primitive.ObjectID]models.Transaction),
		sermons:      make(map[primitive.ObjectID]models.Sermon),
	}
}

func (m *MemStore) Close(ctx context.Context) error { return nil }

// copyGroup detaches the members slice so callers cannot mutate stored state.
func copyGroup(g models.Group) models.Group {
	out := g
	out.Members = make([]models.GroupMember, len(g.Members))
	copy(out.Members, g.Members)
	return out
}

// ---------------- Groups ----------------

func (m *MemStore) CreateGroup(ctx context.Context, g *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	m.groups[g.ID] = copyGroup(*g)
	return nil
}

func (m *MemStore) GetGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := copyGroup(g)
	return &out, nil
}

func (m *MemStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, copyGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) ListGroupsByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Group
	for _, g := range m.groups {
		for _, member := range g.Members {
			if member.UserID == userID {
				out = append(out, copyGroup(g))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) UpdateGroup(ctx context.Context, g *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[g.ID]; !ok {
		return storage.ErrNotFound
	}
	m.groups[g.ID] = copyGroup(*g)
	return nil
}

func (m *MemStore) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.groups, id)
	return nil
}

// ---------------- Users ----------------

func (m *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) SetAdminStatus(ctx context.Context, id primitive.ObjectID, isAdmin bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now()
	m.users[id] = u
	return &u, nil
}

func (m *MemStore) SetAdminStatusByEmail(ctx context.Context, email string, isAdmin bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u.IsAdmin = isAdmin
			u.UpdatedAt = time.Now()
			m.users[id] = u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ---------------- Payments ----------------

func (m *MemStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *MemStore) GetPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) listPayments(match func(models.Payment) bool) []models.Payment {
	var out []models.Payment
	for _, p := range m.payments {
		if match(p) {
			out = append(out, p)
		}
	}
	// newest first, consistent with the admin review queue
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPayments(func(models.Payment) bool { return true }), nil
}

func (m *MemStore) ListPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPayments(func(p models.Payment) bool { return p.UserID == userID }), nil
}

func (m *MemStore) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPayments(func(p models.Payment) bool { return p.Status == status }), nil
}

func (m *MemStore) FindPendingPayment(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.UserID == userID && p.GroupID == groupID && p.Status == models.PaymentPending {
			out := p
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *MemStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; !ok {
		return storage.ErrNotFound
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *MemStore) DeletePaymentsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.payments {
		if p.GroupID == groupID {
			delete(m.payments, id)
		}
	}
	return nil
}

// ---------------- Transactions ----------------

func (m *MemStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	m.transactions[t.ID] = *t
	return nil
}

func (m *MemStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) DeleteTransactionsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.transactions {
		if t.GroupID == groupID {
			delete(m.transactions, id)
		}
	}
	return nil
}

// ---------------- Sermons ----------------

func (m *MemStore) CreateSermon(ctx context.Context, s *models.Sermon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	m.sermons[s.ID] = *s
	return nil
}

func (m *MemStore) GetSermon(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sermons[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *MemStore) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Sermon, 0, len(m.sermons))
	for _, s := range m.sermons {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *MemStore) UpdateSermon(ctx context.Context, s *models.Sermon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sermons[s.ID]; !ok {
		return storage.ErrNotFound
	}
	m.sermons[s.ID] = *s
	return nil
}

func (m *MemStore) DeleteSermon(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sermons[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.sermons, id)
	return nil
}

func (m *MemStore) IncrementPlayCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sermons[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.PlayCount++
	m.sermons[id] = s
	return &s, nil
}

func (m *MemStore) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sermons[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.DownloadCount++
	m.sermons[id] = s
	return &s, nil
}
