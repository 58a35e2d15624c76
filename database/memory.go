package database

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/models"
	"restaurant/api/stats"
)

// MemoryStore keeps every collection in process memory. It backs local
// development (DB_DRIVER=memory) and the handler tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    []models.User
	menu     []models.MenuItem
	reviews  []models.Review
	carts    []models.CartItem
	payments []models.Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed appends fixtures, assigning ids to records that have none.
func (s *MemoryStore) Seed(users []models.User, menu []models.MenuItem, reviews []models.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		s.users = append(s.users, u)
	}
	for _, m := range menu {
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		s.menu = append(s.menu, m)
	}
	for _, r := range reviews {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		s.reviews = append(s.reviews, r)
	}
}

func (s *MemoryStore) Ping(context.Context) error    { return nil }
func (s *MemoryStore) Close(context.Context) error   { return nil }
func (s *MemoryStore) Migrate(context.Context) error { return nil }

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func (s *MemoryStore) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.users), nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, u models.User) (models.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.InsertResult{}, ErrUserExists
		}
	}
	u.ID = primitive.NewObjectID()
	s.users = append(s.users, u)
	return models.InsertResult{Acknowledged: true, InsertedID: u.ID}, nil
}

func (s *MemoryStore) PromoteUser(_ context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.UpdateResult{Acknowledged: true}
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		res.MatchedCount = 1
		if s.users[i].Role != models.RoleAdmin {
			s.users[i].Role = models.RoleAdmin
			res.ModifiedCount = 1
		}
		break
	}
	return res, nil
}

func (s *MemoryStore) ListMenu(context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.menu), nil
}

func (s *MemoryStore) CreateMenuItem(_ context.Context, m models.MenuItem) (models.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	s.menu = append(s.menu, m)
	return models.InsertResult{Acknowledged: true, InsertedID: m.ID}, nil
}

func (s *MemoryStore) DeleteMenuItem(_ context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	s.menu, n = removeWhere(s.menu, func(m models.MenuItem) bool { return m.ID == id })
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *MemoryStore) ListReviews(context.Context) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.reviews), nil
}

func (s *MemoryStore) ListCart(_ context.Context, email string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.CartItem{}
	for _, c := range s.carts {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateCartItem(_ context.Context, c models.CartItem) (models.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	s.carts = append(s.carts, c)
	return models.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (s *MemoryStore) DeleteCartItem(_ context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	s.carts, n = removeWhere(s.carts, func(c models.CartItem) bool { return c.ID == id })
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// RecordPayment takes the lock once per write, so readers may observe the
// new payment while the purchased cart items are still present.
func (s *MemoryStore) RecordPayment(_ context.Context, p models.Payment) (models.PaymentResult, error) {
	normalizePayment(&p)

	s.mu.Lock()
	s.payments = append(s.payments, p)
	s.mu.Unlock()

	purchased := make(map[primitive.ObjectID]bool, len(p.CartItems))
	for _, id := range p.CartItems {
		purchased[id] = true
	}
	s.mu.Lock()
	var n int64
	s.carts, n = removeWhere(s.carts, func(c models.CartItem) bool { return purchased[c.ID] })
	s.mu.Unlock()

	return models.PaymentResult{
		InsertResult: models.InsertResult{Acknowledged: true, InsertedID: p.ID},
		DeleteResult: models.DeleteResult{Acknowledged: true, DeletedCount: n},
	}, nil
}

func (s *MemoryStore) ListPayments(context.Context) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.payments), nil
}

func (s *MemoryStore) Counts(context.Context) (models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Counts{
		Users:    int64(len(s.users)),
		Products: int64(len(s.menu)),
		Orders:   int64(len(s.payments)),
	}, nil
}

func (s *MemoryStore) OrderedItems(context.Context) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := stats.Join(s.payments, s.menu)
	if rows == nil {
		rows = []models.MenuItem{}
	}
	return rows, nil
}

func removeWhere[T any](in []T, match func(T) bool) ([]T, int64) {
	out := in[:0]
	var removed int64
	for _, v := range in {
		if match(v) {
			removed++
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
