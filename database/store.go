package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/config"
	"restaurant/api/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrUserExists = errors.New("user already exists")
)

// PartialPaymentError is returned by RecordPayment when the payment was
// stored but the purchased cart items could not be removed.
type PartialPaymentError struct {
	Insert models.InsertResult
	Err    error
}

func (e *PartialPaymentError) Error() string {
	return fmt.Sprintf("payment %s recorded but cart not cleared: %v", e.Insert.InsertedID.Hex(), e.Err)
}

func (e *PartialPaymentError) Unwrap() error { return e.Err }

// Store is the persistence boundary of the API. Implementations must be
// safe for concurrent use; list methods return empty, non-nil slices.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	// FindUserByEmail returns ErrNotFound when no user has the email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser returns ErrUserExists when the email is already taken.
	CreateUser(ctx context.Context, u models.User) (models.InsertResult, error)
	PromoteUser(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error)

	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, m models.MenuItem) (models.InsertResult, error)
	DeleteMenuItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)

	ListReviews(ctx context.Context) ([]models.Review, error)

	ListCart(ctx context.Context, email string) ([]models.CartItem, error)
	CreateCartItem(ctx context.Context, c models.CartItem) (models.InsertResult, error)
	DeleteCartItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error)

	// RecordPayment inserts p and deletes the carts listed in p.CartItems.
	RecordPayment(ctx context.Context, p models.Payment) (models.PaymentResult, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)

	// Counts may be estimates.
	Counts(ctx context.Context) (models.Counts, error)
	// OrderedItems joins every payment's menu item ids against the menu.
	OrderedItems(ctx context.Context) ([]models.MenuItem, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the driver selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DBConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.Mongo)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func normalizePayment(p *models.Payment) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.ItemNames == nil {
		p.ItemNames = []string{}
	}
	if p.CartItems == nil {
		p.CartItems = []primitive.ObjectID{}
	}
	if p.MenuItems == nil {
		p.MenuItems = []primitive.ObjectID{}
	}
}
