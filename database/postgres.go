package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/config"
	"restaurant/api/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	photo TEXT NOT NULL DEFAULT '',
	role  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS menu (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	recipe   TEXT NOT NULL DEFAULT '',
	image    TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price    DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS reviews (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL DEFAULT '',
	details TEXT NOT NULL DEFAULT '',
	rating  DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS carts (
	id           TEXT PRIMARY KEY,
	menu_item_id TEXT NOT NULL DEFAULT '',
	name         TEXT NOT NULL DEFAULT '',
	image        TEXT NOT NULL DEFAULT '',
	price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	email        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS carts_email_idx ON carts (email);
CREATE TABLE IF NOT EXISTS payments (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL DEFAULT '',
	transaction_id TEXT NOT NULL DEFAULT '',
	price          DOUBLE PRECISION NOT NULL DEFAULT 0,
	quantity       INTEGER NOT NULL DEFAULT 0,
	date           TIMESTAMPTZ,
	status         TEXT NOT NULL DEFAULT '',
	item_names     TEXT[] NOT NULL DEFAULT '{}',
	cart_items     TEXT[] NOT NULL DEFAULT '{}',
	menu_items     TEXT[] NOT NULL DEFAULT '{}'
);
`

// PostgresStore keeps documents in relational tables. Ids are the same
// 12 byte object ids the mongo driver uses, stored as hex text.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := NewPostgresStore(db)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func parseIDs(hex []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, len(hex))
	for i, h := range hex {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("bad stored id %q: %w", h, err)
		}
		out[i] = id
	}
	return out, nil
}

// scanID reads a hex id column into dst.
type scanID struct{ dst *primitive.ObjectID }

func (s scanID) Scan(src interface{}) error {
	var hex string
	switch v := src.(type) {
	case string:
		hex = v
	case []byte:
		hex = string(v)
	default:
		return fmt.Errorf("unsupported id type %T", src)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return err
	}
	*s.dst = id
	return nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, scan func(*sql.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanUser(rows *sql.Rows) (models.User, error) {
	var u models.User
	var role string
	err := rows.Scan(scanID{&u.ID}, &u.Name, &u.Email, &u.Photo, &role)
	u.Role = models.Role(role)
	return u, err
}

func scanMenuItem(rows *sql.Rows) (models.MenuItem, error) {
	var m models.MenuItem
	err := rows.Scan(scanID{&m.ID}, &m.Name, &m.Recipe, &m.Image, &m.Category, &m.Price)
	return m, err
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := queryRows(ctx, s.db, scanUser, `SELECT id, name, email, photo, role FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, photo, role FROM users WHERE email = $1`, email,
	).Scan(scanID{&u.ID}, &u.Name, &u.Email, &u.Photo, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Role = models.Role(role)
	return &u, nil
}

// CreateUser relies on the unique email constraint, so concurrent inserts
// of one email store a single row.
func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) (models.InsertResult, error) {
	u.ID = primitive.NewObjectID()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, photo, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, u.ID.Hex(), u.Name, u.Email, u.Photo, string(u.Role))
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return models.InsertResult{}, ErrUserExists
	}
	return models.InsertResult{Acknowledged: true, InsertedID: u.ID}, nil
}

func (s *PostgresStore) PromoteUser(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	var matched, modified int64
	err := s.db.QueryRowContext(ctx, `
		WITH target AS (
			SELECT id, role FROM users WHERE id = $1
		), upd AS (
			UPDATE users u SET role = $2
			FROM target t
			WHERE u.id = t.id AND t.role <> $2
			RETURNING u.id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM upd)
	`, id.Hex(), string(models.RoleAdmin)).Scan(&matched, &modified)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("promote user: %w", err)
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}, nil
}

func (s *PostgresStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items, err := queryRows(ctx, s.db, scanMenuItem, `SELECT id, name, recipe, image, category, price FROM menu`)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateMenuItem(ctx context.Context, m models.MenuItem) (models.InsertResult, error) {
	m.ID = primitive.NewObjectID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu (id, name, recipe, image, category, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID.Hex(), m.Name, m.Recipe, m.Image, m.Category, m.Price)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert menu item: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: m.ID}, nil
}

func (s *PostgresStore) deleteByID(ctx context.Context, table string, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id.Hex())
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete %s: %w", table, err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *PostgresStore) DeleteMenuItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	return s.deleteByID(ctx, "menu", id)
}

func (s *PostgresStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	reviews, err := queryRows(ctx, s.db, func(rows *sql.Rows) (models.Review, error) {
		var r models.Review
		err := rows.Scan(scanID{&r.ID}, &r.Name, &r.Details, &r.Rating)
		return r, err
	}, `SELECT id, name, details, rating FROM reviews`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *PostgresStore) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	items, err := queryRows(ctx, s.db, func(rows *sql.Rows) (models.CartItem, error) {
		var c models.CartItem
		err := rows.Scan(scanID{&c.ID}, &c.MenuItemID, &c.Name, &c.Image, &c.Price, &c.Email)
		return c, err
	}, `SELECT id, menu_item_id, name, image, price, email FROM carts WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateCartItem(ctx context.Context, c models.CartItem) (models.InsertResult, error) {
	c.ID = primitive.NewObjectID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carts (id, menu_item_id, name, image, price, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID.Hex(), c.MenuItemID, c.Name, c.Image, c.Price, c.Email)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert cart item: %w", err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: c.ID}, nil
}

func (s *PostgresStore) DeleteCartItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	return s.deleteByID(ctx, "carts", id)
}

// RecordPayment inserts the payment and clears its cart items in a single
// transaction.
func (s *PostgresStore) RecordPayment(ctx context.Context, p models.Payment) (models.PaymentResult, error) {
	normalizePayment(&p)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var date interface{}
	if !p.Date.IsZero() {
		date = p.Date
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments
		(id, email, transaction_id, price, quantity, date, status, item_names, cart_items, menu_items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID.Hex(), p.Email, p.TransactionID, p.Price, p.Quantity, date, p.Status,
		pq.Array(p.ItemNames), pq.Array(hexIDs(p.CartItems)), pq.Array(hexIDs(p.MenuItems)))
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("insert payment: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = ANY($1)`, pq.Array(hexIDs(p.CartItems)))
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("clear cart: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.PaymentResult{}, fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	return models.PaymentResult{
		InsertResult: models.InsertResult{Acknowledged: true, InsertedID: p.ID},
		DeleteResult: models.DeleteResult{Acknowledged: true, DeletedCount: deleted},
	}, nil
}

func (s *PostgresStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := queryRows(ctx, s.db, func(rows *sql.Rows) (models.Payment, error) {
		var p models.Payment
		var date sql.NullTime
		var cart, menu []string
		err := rows.Scan(scanID{&p.ID}, &p.Email, &p.TransactionID, &p.Price, &p.Quantity, &date, &p.Status,
			pq.Array(&p.ItemNames), pq.Array(&cart), pq.Array(&menu))
		if err != nil {
			return p, err
		}
		if date.Valid {
			p.Date = date.Time
		}
		if p.CartItems, err = parseIDs(cart); err != nil {
			return p, err
		}
		p.MenuItems, err = parseIDs(menu)
		return p, err
	}, `SELECT id, email, transaction_id, price, quantity, date, status, item_names, cart_items, menu_items FROM payments`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (models.Counts, error) {
	var c models.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT count(*) FROM users), (SELECT count(*) FROM menu), (SELECT count(*) FROM payments)
	`).Scan(&c.Users, &c.Products, &c.Orders)
	if err != nil {
		return c, fmt.Errorf("count records: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) OrderedItems(ctx context.Context) ([]models.MenuItem, error) {
	items, err := queryRows(ctx, s.db, scanMenuItem, `
		SELECT m.id, m.name, m.recipe, m.image, m.category, m.price
		FROM payments p
		JOIN menu m ON m.id = ANY(p.menu_items)
	`)
	if err != nil {
		return nil, fmt.Errorf("ordered items: %w", err)
	}
	return items, nil
}
