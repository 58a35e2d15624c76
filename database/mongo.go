package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restaurant/api/config"
	"restaurant/api/models"
)

type MongoStore struct {
	client       *mongo.Client
	users        *mongo.Collection
	menu         *mongo.Collection
	reviews      *mongo.Collection
	carts        *mongo.Collection
	payments     *mongo.Collection
	transactions bool
}

// OpenMongo connects with the Stable API v1 in strict mode and pings the
// deployment before returning.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := NewMongoStore(client, cfg.Database, cfg.Transactions)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func NewMongoStore(client *mongo.Client, database string, transactions bool) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:       client,
		users:        db.Collection("users"),
		menu:         db.Collection("menu"),
		reviews:      db.Collection("reviews"),
		carts:        db.Collection("carts"),
		payments:     db.Collection("payments"),
		transactions: transactions,
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Migrate creates the indexes the API relies on. The unique email index
// turns racing user inserts into duplicate key errors.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	_, err = s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("carts email index: %w", err)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) ([]T, error) {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) (models.InsertResult, error) {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return models.InsertResult{}, fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (models.DeleteResult, error) {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete %s: %w", coll.Name(), err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.users, bson.D{})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (models.InsertResult, error) {
	_, err := s.FindUserByEmail(ctx, u.Email)
	if err == nil {
		return models.InsertResult{}, ErrUserExists
	}
	if !errors.Is(err, ErrNotFound) {
		return models.InsertResult{}, err
	}

	u.ID = primitive.NewObjectID()
	res, err := insertOne(ctx, s.users, u.ID, u)
	if mongo.IsDuplicateKeyError(err) {
		return models.InsertResult{}, ErrUserExists
	}
	return res, err
}

func (s *MongoStore) PromoteUser(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": models.RoleAdmin}},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("promote user: %w", err)
	}
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}, nil
}

func (s *MongoStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	return findAll[models.MenuItem](ctx, s.menu, bson.D{})
}

func (s *MongoStore) CreateMenuItem(ctx context.Context, m models.MenuItem) (models.InsertResult, error) {
	m.ID = primitive.NewObjectID()
	return insertOne(ctx, s.menu, m.ID, m)
}

func (s *MongoStore) DeleteMenuItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	return deleteByID(ctx, s.menu, id)
}

func (s *MongoStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	return findAll[models.Review](ctx, s.reviews, bson.D{})
}

func (s *MongoStore) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	return findAll[models.CartItem](ctx, s.carts, bson.M{"email": email})
}

func (s *MongoStore) CreateCartItem(ctx context.Context, c models.CartItem) (models.InsertResult, error) {
	c.ID = primitive.NewObjectID()
	return insertOne(ctx, s.carts, c.ID, c)
}

func (s *MongoStore) DeleteCartItem(ctx context.Context, id primitive.ObjectID) (models.DeleteResult, error) {
	return deleteByID(ctx, s.carts, id)
}

// RecordPayment runs both writes in one session transaction when the store
// was opened with transactions enabled. Otherwise the writes are
// independent and a failed cart clear yields a *PartialPaymentError.
func (s *MongoStore) RecordPayment(ctx context.Context, p models.Payment) (models.PaymentResult, error) {
	normalizePayment(&p)
	if !s.transactions {
		return s.recordPayment(ctx, p)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.recordPayment(sc, p)
		var partial *PartialPaymentError
		if errors.As(err, &partial) {
			// the transaction is aborted, so nothing was recorded
			return nil, partial.Err
		}
		return res, err
	})
	if err != nil {
		return models.PaymentResult{}, fmt.Errorf("record payment: %w", err)
	}
	return out.(models.PaymentResult), nil
}

func (s *MongoStore) recordPayment(ctx context.Context, p models.Payment) (models.PaymentResult, error) {
	ins, err := insertOne(ctx, s.payments, p.ID, p)
	if err != nil {
		return models.PaymentResult{}, err
	}

	del := models.DeleteResult{Acknowledged: true}
	if len(p.CartItems) > 0 {
		res, err := s.carts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": p.CartItems}})
		if err != nil {
			return models.PaymentResult{}, &PartialPaymentError{Insert: ins, Err: err}
		}
		del.DeletedCount = res.DeletedCount
	}
	return models.PaymentResult{InsertResult: ins, DeleteResult: del}, nil
}

func (s *MongoStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return findAll[models.Payment](ctx, s.payments, bson.D{})
}

func (s *MongoStore) Counts(ctx context.Context) (models.Counts, error) {
	var c models.Counts
	var err error
	if c.Users, err = s.users.EstimatedDocumentCount(ctx); err != nil {
		return c, fmt.Errorf("count users: %w", err)
	}
	if c.Products, err = s.menu.EstimatedDocumentCount(ctx); err != nil {
		return c, fmt.Errorf("count menu: %w", err)
	}
	if c.Orders, err = s.payments.EstimatedDocumentCount(ctx); err != nil {
		return c, fmt.Errorf("count payments: %w", err)
	}
	return c, nil
}

func (s *MongoStore) OrderedItems(ctx context.Context) ([]models.MenuItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: s.menu.Name()},
			{Key: "localField", Value: "menuItems"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "menuItemsData"},
		}}},
		{{Key: "$unwind", Value: "$menuItemsData"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$menuItemsData"}}}},
	}

	cur, err := s.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	rows := []models.MenuItem{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return rows, nil
}
