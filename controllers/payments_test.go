package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/api/database"
	"restaurant/api/models"
)

func TestCreatePaymentIntent(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/create-payment-intent", env.ctl.Authenticate, env.ctl.CreatePaymentIntent)
	token := env.token(t, "user@example.com")

	w := env.do(http.MethodPost, "/create-payment-intent", token, map[string]float64{"price": 12.345})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		ClientSecret string `json:"clientSecret"`
	}
	decode(t, w, &body)
	if body.ClientSecret != "pi_secret" {
		t.Errorf("clientSecret = %q", body.ClientSecret)
	}
	if len(env.gateway.amounts) != 1 || env.gateway.amounts[0] != 1234 {
		t.Errorf("gateway amounts = %v, want [1234]", env.gateway.amounts)
	}
}

func TestCreatePaymentIntentRejects(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/create-payment-intent", env.ctl.Authenticate, env.ctl.CreatePaymentIntent)
	token := env.token(t, "user@example.com")

	for _, body := range []string{`{}`, `{"price":"abc"}`, `{"price":-1}`, `{"price":0}`, `nope`} {
		w := env.do(http.MethodPost, "/create-payment-intent", token, body)
		assertError(t, w, http.StatusBadRequest, "price must be a positive number")
	}
	if len(env.gateway.amounts) != 0 {
		t.Errorf("gateway called for invalid prices: %v", env.gateway.amounts)
	}

	w := env.do(http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 10})
	assertError(t, w, http.StatusUnauthorized, "unauthorized access")
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.err = errors.New("card_declined")
	env.router.POST("/create-payment-intent", env.ctl.Authenticate, env.ctl.CreatePaymentIntent)

	w := env.do(http.MethodPost, "/create-payment-intent", env.token(t, "user@example.com"), map[string]float64{"price": 10})
	assertError(t, w, http.StatusInternalServerError, "internal server error")
}

func TestRecordPayment(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/payments", env.ctl.Authenticate, env.ctl.RecordPayment)
	ctx := context.Background()

	x, _ := env.store.CreateCartItem(ctx, models.CartItem{Name: "x", Email: "user@example.com"})
	y, _ := env.store.CreateCartItem(ctx, models.CartItem{Name: "y", Email: "user@example.com"})

	w := env.do(http.MethodPost, "/payments", env.token(t, "user@example.com"), map[string]interface{}{
		"email":     "user@example.com",
		"price":     21.5,
		"cartItems": []string{x.InsertedID.Hex(), y.InsertedID.Hex()},
		"menuItems": []string{},
		"date":      "2026-10-16T12:00:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var res models.PaymentResult
	decode(t, w, &res)
	if res.DeleteResult.DeletedCount != 2 || res.InsertResult.InsertedID.IsZero() {
		t.Errorf("result = %+v", res)
	}

	cart, _ := env.store.ListCart(ctx, "user@example.com")
	if len(cart) != 0 {
		t.Errorf("cart not cleared: %+v", cart)
	}
	payments, _ := env.store.ListPayments(ctx)
	if len(payments) != 1 || len(payments[0].CartItems) != 2 {
		t.Errorf("payments = %+v", payments)
	}
}

func TestRecordPaymentBadIDs(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/payments", env.ctl.Authenticate, env.ctl.RecordPayment)
	token := env.token(t, "user@example.com")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"short cart id", map[string]interface{}{"cartItems": []string{"not-an-id"}}},
		// ten characters plus quotes is twelve bytes, the raw ObjectID length
		{"twelve byte cart token", map[string]interface{}{"price": 5, "cartItems": []string{"abcdefghij"}}},
		{"twelve byte menu token", map[string]interface{}{"price": 5, "menuItems": []string{"abcdefghij"}}},
		{"mixed", map[string]interface{}{"cartItems": []string{primitive.NewObjectID().Hex(), "zz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/payments", token, tt.body)
			assertError(t, w, http.StatusBadRequest, "invalid id")
		})
	}

	payments, _ := env.store.ListPayments(context.Background())
	if len(payments) != 0 {
		t.Errorf("payments stored for invalid ids: %+v", payments)
	}
}

func TestRecordPaymentPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	id := primitive.NewObjectID()
	env.store.RecordPaymentFunc = func(context.Context, models.Payment) (models.PaymentResult, error) {
		return models.PaymentResult{}, &database.PartialPaymentError{
			Insert: models.InsertResult{Acknowledged: true, InsertedID: id},
			Err:    errStoreDown,
		}
	}
	env.router.POST("/payments", env.ctl.Authenticate, env.ctl.RecordPayment)

	w := env.do(http.MethodPost, "/payments", env.token(t, "user@example.com"), map[string]interface{}{"price": 5})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body struct {
		Error        bool                `json:"error"`
		InsertResult models.InsertResult `json:"insertResult"`
	}
	decode(t, w, &body)
	if !body.Error || body.InsertResult.InsertedID != id {
		t.Errorf("body = %+v, want the stored payment id reported", body)
	}
}
