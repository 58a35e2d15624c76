package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant/api/database"
	"restaurant/api/jwtService"
	"restaurant/api/models"
)

var errStoreDown = errors.New("store down")

// fakeGateway records the amounts it was asked to charge.
type fakeGateway struct {
	amounts []int64
	secret  string
	err     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64) (string, error) {
	g.amounts = append(g.amounts, amount)
	if g.err != nil {
		return "", g.err
	}
	return g.secret, nil
}

// failingStore overrides single methods of the memory store.
type failingStore struct {
	*database.MemoryStore
	FindUserByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	RecordPaymentFunc   func(ctx context.Context, p models.Payment) (models.PaymentResult, error)
}

func (s *failingStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.FindUserByEmailFunc != nil {
		return s.FindUserByEmailFunc(ctx, email)
	}
	return s.MemoryStore.FindUserByEmail(ctx, email)
}

func (s *failingStore) RecordPayment(ctx context.Context, p models.Payment) (models.PaymentResult, error) {
	if s.RecordPaymentFunc != nil {
		return s.RecordPaymentFunc(ctx, p)
	}
	return s.MemoryStore.RecordPayment(ctx, p)
}

type testEnv struct {
	store   *failingStore
	tokens  *jwtService.Service
	gateway *fakeGateway
	ctl     *Controller
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &failingStore{MemoryStore: database.NewMemoryStore()}
	store.Seed([]models.User{
		{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin},
		{Name: "Regular", Email: "user@example.com"},
	}, nil, nil)

	env := &testEnv{
		store:   store,
		tokens:  jwtService.New("test-secret", time.Hour),
		gateway: &fakeGateway{secret: "pi_secret"},
		router:  gin.New(),
	}
	env.ctl = New(store, env.tokens, env.gateway)
	return env
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := e.tokens.GenerateJWT(map[string]interface{}{"email": email})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return tok
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if !body.Error || body.Message != message {
		t.Errorf("body = %+v, want error=true message=%q", body, message)
	}
}
