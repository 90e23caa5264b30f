package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/testcontainers/testcontainers-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/lacus-ops/bbs-service/internal/bbs"
	"github.com/lacus-ops/bbs-service/internal/config"
	"github.com/lacus-ops/bbs-service/internal/domain"
	http "github.com/lacus-ops/bbs-service/internal/http"
	"github.com/lacus-ops/bbs-service/internal/log"
	"github.com/lacus-ops/bbs-service/internal/notify"
	"github.com/lacus-ops/bbs-service/internal/queue"
	"github.com/lacus-ops/bbs-service/internal/repo"
	"github.com/lacus-ops/bbs-service/internal/security"
)

// memCSRF replaces Redis in tests.
type memCSRF struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemCSRF() *memCSRF { return &memCSRF{tokens: map[string]string{}} }

func (m *memCSRF) Issue(_ context.Context, uid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := "csrf-" + uid
	m.tokens[uid] = token
	return token, nil
}

func (m *memCSRF) Validate(_ context.Context, uid, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token != "" && m.tokens[uid] == token, nil
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type recordSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordSender) Send(to []string, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (r *recordSender) mails() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMail, len(r.sent))
	copy(out, r.sent)
	return out
}

type testEnv struct {
	T      *testing.T
	Ctx    context.Context
	Mongo  *mongodb.MongoDBContainer
	Store  *repo.Store
	Svc    *bbs.Service
	Router *gin.Engine
	CSRF   *memCSRF
	Mail   *recordSender
	Cfg    config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	mc, err := mongodb.RunContainer(ctx,
		testcontainers.WithImage("mongo:6"),
	)
	if err != nil {
		t.Fatalf("mongo container: %v", err)
	}

	uri, err := mc.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("mongo uri: %v", err)
	}

	if _, err := log.Init(false); err != nil {
		t.Fatalf("log init: %v", err)
	}

	store, err := repo.NewStore(ctx, uri, "bbs_test")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		JWTSecret:        "test-secret",
		AccessTTLMinutes: 30,
		BaseURL:          "http://bbs.local",
		Timezone:         "UTC",
	}

	csrf := newMemCSRF()
	sender := &recordSender{}
	notifier := notify.New(sender, cfg.BaseURL, time.UTC)
	// TTL 0 disables the provisioning cache so every call rescans.
	svc := bbs.NewService(store, notifier, queue.NewNoop(), time.UTC, 0)
	h := http.NewHandler(cfg, store, svc, csrf)

	gin.SetMode(gin.TestMode)
	r := http.Router(h)

	return &testEnv{
		T: t, Ctx: ctx, Mongo: mc, Store: store, Svc: svc,
		Router: r, CSRF: csrf, Mail: sender, Cfg: cfg,
	}
}

func (e *testEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Client.Disconnect(e.Ctx)
	}
	if e.Mongo != nil {
		_ = e.Mongo.Terminate(e.Ctx)
	}
}

func (e *testEnv) seedUser(username, email string, roles ...string) *domain.User {
	e.T.Helper()
	hash, err := security.HashPassword("StrongP@ss1")
	if err != nil {
		e.T.Fatal(err)
	}
	u := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     username,
		Email:        email,
		Active:       true,
		Roles:        roles,
	}
	if err := e.Store.InsertUser(e.Ctx, u); err != nil {
		e.T.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *testEnv) seedBoard(code, name string) *domain.Board {
	e.T.Helper()
	b := &domain.Board{Code: code, Name: name, BoardType: domain.BoardTypeCustom, IsActive: true, Order: 10}
	if err := e.Store.InsertBoard(e.Ctx, b); err != nil {
		e.T.Fatalf("seed board: %v", err)
	}
	return b
}

func (e *testEnv) seedPilot(nickname string, owner *domain.User) *domain.Pilot {
	e.T.Helper()
	p := &domain.Pilot{Nickname: nickname}
	if owner != nil {
		id := owner.ID
		p.OwnerID = &id
	}
	if err := e.Store.InsertPilot(e.Ctx, p); err != nil {
		e.T.Fatalf("seed pilot: %v", err)
	}
	return p
}

// auth returns the bearer and CSRF headers for u.
func (e *testEnv) auth(u *domain.User) map[string]string {
	e.T.Helper()
	token, err := security.MakeAccess(e.Cfg.JWTSecret, u.ID.Hex(), 30*time.Minute)
	if err != nil {
		e.T.Fatal(err)
	}
	csrf, _ := e.CSRF.Issue(e.Ctx, u.ID.Hex())
	return map[string]string{
		"Authorization": "Bearer " + token,
		"X-CSRF-Token":  csrf,
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Error   map[string]string      `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body=%s", err, w.Body.String())
	}
	return env
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := decode(t, w)
	var m map[string]interface{}
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode data: %v; body=%s", err, w.Body.String())
	}
	return m
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode(t, w).Error["code"]
}

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad object id %q: %v", hex, err)
	}
	return oid
}
