package api

import (
	"broker_platform/internal/domain"
	"broker_platform/internal/middleware"
	"broker_platform/internal/session"
	"broker_platform/internal/supabase"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeIdentity is one account known to the fake provider
type fakeIdentity struct {
	id       uuid.UUID
	password string
}

// fakeGoTrue is an in-process stand-in for the identity provider's REST API.
// It covers exactly the four endpoints the client calls.
type fakeGoTrue struct {
	mu           sync.Mutex
	accounts     map[string]fakeIdentity      // email -> identity
	tokens       map[string]supabase.AuthUser // access token -> identity
	nextCreateID uuid.UUID                    // forced ID for the next admin create, zero means random
	failDelete   bool                         // make admin deletes fail
	deleted      []uuid.UUID                  // identities removed via admin delete
	srv          *httptest.Server
}

func newFakeGoTrue(t *testing.T) *fakeGoTrue {
	t.Helper()
	f := &fakeGoTrue{
		accounts: make(map[string]fakeIdentity),
		tokens:   make(map[string]supabase.AuthUser),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoTrue) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		acct, ok := f.accounts[body["email"]]
		if !ok || acct.password != body["password"] {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		token := "tok-" + acct.id.String()
		f.tokens[token] = supabase.AuthUser{ID: acct.id, Email: body["email"]}
		json.NewEncoder(w).Encode(supabase.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User:        f.tokens[token],
		})
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/user":
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		user, ok := f.tokens[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/admin/users":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		email := body["email"].(string)
		id := f.nextCreateID
		if id == uuid.Nil {
			id = uuid.New()
		}
		f.nextCreateID = uuid.Nil
		f.accounts[email] = fakeIdentity{id: id, password: body["password"].(string)}
		json.NewEncoder(w).Encode(supabase.AuthUser{ID: id, Email: email})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/auth/v1/admin/users/"):
		if f.failDelete {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// register makes the provider know a profile's identity and returns a valid
// bearer token for it
func (f *fakeGoTrue) register(p *domain.Profile, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[p.Email] = fakeIdentity{id: p.ID, password: password}
	token := "tok-" + p.ID.String()
	f.tokens[token] = supabase.AuthUser{ID: p.ID, Email: p.Email}
	return token
}

func (f *fakeGoTrue) client() *supabase.Client {
	return supabase.NewClient(f.srv.URL, "test-key")
}

// newTestDB opens a fresh in-memory store with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Profile{},
		&domain.Session{},
		&domain.Strategy{},
		&domain.StrategyLeg{},
		&domain.ReconciliationRecord{},
	))
	return db
}

// newTestRouter wires the same routes as cmd/server against test fixtures
func newTestRouter(db *gorm.DB, provider *supabase.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tracker := session.NewTracker(db)

	r.GET("/", RootHandler())
	r.GET("/health", HealthHandler(db))
	r.POST("/auth/login", LoginHandler(db, provider, tracker))
	r.POST("/auth/logout", LogoutHandler(provider, tracker))

	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware(provider, db))
	userGroup.POST("", CreateUserHandler(db, provider))
	userGroup.GET("", ListUsersHandler(db))
	userGroup.PUT("/:id", UpdateUserHandler(db))
	userGroup.DELETE("/:id", DeleteUserHandler(db))

	strategyGroup := r.Group("/strategies")
	strategyGroup.Use(middleware.AuthMiddleware(provider, db))
	strategyGroup.POST("", CreateStrategyHandler(db))
	strategyGroup.GET("", ListStrategiesHandler(db))

	return r
}

// seedProfile stores an active profile and returns it
func seedProfile(t *testing.T, db *gorm.DB, email string, role domain.Role) *domain.Profile {
	t.Helper()
	p := &domain.Profile{
		ID:         uuid.New(),
		Email:      email,
		Role:       role,
		Multiplier: decimal.NewFromInt(1),
		IsActive:   true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func mustUUID() uuid.UUID {
	return uuid.New()
}

// doJSONWithHeaders POSTs a JSON body with extra request headers
func doJSONWithHeaders(r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doJSON performs a request with an optional bearer token and JSON body
func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
