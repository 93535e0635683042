package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthn map[string]*models.Session

func (f fakeAuthn) Authenticate(_ context.Context, token string) (*models.Session, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, errors.New("bad token")
}

type adminOnly struct{}

func (adminOnly) Authorize(s *models.Session) error {
	if s == nil || s.Username != "admin" {
		return errors.New("admin access required")
	}
	return nil
}

func newRouter(authn Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	return newRouterWith(AuthMiddleware(authn, logger.Nop()), extra...)
}

func newRouterWith(auth gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{auth}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		s, _ := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": s.Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	authn := fakeAuthn{"good": {Username: "sara"}}
	plain := newRouter(authn)
	withQuery := newRouterWith(QueryTokenMiddleware(authn, logger.Nop()))

	tests := []struct {
		name   string
		router *gin.Engine
		header string
		cookie string
		query  string
		want   int
	}{
		{"no token", plain, "", "", "", http.StatusUnauthorized},
		{"bad token", plain, "Bearer nope", "", "", http.StatusUnauthorized},
		{"bearer token", plain, "Bearer good", "", "", http.StatusOK},
		{"lowercase bearer", plain, "bearer good", "", "", http.StatusOK},
		{"cookie token", plain, "", "good", "", http.StatusOK},
		{"bad cookie", plain, "", "nope", "", http.StatusUnauthorized},
		{"query token refused", plain, "", "", "?token=good", http.StatusUnauthorized},
		{"query token on query route", withQuery, "", "", "?token=good", http.StatusOK},
		{"bearer on query route", withQuery, "Bearer good", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.router
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	authn := fakeAuthn{"admin": {Username: "admin"}, "user": {Username: "sara"}}
	r := newRouter(authn, AdminMiddleware(adminOnly{}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer user")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect hint to /, got %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer admin")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

type fakeRemote struct {
	allow bool
	err   error
	calls int
}

func (f *fakeRemote) AllowAction(context.Context, string, string, int, int) (bool, error) {
	f.calls++
	return f.allow, f.err
}

func TestRateLimiter_Local(t *testing.T) {
	rl := NewRateLimiter("login", 1, nil, logger.Nop())
	ctx := context.Background()

	// burst is twice the rate
	if !rl.Allow(ctx, "sara") || !rl.Allow(ctx, "sara") {
		t.Fatal("Expected burst to be allowed")
	}
	if rl.Allow(ctx, "sara") {
		t.Error("Expected third immediate attempt to be limited")
	}
	if !rl.Allow(ctx, "omar") {
		t.Error("Expected other key to have its own bucket")
	}
}

func TestRateLimiter_Remote(t *testing.T) {
	ctx := context.Background()

	remote := &fakeRemote{allow: false}
	rl := NewRateLimiter("login", 1, remote, logger.Nop())
	if rl.Allow(ctx, "sara") {
		t.Error("Expected remote decision to be used")
	}

	failing := &fakeRemote{err: errors.New("redis down")}
	rl = NewRateLimiter("login", 1, failing, logger.Nop())
	if !rl.Allow(ctx, "sara") {
		t.Error("Expected local fallback to allow")
	}
	if failing.calls != 1 {
		t.Errorf("Expected remote to be asked once, got %d", failing.calls)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	authn := fakeAuthn{"good": {Username: "sara"}}
	r := newRouter(authn, RateLimitMiddleware(NewRateLimiter("write", 1, nil, logger.Nop())))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for foreign origin, got %d", w.Code)
	}
}

func TestRequestLogger_OmitsQuery(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ws", QueryTokenMiddleware(fakeAuthn{"s3cret-jwt": {Username: "admin"}}, logger.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token=s3cret-jwt", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/ws" {
		t.Errorf("Expected path /ws, got %v", fields["path"])
	}
	if fields["username"] != "admin" {
		t.Errorf("Expected username admin, got %v", fields["username"])
	}
	for k, v := range fields {
		if strings.Contains(fmt.Sprint(v), "s3cret-jwt") {
			t.Errorf("token leaked into field %s", k)
		}
	}
}
