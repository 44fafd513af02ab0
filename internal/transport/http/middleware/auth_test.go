package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserRepo struct {
	findByID func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(context.Context, string, string) error { return nil }

func (r *fakeUserRepo) BumpSessionEpoch(context.Context, string) (int64, error) { return 0, nil }

var sessionUser = &domain.User{ID: "user-1", Username: "testuser", SessionEpoch: 2}

// newEngine builds a minimal gin engine with the Session middleware
// protecting GET /protected. The handler writes the attached username so we
// can assert the user was loaded.
func newEngine(repo *fakeUserRepo) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Session([]byte(testKey), repo, slog.Default()), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CurrentUser(c).Username)
	})
	return r
}

func repoWithUser(u *domain.User) *fakeUserRepo {
	return &fakeUserRepo{
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			if id != u.ID {
				return nil, domain.ErrUserNotFound
			}
			return u, nil
		},
	}
}

func makeSessionJWT(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func doWithCookie(t *testing.T, r *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSession_MissingCookie_Returns401(t *testing.T) {
	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_InvalidToken_Returns401(t *testing.T) {
	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), "not.a.jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_ExpiredToken_Returns401(t *testing.T) {
	tok := makeSessionJWT(t, []byte(testKey), jwt.MapClaims{
		"sub": sessionUser.ID,
		"sv":  sessionUser.SessionEpoch,
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	})

	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_WrongSigningKey_Returns401(t *testing.T) {
	tok := makeSessionJWT(t, []byte("different-key-that-is-32-chars!!"), jwt.MapClaims{
		"sub": sessionUser.ID,
		"sv":  sessionUser.SessionEpoch,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSession_UserGone_Returns404(t *testing.T) {
	repo := &fakeUserRepo{
		findByID: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	tok := makeSessionJWT(t, []byte(testKey), jwt.MapClaims{
		"sub": sessionUser.ID,
		"sv":  sessionUser.SessionEpoch,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doWithCookie(t, newEngine(repo), tok)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// A token issued at an older epoch fails even though its signature is valid.
func TestSession_EpochDrift_Returns401(t *testing.T) {
	tok := makeSessionJWT(t, []byte(testKey), jwt.MapClaims{
		"sub": sessionUser.ID,
		"sv":  sessionUser.SessionEpoch - 1,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), tok)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := w.Body.String(); body == "" || body == sessionUser.Username {
		t.Errorf("expected session-expired error body, got %q", body)
	}
}

func TestSession_ValidToken_AttachesUser(t *testing.T) {
	tok := makeSessionJWT(t, []byte(testKey), jwt.MapClaims{
		"sub": sessionUser.ID,
		"sv":  sessionUser.SessionEpoch,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	w := doWithCookie(t, newEngine(repoWithUser(sessionUser)), tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != sessionUser.Username {
		t.Errorf("body = %q, want %q", got, sessionUser.Username)
	}
}
