package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_board/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWTManager("secret", time.Hour)

	token, err := j.Generate(models.User{ID: "u-1", Username: "alice", Role: models.RoleAdmin})
	require.NoError(t, err)

	u, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "u-1", Username: "alice", Role: models.RoleAdmin}, u)
}

func TestJWTRejectsForeignSecretAndExpired(t *testing.T) {
	j := NewJWTManager("secret", time.Minute)
	token, err := j.Generate(models.User{ID: "u-1", Username: "bob"})
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewJWTManager("secret", time.Minute)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTUnknownRoleBecomesTrader(t *testing.T) {
	j := NewJWTManager("secret", 0)
	token, err := j.Generate(models.User{ID: "u-2", Username: "carol", Role: "superuser"})
	require.NoError(t, err)

	u, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTrader, u.Role)
}

func TestGenerateRequiresSubject(t *testing.T) {
	_, err := NewJWTManager("secret", 0).Generate(models.User{Username: "nobody"})
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	j := NewJWTManager("secret", time.Hour)
	var seen models.User
	h := Middleware(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := j.Generate(models.User{ID: "u-3", Username: "dave", Role: models.RoleTrader})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "dave", seen.Username)
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, tc := range []struct {
		ctx  context.Context
		code int
	}{
		{context.Background(), http.StatusUnauthorized},
		{WithUser(context.Background(), models.User{ID: "1", Role: models.RoleTrader}), http.StatusForbidden},
		{WithUser(context.Background(), models.User{ID: "1", Role: models.RoleAdmin}), http.StatusOK},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(tc.ctx))
		assert.Equal(t, tc.code, rec.Code)
	}
}

func TestIssueAdmin(t *testing.T) {
	j := NewJWTManager("secret", time.Hour)

	u, token, err := IssueAdmin(j, "  root ")
	require.NoError(t, err)
	assert.Equal(t, "root", u.Username)
	assert.True(t, u.IsAdmin())
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err)

	parsed, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u, parsed)

	_, _, err = IssueAdmin(j, " ")
	assert.Error(t, err)
}
