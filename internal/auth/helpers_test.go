package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	t.Run("returns error when no claims in context", func(t *testing.T) {
		ctx := context.Background()
		claims, err := RequireAuth(ctx)
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns claims when present in context", func(t *testing.T) {
		ctx := context.Background()
		expectedClaims := &UserClaims{UID: "user-123", Email: "test@example.com"}
		ctx = withUserClaims(ctx, expectedClaims)

		claims, err := RequireAuth(ctx)
		require.NoError(t, err)
		assert.Equal(t, expectedClaims.UID, claims.UID)
		assert.Equal(t, expectedClaims.Email, claims.Email)
	})
}

func TestRequireUserAccess(t *testing.T) {
	t.Run("returns error when no claims in context", func(t *testing.T) {
		ctx := context.Background()
		claims, err := RequireUserAccess(ctx, "user-123")
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns error when user ID does not match", func(t *testing.T) {
		ctx := context.Background()
		ctx = withUserClaims(ctx, &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "user-456")
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "cannot access another user's resources")
	})

	t.Run("returns claims when user ID matches", func(t *testing.T) {
		ctx := context.Background()
		ctx = withUserClaims(ctx, &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UID)
	})

	t.Run("empty requested ID allows any authenticated user", func(t *testing.T) {
		ctx := withUserClaims(context.Background(), &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UID)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", false},
		{"lowercase bearer", "bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing token", "Bearer", "", true},
		{"wrong scheme", "Basic abc123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, int32(100), NormalizePageSize(0))
	assert.Equal(t, int32(100), NormalizePageSize(-1))
	assert.Equal(t, int32(50), NormalizePageSize(50))
	assert.Equal(t, int32(1000), NormalizePageSize(5000))
}

func TestLocalDevMiddleware(t *testing.T) {
	var captured *UserClaims
	handler := LocalDevMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = GetUserClaims(r.Context())
	}))

	t.Run("injects default dev identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, captured)
		assert.Equal(t, "local-dev-user", captured.UID)
	})

	t.Run("impersonation header overrides identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
		req.Header.Set("X-Debug-Impersonate-User", "alice")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, captured)
		assert.Equal(t, "alice", captured.UID)
		assert.Equal(t, "alice@debug.local", captured.Email)
	})
}
