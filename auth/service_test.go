package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/storefront-go/apperror"
)

func newTestService(t *testing.T, firstUserIsAdmin bool) (*Service, *MemoryUserStore, *TokenService) {
	t.Helper()
	store := NewMemoryUserStore()
	hasher, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens := newTestTokenService(t)
	svc, err := NewService(store, hasher, tokens, firstUserIsAdmin, discardLogger())
	require.NoError(t, err)
	return svc, store, tokens
}

func TestService_RegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	first, err := svc.Register(ctx, "first@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	second, err := svc.Register(ctx, "second@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
}

func TestService_RegisterWithoutBootstrap(t *testing.T) {
	svc, _, _ := newTestService(t, false)

	first, err := svc.Register(context.Background(), "first@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, first.IsAdmin)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.io", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.io", "other")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.DuplicateEmailError))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateEmail))

	_, err = svc.Register(ctx, "A@x.io", "pw")
	assert.NoError(t, err)
}

func TestService_RegisterStoresHashNotPassword(t *testing.T) {
	svc, store, _ := newTestService(t, true)

	u, err := svc.Register(context.Background(), "a@x.io", "plaintext-pw")
	require.NoError(t, err)

	stored, err := store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext-pw", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
}

func TestService_RegisterOverlongPassword(t *testing.T) {
	svc, _, _ := newTestService(t, true)

	_, err := svc.Register(context.Background(), "a@x.io", strings.Repeat("p", 100))
	assert.True(t, apperror.IsValidationError(err))
}

func TestService_Login(t *testing.T) {
	svc, _, tokens := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	claims, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.WithinDuration(t, res.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestService_LoginMatchesEmailExactly(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.io", "s3cret")
	require.NoError(t, err)

	for _, email := range []string{" a@x.io", "a@x.io ", "A@x.io"} {
		_, err := svc.Login(ctx, email, "s3cret")
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials), "%q", email)
	}
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice@example.com", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@example.com", "s3cret")

	for _, err := range []error{wrongPassword, unknownEmail} {
		require.Error(t, err)
		ae, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, 401, ae.StatusCode())
		assert.Equal(t, apperror.CodeInvalidCredentials, ae.Code)
	}
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestService_SeedAdmin(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	ctx := context.Background()

	admin, err := svc.SeedAdmin(ctx, "ops@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	again, err := svc.SeedAdmin(ctx, "ops@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
