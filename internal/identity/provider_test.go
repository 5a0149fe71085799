package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/orderdirect/internal/db/dbtest"
)

var (
	testAccess  = []byte("test-access-secret")
	testRefresh = []byte("test-refresh-secret")
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(dbtest.Open(t, Models()...), testAccess, testRefresh)
}

func signUpOwner(t *testing.T, p *Provider, email string) (userID, tenantID uuid.UUID) {
	t.Helper()
	id := uuid.New()
	require.NoError(t, p.SignUp(context.Background(), nil, OwnerSignup{
		UserID:   id,
		TenantID: id,
		Email:    email,
		Password: "password123",
		Name:     "Owner",
	}))
	return id, id
}

func TestSignUp_Validation(t *testing.T) {
	p := newTestProvider(t)

	err := p.SignUp(context.Background(), nil, OwnerSignup{UserID: uuid.New(), Email: "a@b.co", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignUp_DuplicateEmailIsConflict(t *testing.T) {
	p := newTestProvider(t)
	signUpOwner(t, p, "owner@acme.test")

	err := p.SignUp(context.Background(), nil, OwnerSignup{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Email:    "OWNER@acme.test",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignIn_ReturnsPrincipalWithTenant(t *testing.T) {
	p := newTestProvider(t)
	userID, tenantID := signUpOwner(t, p, "owner@acme.test")

	principal, toks, err := p.SignIn(context.Background(), " Owner@Acme.test ", "password123")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), principal.UserID)
	assert.Equal(t, tenantID.String(), principal.TenantID)
	assert.Equal(t, RoleOwner, principal.Role)
	assert.Equal(t, "Owner", principal.Name)

	current, err := p.Current(toks.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, principal, current)
}

func TestSignUpCustomer_HasNoTenant(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, p.SignUpCustomer(ctx, nil, CustomerSignup{
		UserID: id, Email: "Cara@Example.com", Password: "password123", Name: "Cara",
	}))

	principal, toks, err := p.SignIn(ctx, "cara@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, id.String(), principal.UserID)
	assert.Equal(t, RoleCustomer, principal.Role)
	assert.Empty(t, principal.TenantID)

	claims, err := AccessClaimsFromToken(toks.AccessToken, testAccess)
	require.NoError(t, err)
	assert.Empty(t, claims.TenantID)
	assert.Equal(t, RoleCustomer, claims.Role)

	err = p.SignUpCustomer(ctx, nil, CustomerSignup{UserID: uuid.New(), Email: "cara@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignIn_BadCredentials(t *testing.T) {
	p := newTestProvider(t)
	signUpOwner(t, p, "owner@acme.test")

	_, _, err := p.SignIn(context.Background(), "owner@acme.test", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = p.SignIn(context.Background(), "nobody@acme.test", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_RotatesAndRevokesOldToken(t *testing.T) {
	p := newTestProvider(t)
	signUpOwner(t, p, "owner@acme.test")

	_, first, err := p.SignIn(context.Background(), "owner@acme.test", "password123")
	require.NoError(t, err)

	principal, second, err := p.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEmpty(t, principal.TenantID)

	_, _, err = p.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignOut_RevokesRefreshToken(t *testing.T) {
	p := newTestProvider(t)
	signUpOwner(t, p, "owner@acme.test")

	_, toks, err := p.SignIn(context.Background(), "owner@acme.test", "password123")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(context.Background(), toks.RefreshToken))

	_, _, err = p.Refresh(context.Background(), toks.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_GarbageToken(t *testing.T) {
	p := newTestProvider(t)

	_, _, err := p.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubscribe_FiresOnSignInRefreshAndSignOut(t *testing.T) {
	p := newTestProvider(t)
	signUpOwner(t, p, "owner@acme.test")

	var seen []SessionEvent
	unsubscribe := p.Subscribe(func(ev SessionEvent) { seen = append(seen, ev) })

	principal, toks, err := p.SignIn(context.Background(), "owner@acme.test", "password123")
	require.NoError(t, err)
	_, toks, err = p.Refresh(context.Background(), toks.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, p.SignOut(context.Background(), toks.RefreshToken))

	require.Len(t, seen, 3)
	for _, ev := range seen {
		assert.Equal(t, principal.UserID, ev.UserID)
	}
	assert.NotNil(t, seen[0].Principal)
	assert.NotNil(t, seen[1].Principal)
	assert.Nil(t, seen[2].Principal)

	unsubscribe()
	_, _, err = p.SignIn(context.Background(), "owner@acme.test", "password123")
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestAccessClaimsFromToken_Expired(t *testing.T) {
	tok, err := signHS256(AccessClaims{
		TenantID: "t1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}, testAccess)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, testAccess)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAccessClaimsFromToken_WrongSecret(t *testing.T) {
	tok, err := signHS256(AccessClaims{TenantID: "t1"}, testAccess)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "password123"))
	assert.False(t, CheckPassword(h, "password124"))
}
