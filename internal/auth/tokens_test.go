package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret", 30*time.Minute, 8*time.Hour)
}

func TestIssuePairRoundTrip(t *testing.T) {
	issuer := testIssuer()
	user := &User{ID: 42, Email: "rita@example.com", Role: RoleAuthor}

	pair, err := issuer.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, string(RoleAuthor), claims.Role)
	assert.ElementsMatch(t, []string{ScopeUserRead, ScopeAuthorWrite}, claims.Scopes)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refreshClaims.ID, "each token carries its own jti")
}

func TestParseRejectsCrossSecretTokens(t *testing.T) {
	issuer := testIssuer()
	pair, err := issuer.IssuePair(&User{ID: 1, Role: RoleRegular})
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := testIssuer()
	other := NewTokenIssuer("other-access", "other-refresh", time.Minute, time.Hour)

	pair, err := other.IssuePair(&User{ID: 1, Role: RoleRegular})
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	pair, err := issuer.IssuePair(&User{ID: 7, Role: RoleRegular})
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingExpiry(t *testing.T) {
	issuer := testIssuer()

	// Well-signed but carries no exp claim. Accepting it would mean a
	// token that never expires and cannot be aged out of the revocation
	// list.
	claims := Claims{
		Scopes: ScopesForRole(RoleRegular),
		Role:   string(RoleRegular),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "7",
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.NewString(),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = issuer.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer := testIssuer()
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.ParseAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestScopesForRole(t *testing.T) {
	assert.Equal(t, []string{ScopeUserRead}, ScopesForRole(RoleRegular))
	assert.Equal(t, []string{ScopeUserRead, ScopeAuthorWrite}, ScopesForRole(RoleAuthor))
	assert.Equal(t, []string{ScopeUserRead, ScopeAuthorWrite, ScopeAdminWrite}, ScopesForRole(RoleAdmin))
	assert.Equal(t, []string{ScopeUserRead}, ScopesForRole(Role("unknown")))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleRegular.Valid())
	assert.True(t, RoleAuthor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
