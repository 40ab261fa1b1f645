package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.Generate(id)
	require.NoError(t, err)

	got, err := m.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("one", time.Hour).Generate(uuid.New())
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestResetToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateResetToken(id)
	require.NoError(t, err)

	got, err := m.VerifyResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	id := uuid.New()

	access, err := m.Generate(id)
	require.NoError(t, err)
	reset, err := m.GenerateResetToken(id)
	require.NoError(t, err)

	_, err = m.VerifyResetToken(access)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = m.Verify(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken_Expired(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	past := time.Now().Add(-time.Hour)

	token, err := m.sign(Claims{
		ResetPassword: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(ResetTokenTTL)),
		},
	})
	require.NoError(t, err)

	_, err = m.VerifyResetToken(token)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractTokenFromHeader(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "bearer abc.def")
	token, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)
}

func TestAvatar(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/d4c74594d841139328695756648b6bd6?d=identicon&s=128",
		Avatar("John@Example.com", 128))
}
