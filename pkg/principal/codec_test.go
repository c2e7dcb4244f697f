package principal_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/role"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewCodec(t *testing.T) {
	_, err := principal.NewCodec(nil)
	assert.ErrorIs(t, err, principal.ErrMissingSigningKey)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := principal.NewCodec(testKey, principal.WithIssuer("doctorq"))
	require.NoError(t, err)

	p := principal.Principal{UserID: "u1", Role: role.ClinicManager, ProfileID: "42"}
	token, err := codec.Issue(p, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, "doctorq", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, claims.IssuedAt+3600, claims.ExpiresAt)

	got, err := codec.Principal(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCodec_Issue(t *testing.T) {
	codec, err := principal.NewCodec(testKey)
	require.NoError(t, err)

	_, err = codec.Issue(principal.Principal{Role: role.Patient}, time.Hour)
	assert.ErrorIs(t, err, principal.ErrAnonymous)

	_, err = codec.Issue(principal.Principal{UserID: "u1", Role: "Gestor"}, time.Hour)
	assert.ErrorIs(t, err, principal.ErrInvalidClaims)

	a, err := codec.Issue(principal.Principal{UserID: "u1", Role: role.Patient}, time.Hour)
	require.NoError(t, err)
	b, err := codec.Issue(principal.Principal{UserID: "u1", Role: role.Patient}, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each token gets its own id")
}

func TestCodec_Parse_Rejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	codec, err := principal.NewCodec(testKey, principal.WithClock(clock))
	require.NoError(t, err)
	token, err := codec.Issue(principal.Principal{UserID: "u1", Role: role.Professional}, time.Minute)
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		_, err := codec.Parse("abc")
		assert.ErrorIs(t, err, principal.ErrInvalidToken)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := principal.NewCodec([]byte("another-key-another-key-another!!"))
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, principal.ErrInvalidSignature)
	})

	t.Run("tampered claims", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := base64.RawURLEncoding.EncodeToString(
			[]byte(`{"jti":"x","sub":"u1","role":"administrator","iat":1,"exp":9999999999}`))
		_, err := codec.Parse(parts[0] + "." + forged + "." + parts[2])
		assert.ErrorIs(t, err, principal.ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		later, err := principal.NewCodec(testKey, principal.WithClock(func() time.Time {
			return now.Add(2 * time.Minute)
		}))
		require.NoError(t, err)
		_, err = later.Parse(token)
		assert.ErrorIs(t, err, principal.ErrExpiredToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		strict, err := principal.NewCodec(testKey, principal.WithClock(clock), principal.WithIssuer("other"))
		require.NoError(t, err)
		_, err = strict.Parse(token)
		assert.ErrorIs(t, err, principal.ErrInvalidClaims)
	})
}
