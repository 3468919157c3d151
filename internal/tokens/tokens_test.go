package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mzagorenko/clinic/internal/apperr"
)

var testSecret = []byte("test-secret-key")

func TestIssueAndDecode(t *testing.T) {
	issuer := Issuer{Secret: testSecret, Algorithm: "HS256", TTL: 15 * time.Minute}
	userID := uuid.New()

	signed, exp, err := issuer.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.True(t, exp.After(time.Now()))

	decoded, err := issuer.Decode(signed)
	require.NoError(t, err)
	require.Equal(t, userID, decoded)
}

func TestDecodeExpired(t *testing.T) {
	issuer := Issuer{Secret: testSecret, Algorithm: "HS256", TTL: -time.Minute}

	signed, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Decode(signed)
	require.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestDecodeGarbage(t *testing.T) {
	issuer := Issuer{Secret: testSecret, Algorithm: "HS256", TTL: time.Minute}

	_, err := issuer.Decode("not-a-token")
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestDecodeWrongSecret(t *testing.T) {
	issuer := Issuer{Secret: testSecret, Algorithm: "HS256", TTL: time.Minute}
	signed, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	other := Issuer{Secret: []byte("other-secret"), Algorithm: "HS256", TTL: time.Minute}
	_, err = other.Decode(signed)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestIssueUnknownAlgorithm(t *testing.T) {
	issuer := Issuer{Secret: testSecret, Algorithm: "HS1024", TTL: time.Minute}
	_, _, err := issuer.Issue(uuid.New())
	require.Error(t, err)
}
