package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasher() Hasher {
	return Hasher{Name: "sha256", Iterations: 1000, Separator: "$"}
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	stored, err := h.Hash("password")
	require.NoError(t, err)
	require.NotEqual(t, "password", stored)
	require.True(t, strings.Contains(stored, "$"))

	require.True(t, h.Verify("password", stored))
	require.False(t, h.Verify("wrong_password", stored))
}

func TestHashUsesUniqueSalts(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("password")
	require.NoError(t, err)
	second, err := h.Hash("password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, h.Verify("password", first))
	require.True(t, h.Verify("password", second))
}

func TestVerifyMalformedStored(t *testing.T) {
	h := testHasher()

	require.False(t, h.Verify("password", ""))
	require.False(t, h.Verify("password", "no_separator_here"))
	require.False(t, h.Verify("password", "$digestwithoutsalt"))
	require.False(t, h.Verify("password", "saltwithoutdigest$"))
}

func TestRandomSalt(t *testing.T) {
	for i := 0; i < 50; i++ {
		salt, err := randomSalt()
		require.NoError(t, err)
		require.Len(t, salt, saltLength)
		for _, c := range salt {
			require.Contains(t, saltLetters, string(c))
		}
	}
}

func TestHashAlgorithms(t *testing.T) {
	for _, name := range []string{"sha1", "sha256", "sha512"} {
		h := Hasher{Name: name, Iterations: 100, Separator: "$"}
		stored, err := h.Hash("password")
		require.NoError(t, err)
		require.True(t, h.Verify("password", stored), name)
		require.False(t, h.Verify("other", stored), name)
	}
}
