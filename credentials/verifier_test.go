package credentials_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/altura-labs/go-token-auth/credentials"
)

func TestHashAndVerify(t *testing.T) {
	verifier := credentials.NewVerifier(credentials.WithCost(4)) // min cost, keeps the test fast

	hash, err := verifier.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "correct horse")

	require.True(t, verifier.Verify("correct horse battery staple", hash))
	require.False(t, verifier.Verify("wrong password", hash))
}

func TestHashIsSalted(t *testing.T) {
	verifier := credentials.NewVerifier(credentials.WithCost(4))

	first, err := verifier.Hash("password123")
	require.NoError(t, err)
	second, err := verifier.Hash("password123")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, verifier.Verify("password123", first))
	require.True(t, verifier.Verify("password123", second))
}

func TestVerifyFailsClosed(t *testing.T) {
	verifier := credentials.NewVerifier()

	// A corrupt or empty stored hash is a non-match, never an error.
	require.False(t, verifier.Verify("anything", ""))
	require.False(t, verifier.Verify("anything", "not-a-bcrypt-hash"))
	require.False(t, verifier.Verify("anything", strings.Repeat("x", 60)))
}

func TestWithCostIgnoresOutOfRange(t *testing.T) {
	// Out-of-range costs fall back to the default rather than failing
	// at hash time.
	verifier := credentials.NewVerifier(credentials.WithCost(99))

	hash, err := verifier.Hash("password123")
	require.NoError(t, err)
	require.True(t, verifier.Verify("password123", hash))
}
