package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndVerify(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	signed, err := tokens.Issue("64b0c2f1a2b3c4d5e6f70809")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "64b0c2f1a2b3c4d5e6f70809", userID)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	signed, err := issuer.Issue("64b0c2f1a2b3c4d5e6f70809")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsTamperedToken(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	signed, err := tokens.Issue("64b0c2f1a2b3c4d5e6f70809")
	require.NoError(t, err)

	// Flipping any single byte (header, payload or signature) must
	// invalidate the token.
	for _, i := range []int{0, len(signed) / 2, len(signed) - 1} {
		tampered := []byte(signed)
		if tampered[i] == 'z' {
			tampered[i] = 'A'
		} else {
			tampered[i] = 'z'
		}
		_, err := tokens.Verify(string(tampered))
		assert.ErrorIs(t, err, ErrInvalidToken, "byte %d flipped", i)
	}
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tokens.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	// The constructor replaces non-positive TTLs with the default, so use
	// the smallest positive one and let it elapse.
	tokens := NewTokenService("test-secret", time.Nanosecond)

	signed, err := tokens.Issue("64b0c2f1a2b3c4d5e6f70809")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServicePanicsOnEmptySecret(t *testing.T) {
	assert.Panics(t, func() {
		NewTokenService("", time.Hour)
	})
}
