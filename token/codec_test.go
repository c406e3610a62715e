package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/token"
)

const (
	secretStr     = "test-secret-1234"
	testIssuer    = "com.testissuer"
	testSubjectID = "subject-1"
)

func newTestCodec(now func() time.Time) *token.Codec {
	return token.NewCodec(token.NewHMACSigner(secretStr),
		token.WithIssuer(testIssuer),
		token.WithNowFunc(now))
}

func TestIssueDecodeRoundTrip(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(func() time.Time { return now })

	for _, tokenType := range []token.Type{token.TypeAccess, token.TypeRefresh} {
		raw, issued, err := codec.Issue(testSubjectID, tokenType, time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, raw)
		require.NotEmpty(t, issued.TokenID)

		claims, err := codec.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, testSubjectID, claims.SubjectID)
		require.Equal(t, tokenType, claims.TokenType)
		require.Equal(t, issued.TokenID, claims.TokenID)
	}
}

func TestDecodeGeneratesUniqueTokenIDs(t *testing.T) {
	codec := newTestCodec(time.Now)

	_, first, err := codec.Issue(testSubjectID, token.TypeAccess, time.Hour)
	require.NoError(t, err)
	_, second, err := codec.Issue(testSubjectID, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, first.TokenID, second.TokenID)
}

func TestDecodeExpiredToken(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(func() time.Time { return now })

	raw, _, err := codec.Issue(testSubjectID, token.TypeAccess, time.Minute)
	require.NoError(t, err)

	// Move the clock past expiry
	later := newTestCodec(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = later.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestDecodeGarbage(t *testing.T) {
	codec := newTestCodec(time.Now)

	_, err := codec.Decode("not-a-token")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(func() time.Time { return now })
	other := token.NewCodec(token.NewHMACSigner("another-secret"),
		token.WithIssuer(testIssuer),
		token.WithNowFunc(func() time.Time { return now }))

	raw, _, err := other.Issue(testSubjectID, token.TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
