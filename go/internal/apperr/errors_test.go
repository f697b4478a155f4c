package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("failed to place bid: %w", Validation(CodeBidTooLow, "bid %d must exceed %d", 4, 5))

	assert.True(t, IsValidation(err))
	assert.False(t, IsConsistency(err))
	assert.False(t, IsRetryable(err))
	assert.True(t, HasCode(err, CodeBidTooLow))
	assert.False(t, HasCode(err, CodeAuctionClosed))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "bid 4 must exceed 5", e.Message)
	assert.Equal(t, "failed to place bid: BID_TOO_LOW: bid 4 must exceed 5", err.Error())
}

func TestConflictWrapsCause(t *testing.T) {
	cause := Validation(CodeDuplicateActiveContract, "player already has an active contract")
	err := Conflict(CodeStaleTradeReference, cause, "trade %d moved", 7)

	assert.True(t, IsRetryable(err))
	assert.True(t, HasCode(err, CodeStaleTradeReference))
	assert.True(t, HasCode(err, CodeDuplicateActiveContract))
	assert.True(t, errors.Is(err, cause))
}

func TestPlainErrorsAreUnclassified(t *testing.T) {
	err := errors.New("connection reset")
	assert.False(t, IsValidation(err))
	assert.False(t, IsRetryable(err))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Equal(t, "consistency", KindConsistency.String())
}
