package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrSeasonAlreadyClosed, "season 2024 already closed")

	assert.True(t, errors.Is(err, ErrSeasonAlreadyClosed))
	assert.False(t, errors.Is(err, ErrSeasonNotClosed))
	assert.Equal(t, "season 2024 already closed", err.Message)
	assert.Equal(t, "season already closed", ErrSeasonAlreadyClosed.Message)
}

func TestFromErrorUnwrapsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("close season: %w", Clone(ErrArchivedReadOnly, ""))

	got := FromError(wrapped)
	assert.Equal(t, "ARCHIVED_READ_ONLY", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("driver: bad connection")
	got := FromError(cause)

	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, FromError(nil))
}
