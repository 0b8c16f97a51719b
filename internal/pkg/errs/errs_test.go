package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorUsesTable(t *testing.T) {
	err := NewError(ErrUserAlreadyExists)

	assert.Equal(t, ErrUserAlreadyExists, err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "User with this email already exists.", err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(424242)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestIsSeesThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save users: %w", Wrap(ErrStorageWrite, cause))

	assert.True(t, Is(err, ErrStorageWrite))
	assert.False(t, Is(err, ErrStorageRead))
	assert.ErrorIs(t, err, cause)
	assert.False(t, Is(cause, ErrStorageWrite))
	assert.False(t, Is(nil, ErrUnknown))
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	original := NewError(ErrUserNotFound)
	assert.Same(t, original, From(fmt.Errorf("lookup: %w", original)))

	converted := From(errors.New("boom"))
	require.NotNil(t, converted)
	assert.Equal(t, ErrUnknown, converted.Code)
	assert.EqualError(t, converted.Err, "boom")
}
