package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistenceError_Unwrap(t *testing.T) {
	err := NewPersistenceError("insert", ErrSlugConflict)

	assert.True(t, stderrors.Is(err, ErrSlugConflict))
	assert.True(t, IsPersistence(err))
	assert.Contains(t, err.Error(), "insert")
}

func TestPersistenceError_WrappedFurther(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("shorten: %w", NewPersistenceError("get_by_url", cause))

	assert.True(t, IsPersistence(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, stderrors.Is(err, ErrSlugConflict))
}

func TestNewPersistenceError_Nil(t *testing.T) {
	assert.NoError(t, NewPersistenceError("insert", nil))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "url", Reason: "scheme must be http or https"}
	assert.Equal(t, "invalid url: scheme must be http or https", err.Error())
	assert.False(t, IsPersistence(err))
}

func TestErrSlugGenerationFailed_Message(t *testing.T) {
	err := &ErrSlugGenerationFailed{Attempts: 5}
	assert.Contains(t, err.Error(), "5 attempts")
}
