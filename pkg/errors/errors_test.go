package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("id", "", "must not be empty")
	assert.Equal(t, "validation failed for field id: must not be empty", err.Error())
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidationError(err))
}

func TestValidationErrorWithoutField(t *testing.T) {
	err := NewValidationError("", nil, "bad input")
	assert.Equal(t, "validation failed: bad input", err.Error())
}

func TestParseErrorUnwrap(t *testing.T) {
	cause := New("unexpected token")
	err := NewParseError("yaml", "mapping.yaml", "mapping has no columns", cause)

	assert.Contains(t, err.Error(), "mapping.yaml")
	assert.Contains(t, err.Error(), "yaml")
	assert.ErrorIs(t, err, cause)
}

func TestWrapIO(t *testing.T) {
	assert.NoError(t, WrapIO("write", "out.csv", nil))

	cause := New("disk full")
	err := WrapIO("write", "out.csv", cause)
	require.Error(t, err)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Operation)
	assert.Equal(t, "out.csv", ioErr.Path)
	assert.ErrorIs(t, err, cause)
}

func TestWrapParse(t *testing.T) {
	assert.NoError(t, WrapParse("csv", "in.csv", nil))

	cause := New("record on line 3: wrong number of fields")
	err := WrapParse("csv", "in.csv", cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(New("other")))
}
