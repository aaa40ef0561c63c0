package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewLoadError("source file not found", os.ErrNotExist),
			want: "[LOAD] source file not found: file does not exist",
		},
		{
			name: "without cause",
			err:  NewConfigError("unsupported trace exporter", nil),
			want: "[CONFIG] unsupported trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("read: %w", os.ErrNotExist)
	err := NewLoadError("cannot read source", cause)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewLoadError("invalid value", nil).
		WithContext("source", "historical").
		WithContext("row", 7).
		WithContext("column", "month")

	assert.Equal(t, map[string]interface{}{
		"source": "historical",
		"row":    7,
		"column": "month",
	}, err.Context)

	bare := &AppError{Type: ErrTypeConfig, Message: "bad"}
	bare.WithContext("key", "value")
	assert.Equal(t, "value", bare.Context["key"])
}

func TestIsLoadError(t *testing.T) {
	load := NewLoadError("boom", nil)
	wrapped := fmt.Errorf("startup: %w", load)

	assert.True(t, IsLoadError(load))
	assert.True(t, IsLoadError(wrapped))
	assert.False(t, IsLoadError(NewConfigError("bad port", nil)))
	assert.False(t, IsLoadError(errors.New("plain")))
	assert.False(t, IsLoadError(nil))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeLoad, appErr.Type)
}

func TestConstructorsSetType(t *testing.T) {
	assert.Equal(t, ErrTypeLoad, NewLoadError("x", nil).Type)
	assert.Equal(t, ErrTypeConfig, NewConfigError("x", nil).Type)
	assert.NotNil(t, NewAppError(ErrTypeLoad, "x", nil).Context)
}
