package driver

import (
	"context"
	"testing"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_Nil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}

func TestTranslate_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"element not found", &rod.ElementNotFoundError{}, CodeElementNotFound},
		{"wrapped element not found", errors.Wrap(&rod.ElementNotFoundError{}, "lookup"), CodeElementNotFound},
		{"navigation", &rod.NavigationError{Reason: "net::ERR_NAME_NOT_RESOLVED"}, CodeNavigation},
		{"net error text", errors.New("page load: net::ERR_CONNECTION_REFUSED"), CodeNavigation},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"cancelled", context.Canceled, CodeCancelled},
		{"anything else", errors.New("boom"), CodeDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err)
			code, ok := CodeOf(got)
			require.True(t, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	orig := SessionClosedError()

	got := Translate(orig)
	assert.Same(t, error(orig), got)

	// translated errors survive further wrapping
	wrapped := errors.Wrap(got, "operation failed")
	code, ok := CodeOf(Translate(wrapped))
	require.True(t, ok)
	assert.Equal(t, CodeSessionClosed, code)
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewError(CodeDriver, inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "driver_error")
	assert.Contains(t, err.Error(), "root cause")
}

func TestCodeOf_Plain(t *testing.T) {
	_, ok := CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestSessionNotFoundError(t *testing.T) {
	err := SessionNotFoundError("deadbeef")
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeSessionNotFound, code)
	assert.Contains(t, err.Error(), "deadbeef")
}

func TestTranslateWrap(t *testing.T) {
	assert.NoError(t, TranslateWrap(nil, "noop"))

	err := TranslateWrap(&rod.ElementNotFoundError{}, "click target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "click target")
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeElementNotFound, code)
}
