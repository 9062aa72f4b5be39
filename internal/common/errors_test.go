package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	err := NewAppError("OCR_ERROR", "page 2 failed", ErrProviderRequest)

	assert.ErrorIs(t, err, ErrProviderRequest)
	assert.Equal(t, "OCR_ERROR: page 2 failed: provider request failed", err.Error())

	bare := NewAppError("CONFIG_ERROR", "missing key", nil)
	assert.Equal(t, "CONFIG_ERROR: missing key", bare.Error())
	assert.NoError(t, errors.Unwrap(bare))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "persist upload"))

	wrapped := WrapError(ErrCorruptDocument, "persist upload")
	assert.ErrorIs(t, wrapped, ErrCorruptDocument)
	assert.Equal(t, "persist upload: corrupt document", wrapped.Error())
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}
