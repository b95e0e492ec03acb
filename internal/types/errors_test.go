package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, Classify(nil))
	})

	t.Run("entity not found classifies to api", func(t *testing.T) {
		err := errors.New("googleapi: Error 404: Requested entity was not found.")
		svcErr := Classify(err)
		require.NotNil(t, svcErr)
		assert.Equal(t, ErrAPI, svcErr.Kind)
		assert.Contains(t, svcErr.Details, "Requested entity was not found")
	})

	t.Run("invalid api key classifies to api", func(t *testing.T) {
		svcErr := Classify(errors.New("API key not valid. Please pass a valid API key."))
		assert.Equal(t, ErrAPI, svcErr.Kind)
	})

	t.Run("safety block classifies to safety", func(t *testing.T) {
		svcErr := Classify(errors.New("response blocked by SAFETY filters"))
		assert.Equal(t, ErrSafety, svcErr.Kind)
	})

	t.Run("transport errors classify to network", func(t *testing.T) {
		for _, msg := range []string{
			"dial tcp: connection refused",
			"read: connection reset by peer",
			"context deadline exceeded",
			"lookup generativelanguage.googleapis.com: no such host",
		} {
			svcErr := Classify(errors.New(msg))
			assert.Equal(t, ErrNetwork, svcErr.Kind, "message: %s", msg)
		}
	})

	t.Run("fallthrough classifies to unknown", func(t *testing.T) {
		svcErr := Classify(errors.New("something odd happened"))
		assert.Equal(t, ErrUnknown, svcErr.Kind)
		assert.Equal(t, "something odd happened", svcErr.Details)
	})

	t.Run("api wins over network when both signals present", func(t *testing.T) {
		// Priority is fixed by rule order, not by match strength.
		svcErr := Classify(errors.New("network error: permission denied"))
		assert.Equal(t, ErrAPI, svcErr.Kind)
	})

	t.Run("already classified errors pass through", func(t *testing.T) {
		orig := ParseFailure("Empty response from model", "")
		wrapped := fmt.Errorf("generate: %w", orig)
		assert.Same(t, orig, Classify(wrapped))
	})
}

func TestParseFailure(t *testing.T) {
	svcErr := ParseFailure("Failed to parse model JSON", "{broken")
	assert.Equal(t, ErrParse, svcErr.Kind)
	assert.Equal(t, "{broken", svcErr.Details)
	assert.Contains(t, svcErr.Error(), "parse")
}

func TestSafetyBlock(t *testing.T) {
	svcErr := SafetyBlock("Visualization blocked by safety filters.")
	assert.Equal(t, ErrSafety, svcErr.Kind)
	assert.Empty(t, svcErr.Details)
}
