package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Language", "cobol", "unsupported language")

		assert.Contains(t, err.Error(), "modelbuilder: config error")
		assert.Contains(t, err.Error(), "Language")
		assert.Contains(t, err.Error(), "cobol")
		assert.Contains(t, err.Error(), "unsupported language")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("OutFile", nil, "required in single-file mode")

		assert.Contains(t, err.Error(), "OutFile")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrInvalidConfig", func(t *testing.T) {
		err := NewConfigError("OutDirectory", nil, "missing")
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.True(t, IsConfigError(fmt.Errorf("wrapped: %w", err)))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewGenerationError("entities", "account", "cannot build class", cause)

		assert.Contains(t, err.Error(), "in phase entities")
		assert.Contains(t, err.Error(), "(unit: account)")
		assert.Contains(t, err.Error(), "cannot build class")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := NewTypeUnavailableError("WhoAmIRequest.Field", "Contoso.Thing")
		err := NewGenerationError("messages", "", "", cause)

		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, errors.Is(err, ErrTypeUnavailable))
		assert.True(t, IsGenerationError(err))
		assert.True(t, IsTypeUnavailable(err))
	})
}

func TestTypeUnavailableError(t *testing.T) {
	err := NewTypeUnavailableError("Target", "Contoso.Widget")
	assert.Equal(t, `modelbuilder: type unavailable "Contoso.Widget" for Target`, err.Error())
	assert.False(t, IsTypeUnavailable(errors.New("other")))
}
