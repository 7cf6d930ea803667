package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithLanguage(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		expected string
		wantErr  bool
	}{
		{"go", "go", LanguageGo, false},
		{"yaml upper", "YAML", LanguageYAML, false},
		{"csharp", "cs", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithLanguage(tt.lang)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Language)
		})
	}
}

func TestWithSplitFiles(t *testing.T) {
	t.Run("sets directory", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithSplitFiles("Model")(c))
		assert.True(t, c.SplitFiles)
		assert.Equal(t, "Model", c.OutDirectory)
	})

	t.Run("empty directory", func(t *testing.T) {
		err := WithSplitFiles("")(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithFolders(t *testing.T) {
	c := &Config{EntityFolder: "E", MessageFolder: "M", OptionSetFolder: "O"}
	require.NoError(t, WithFolders("Tables", "", "Choices")(c))
	assert.Equal(t, "Tables", c.EntityFolder)
	assert.Equal(t, "M", c.MessageFolder)
	assert.Equal(t, "Choices", c.OptionSetFolder)
}

func TestFlagOptions(t *testing.T) {
	c := &Config{}
	err := c.Apply(
		WithServiceContext("  XrmContext "),
		WithGlobalOptionSets(),
		WithMessages("", true),
		WithMessageNamespace("http://schemas.example.com"),
		WithEntityNames("account;contact"),
		WithLegacyMode(),
		WithEmit(true, true, false),
		WithSuppressNotify(),
		WithSuppressGeneratedCode(),
		WithDefaultLanguage(1036),
		WithNamespace("model"),
	)
	require.NoError(t, err)
	assert.Equal(t, "XrmContext", c.ServiceContextName)
	assert.True(t, c.GenerateGlobalOptionSets)
	assert.True(t, c.GenerateMessages)
	assert.True(t, c.Private)
	assert.Equal(t, "account;contact", c.EntityNamesFilter)
	assert.True(t, c.LegacyMode)
	assert.True(t, c.EmitVirtualAttributes)
	assert.True(t, c.EmitFieldsClasses)
	assert.False(t, c.EmitEntityTypeCode)
	assert.True(t, c.SuppressINotifyPattern)
	assert.True(t, c.SuppressGeneratedCodeAttribute)
	assert.Equal(t, 1036, c.DefaultLanguageID)
	assert.Equal(t, "model", c.Namespace)
}

func TestWithWorkers(t *testing.T) {
	c := &Config{Workers: 4}
	require.NoError(t, WithWorkers(0)(c))
	assert.Equal(t, 4, c.Workers, "zero keeps the current value")
	require.NoError(t, WithWorkers(2)(c))
	assert.Equal(t, 2, c.Workers)
	require.Error(t, WithWorkers(-1)(c))
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	require.Error(t, WithLogger(nil)(c))
	log := zap.NewNop()
	require.NoError(t, WithLogger(log)(c))
	assert.Same(t, log, c.Logger)
}

func TestApply(t *testing.T) {
	t.Run("stops at first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithLanguage("cs"), WithNamespace("model"))
		require.Error(t, err)
		assert.Empty(t, c.Namespace)
	})

	t.Run("ApplyAll keeps going", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(WithLanguage("cs"), WithNamespace("model"), WithDefaultLanguage(-1))
		require.Error(t, err)
		assert.Equal(t, "model", c.Namespace)
		assert.Contains(t, err.Error(), "DefaultLanguageID")
	})

	t.Run("ApplyAll normalizes", func(t *testing.T) {
		c := &Config{}
		filter := func(c *Config) error {
			c.MessageNamesFilter = "new_Approve"
			return nil
		}
		require.NoError(t, c.ApplyAll(filter))
		assert.True(t, c.GenerateMessages)
		assert.NotNil(t, c.Logger)
	})
}
