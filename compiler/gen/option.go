package gen

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Option configures code generation.
type Option func(*Config) error

// WithLanguage selects the output language: "go" or "yaml".
func WithLanguage(lang string) Option {
	return func(c *Config) error {
		switch l := strings.ToLower(lang); l {
		case LanguageGo, LanguageYAML:
			c.Language = l
			return nil
		default:
			return NewConfigError("Language", lang, "unsupported language; use go or yaml")
		}
	}
}

// WithNamespace sets the namespace of generated code.
func WithNamespace(ns string) Option {
	return func(c *Config) error {
		c.Namespace = ns
		return nil
	}
}

// WithOutFile writes all declarations to a single file.
func WithOutFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("OutFile", nil, "output file cannot be empty")
		}
		c.OutFile = path
		return nil
	}
}

// WithSplitFiles writes one unit per entity, message and option set
// below dir.
func WithSplitFiles(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("OutDirectory", nil, "output directory cannot be empty")
		}
		c.SplitFiles = true
		c.OutDirectory = dir
		return nil
	}
}

// WithFolders overrides the split output folder names. Empty names keep
// the current value.
func WithFolders(entities, messages, optionSets string) Option {
	return func(c *Config) error {
		if entities != "" {
			c.EntityFolder = entities
		}
		if messages != "" {
			c.MessageFolder = messages
		}
		if optionSets != "" {
			c.OptionSetFolder = optionSets
		}
		return nil
	}
}

// WithServiceContext enables the service context class with the given name.
func WithServiceContext(name string) Option {
	return func(c *Config) error {
		c.ServiceContextName = strings.TrimSpace(name)
		return nil
	}
}

// WithGlobalOptionSets includes every global option set.
func WithGlobalOptionSets() Option {
	return func(c *Config) error {
		c.GenerateGlobalOptionSets = true
		return nil
	}
}

// WithMessages enables message generation. A non-empty filter limits the
// messages read; private messages are included only when private is set.
func WithMessages(filter string, private bool) Option {
	return func(c *Config) error {
		c.GenerateMessages = true
		c.MessageNamesFilter = filter
		c.Private = private
		return nil
	}
}

// WithMessageNamespace keeps only message pairs on the given namespace.
func WithMessageNamespace(ns string) Option {
	return func(c *Config) error {
		c.MessageNamespace = ns
		return nil
	}
}

// WithEntityNames limits the entities read to a ";" separated list.
func WithEntityNames(filter string) Option {
	return func(c *Config) error {
		c.EntityNamesFilter = filter
		return nil
	}
}

// WithLegacyMode generates the legacy declaration shape: option set
// attributes keep their raw value type and only state enums are emitted.
func WithLegacyMode() Option {
	return func(c *Config) error {
		c.LegacyMode = true
		return nil
	}
}

// WithEmit toggles the optional emissions.
func WithEmit(virtualAttributes, fieldsClasses, entityTypeCode bool) Option {
	return func(c *Config) error {
		c.EmitVirtualAttributes = virtualAttributes
		c.EmitFieldsClasses = fieldsClasses
		c.EmitEntityTypeCode = entityTypeCode
		return nil
	}
}

// WithSuppressNotify drops the change notification scaffolding.
func WithSuppressNotify() Option {
	return func(c *Config) error {
		c.SuppressINotifyPattern = true
		return nil
	}
}

// WithSuppressGeneratedCode drops the generated-code annotation.
func WithSuppressGeneratedCode() Option {
	return func(c *Config) error {
		c.SuppressGeneratedCodeAttribute = true
		return nil
	}
}

// WithDefaultLanguage sets the label language of option names.
func WithDefaultLanguage(id int) Option {
	return func(c *Config) error {
		if id < 0 {
			return NewConfigError("DefaultLanguageID", id, "language id cannot be negative")
		}
		c.DefaultLanguageID = id
		return nil
	}
}

// WithWorkers sets the number of parallel unit writers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		if n > 0 {
			c.Workers = n
		}
		return nil
	}
}

// WithLogger sets the run logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) error {
		if log == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = log
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	c.normalize()
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	c.normalize()
	return errors.Join(errs...)
}
