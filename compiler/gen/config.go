package gen

import (
	"errors"
	"runtime"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Output languages.
const (
	LanguageGo   = "go"
	LanguageYAML = "yaml"
)

// Default folder names of split output.
const (
	DefaultEntityFolder    = "Entities"
	DefaultMessageFolder   = "Messages"
	DefaultOptionSetFolder = "OptionSets"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the run parameters of a generation.
type Config struct {
	// Language selects the renderer.
	Language string `json:"language" yaml:"language" validate:"oneof=go yaml"`
	// Namespace is the namespace (Go package name) of generated code.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	// OutFile is the single output file.
	OutFile string `json:"outFile,omitempty" yaml:"outFile,omitempty"`
	// SplitFiles writes one unit per entity, message and option set.
	SplitFiles   bool   `json:"splitFiles,omitempty" yaml:"splitFiles,omitempty"`
	OutDirectory string `json:"outDirectory,omitempty" yaml:"outDirectory,omitempty"`

	EntityFolder    string `json:"entityFolder" yaml:"entityFolder" validate:"required"`
	MessageFolder   string `json:"messageFolder" yaml:"messageFolder" validate:"required"`
	OptionSetFolder string `json:"optionSetFolder" yaml:"optionSetFolder" validate:"required"`

	// ServiceContextName enables the service context class when set.
	ServiceContextName       string `json:"serviceContextName,omitempty" yaml:"serviceContextName,omitempty"`
	GenerateGlobalOptionSets bool   `json:"generateGlobalOptionSets,omitempty" yaml:"generateGlobalOptionSets,omitempty"`
	GenerateMessages         bool   `json:"generateMessages,omitempty" yaml:"generateMessages,omitempty"`
	// Private includes private messages.
	Private bool `json:"private,omitempty" yaml:"private,omitempty"`
	// MessageNamesFilter is a ";" separated list of message names; "*" is a wildcard.
	MessageNamesFilter string `json:"messageNamesFilter,omitempty" yaml:"messageNamesFilter,omitempty"`
	// EntityNamesFilter is a ";" separated list of entity logical names.
	EntityNamesFilter string `json:"entityNamesFilter,omitempty" yaml:"entityNamesFilter,omitempty"`
	MessageNamespace  string `json:"messageNamespace,omitempty" yaml:"messageNamespace,omitempty"`

	LegacyMode                     bool `json:"legacyMode,omitempty" yaml:"legacyMode,omitempty"`
	EmitVirtualAttributes          bool `json:"emitVirtualAttributes,omitempty" yaml:"emitVirtualAttributes,omitempty"`
	EmitFieldsClasses              bool `json:"emitFieldsClasses,omitempty" yaml:"emitFieldsClasses,omitempty"`
	EmitEntityTypeCode             bool `json:"emitEntityTypeCode,omitempty" yaml:"emitEntityTypeCode,omitempty"`
	SuppressINotifyPattern         bool `json:"suppressINotifyPattern,omitempty" yaml:"suppressINotifyPattern,omitempty"`
	SuppressGeneratedCodeAttribute bool `json:"suppressGeneratedCodeAttribute,omitempty" yaml:"suppressGeneratedCodeAttribute,omitempty"`

	// DefaultLanguageID is the label language of option names. Zero asks
	// the metadata source.
	DefaultLanguageID int `json:"defaultLanguageId,omitempty" yaml:"defaultLanguageId,omitempty" validate:"gte=0"`
	// Workers bounds parallel unit writing.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0"`

	Logger *zap.Logger `json:"-" yaml:"-" validate:"-"`
}

// NewConfig returns a config with defaults and the options applied.
// All option errors are reported together.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Language:        LanguageGo,
		EntityFolder:    DefaultEntityFolder,
		MessageFolder:   DefaultMessageFolder,
		OptionSetFolder: DefaultOptionSetFolder,
		Workers:         runtime.GOMAXPROCS(0),
		Logger:          zap.NewNop(),
	}
	if err := c.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// normalize applies the implied settings.
func (c *Config) normalize() {
	if c.MessageNamesFilter != "" {
		c.GenerateMessages = true
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// MessagesEnabled reports whether the run reads and generates messages.
func (c *Config) MessagesEnabled() bool {
	return c.GenerateMessages || c.MessageNamesFilter != ""
}

// Validate checks the output settings. It runs before any metadata is
// loaded so a bad invocation never contacts the source.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, NewConfigError(fe.StructField(), fe.Value(), "failed rule "+fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}
	switch {
	case c.SplitFiles && c.OutFile != "":
		errs = append(errs, NewConfigError("OutFile", c.OutFile, "cannot be combined with SplitFiles"))
	case c.SplitFiles && c.OutDirectory == "":
		errs = append(errs, NewConfigError("OutDirectory", nil, "required with SplitFiles"))
	case !c.SplitFiles && c.OutFile == "":
		errs = append(errs, NewConfigError("OutFile", nil, "required unless SplitFiles is set"))
	}
	return errors.Join(errs...)
}
