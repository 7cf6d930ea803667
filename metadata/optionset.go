package metadata

import (
	"github.com/google/uuid"
)

// OptionSetType classifies an option set.
type OptionSetType string

// Option set types.
const (
	OptionSetPicklist OptionSetType = "Picklist"
	OptionSetState    OptionSetType = "State"
	OptionSetStatus   OptionSetType = "Status"
	OptionSetBoolean  OptionSetType = "Boolean"
)

// OptionSet is an enumeration of named integer values.
type OptionSet struct {
	MetadataID  uuid.UUID     `json:"metadataId" yaml:"metadataId"`
	Name        string        `json:"name" yaml:"name"`
	Type        OptionSetType `json:"type" yaml:"type"`
	IsGlobal    bool          `json:"isGlobal,omitempty" yaml:"isGlobal,omitempty"`
	DisplayName Label         `json:"displayName,omitzero" yaml:"displayName,omitempty"`
	Description Label         `json:"description,omitzero" yaml:"description,omitempty"`
	Options     []*Option     `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option is one named value of an option set.
type Option struct {
	Value int   `json:"value" yaml:"value"`
	Label Label `json:"label,omitzero" yaml:"label,omitempty"`
	// InvariantName is set on state options only.
	InvariantName string `json:"invariantName,omitempty" yaml:"invariantName,omitempty"`
	Description   Label  `json:"description,omitzero" yaml:"description,omitempty"`
}

// Label is a localized text.
type Label struct {
	LocalizedLabels []LocalizedLabel `json:"localizedLabels,omitempty" yaml:"localizedLabels,omitempty"`
}

// LocalizedLabel is the text of a label in one language.
type LocalizedLabel struct {
	Label        string `json:"label" yaml:"label"`
	LanguageCode int    `json:"languageCode" yaml:"languageCode"`
}

// IsZero reports whether the label has no localizations.
func (l Label) IsZero() bool {
	return len(l.LocalizedLabels) == 0
}

// In returns the non-empty text for the language code.
func (l Label) In(code int) (string, bool) {
	for _, ll := range l.LocalizedLabels {
		if ll.LanguageCode == code {
			return ll.Label, ll.Label != ""
		}
	}
	return "", false
}

// First returns the first localized text.
func (l Label) First() (string, bool) {
	if len(l.LocalizedLabels) == 0 {
		return "", false
	}
	return l.LocalizedLabels[0].Label, l.LocalizedLabels[0].Label != ""
}

// Text returns the text in the language code, falling back to the first
// available localization.
func (l Label) Text(code int) string {
	if s, ok := l.In(code); ok {
		return s
	}
	s, _ := l.First()
	return s
}
