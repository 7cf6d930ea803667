package gen

import (
	_ "embed"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed reserved.yaml
var reservedYAML []byte

// Reserved is the versioned denylist of names the base client library
// already defines.
type Reserved struct {
	SDKVersion    string   `yaml:"sdkVersion"`
	EntityMembers []string `yaml:"entityMembers"`
	SDKTypes      []string `yaml:"sdkTypes"`
	MessageTypes  []string `yaml:"messageTypes"`

	members  map[string]struct{}
	types    map[string]struct{}
	messages []string
}

var loadReserved = sync.OnceValues(func() (*Reserved, error) {
	return ParseReserved(reservedYAML)
})

// DefaultReserved returns the denylist shipped with the generator.
func DefaultReserved() *Reserved {
	r, err := loadReserved()
	if err != nil {
		panic("gen: embedded reserved.yaml: " + err.Error())
	}
	return r
}

// ParseReserved decodes a denylist document.
func ParseReserved(data []byte) (*Reserved, error) {
	r := &Reserved{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	r.members = names(r.EntityMembers...)
	r.types = make(map[string]struct{}, len(r.SDKTypes))
	for _, t := range r.SDKTypes {
		r.types[fold(t)] = struct{}{}
	}
	for _, t := range r.MessageTypes {
		r.messages = append(r.messages, fold(t))
	}
	return r, nil
}

// IsMember reports whether name is a member of the base entity type.
func (r *Reserved) IsMember(name string) bool {
	_, ok := r.members[name]
	return ok
}

// HasSDKType reports whether the core SDK namespace defines a type with
// the given name, ignoring case.
func (r *Reserved) HasSDKType(name string) bool {
	_, ok := r.types[fold("Microsoft.Xrm.Sdk."+name)]
	return ok
}

// HasMessage reports whether a shipped request or response type starts
// with the qualified message name, ignoring case.
func (r *Reserved) HasMessage(message string) bool {
	prefixes := []string{
		fold("Microsoft.Xrm.Sdk.Messages." + message),
		fold("Microsoft.Crm.Sdk.Messages." + message),
	}
	for _, t := range r.messages {
		for _, p := range prefixes {
			if strings.HasPrefix(t, p) {
				return true
			}
		}
	}
	return false
}

// fold returns the case folded form of s. A Caser is stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// equalFold reports whether a and b are equal under case folding.
func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}
