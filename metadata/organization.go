package metadata

import (
	"sync"
)

// DefaultLanguageCode is used for labels when the organization reports no
// usable default language.
const DefaultLanguageCode = 1033

// Organization is the aggregate root of a run: entities, global option sets
// and the message graph. It is assembled once and read-only afterwards,
// except for AddOptionSet.
type Organization struct {
	Entities []*Entity
	Messages *Messages
	// LanguageCode is the organization's default label language.
	LanguageCode int

	mu         sync.Mutex
	optionSets []*OptionSet
	byName     map[string]*OptionSet
	byLogical  map[string]*Entity
}

// NewOrganization returns an organization over the given entities, global
// option sets and messages. Option sets are deduplicated by name.
func NewOrganization(entities []*Entity, optionSets []*OptionSet, messages *Messages) *Organization {
	if messages == nil {
		messages = NewMessages()
	}
	o := &Organization{
		Entities:     entities,
		Messages:     messages,
		LanguageCode: DefaultLanguageCode,
		byName:       make(map[string]*OptionSet),
		byLogical:    make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		o.byLogical[e.LogicalName] = e
	}
	for _, os := range optionSets {
		o.AddOptionSet(os)
	}
	return o
}

// AddOptionSet appends a global option set. Adding a name that is already
// present is a no-op; it reports whether the set was added.
func (o *Organization) AddOptionSet(os *OptionSet) bool {
	if os == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.byName == nil {
		o.byName = make(map[string]*OptionSet)
	}
	if _, ok := o.byName[os.Name]; ok {
		return false
	}
	o.byName[os.Name] = os
	o.optionSets = append(o.optionSets, os)
	return true
}

// OptionSets returns a snapshot of the global option sets in insertion order.
func (o *Organization) OptionSets() []*OptionSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*OptionSet(nil), o.optionSets...)
}

// OptionSet returns the global option set with the given name.
func (o *Organization) OptionSet(name string) (*OptionSet, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	os, ok := o.byName[name]
	return os, ok
}

// Entity returns the entity with the given logical name.
func (o *Organization) Entity(logicalName string) *Entity {
	if o.byLogical == nil {
		for _, e := range o.Entities {
			if e.LogicalName == logicalName {
				return e
			}
		}
		return nil
	}
	return o.byLogical[logicalName]
}
