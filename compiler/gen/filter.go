package gen

import (
	"strings"
	"sync"

	"github.com/syssam/modelbuilder/metadata"
)

// Entities generated whatever the message filters say.
const (
	activityParty = "activityparty"
	calendarRule  = "calendarrule"
)

// Filter is the default FilterService. Entity decisions scan the message
// graph and are cached per entity for the run.
type Filter struct {
	cfg *Config

	mu       sync.Mutex
	entities map[*metadata.Entity]bool
}

// NewFilter returns the default filter service.
func NewFilter(cfg *Config) *Filter {
	return &Filter{cfg: cfg, entities: make(map[*metadata.Entity]bool)}
}

// GenerateOptionSet reports whether an option set becomes an enum. Legacy
// runs only generate state enums.
func (f *Filter) GenerateOptionSet(os *metadata.OptionSet, _ *Services) bool {
	if f.cfg.LegacyMode {
		return os.Type == metadata.OptionSetState
	}
	return true
}

// GenerateOption reports whether an option becomes an enum value.
func (f *Filter) GenerateOption(*metadata.Option, *Services) bool { return true }

// GenerateEntity reports whether an entity becomes a class. Intersect
// entities, activity parties and calendar rules always do. Otherwise, when
// messages are generated, some public message must be valid for the entity.
func (f *Filter) GenerateEntity(e *metadata.Entity, s *Services) bool {
	if e == nil {
		return false
	}
	if e.IsIntersect || e.LogicalName == activityParty || e.LogicalName == calendarRule {
		return true
	}
	if !f.cfg.GenerateMessages && !f.cfg.LegacyMode {
		return true
	}
	f.mu.Lock()
	ok, cached := f.entities[e]
	f.mu.Unlock()
	if cached {
		return ok
	}
	ok = referencedByMessage(e, s)
	f.mu.Lock()
	f.entities[e] = ok
	f.mu.Unlock()
	return ok
}

func referencedByMessage(e *metadata.Entity, s *Services) bool {
	if e.ObjectTypeCode == nil || s == nil || s.Org == nil || s.Org.Messages == nil {
		return false
	}
	for _, m := range s.Org.Messages.All() {
		if m.IsPrivate {
			continue
		}
		for _, flt := range m.Filters() {
			if e.HasTypeCode(flt.PrimaryObjectTypeCode) || e.HasTypeCode(flt.SecondaryObjectTypeCode) {
				return true
			}
		}
	}
	return false
}

// GenerateAttribute reports whether an attribute becomes a property.
func (f *Filter) GenerateAttribute(a *metadata.Attribute, _ *Services) bool {
	if f.hiddenChild(a) {
		return false
	}
	if !a.IsValidForCreate && !a.IsValidForRead && !a.IsValidForUpdate {
		return false
	}
	switch a.Type {
	case metadata.TypePicklist, metadata.TypeState, metadata.TypeStatus:
		if a.OptionSet == nil || len(a.OptionSet.Options) == 0 {
			return false
		}
	}
	return true
}

// hiddenChild reports whether a is a derived view of another attribute
// that is not exposed. Images and "_url" or "_timestamp" companions are
// exposed, and so are "name" companions when virtual attributes are emitted.
func (f *Filter) hiddenChild(a *metadata.Attribute) bool {
	if a.AttributeOf == "" || a.IsImage() || a.HasSuffix("_url") || a.HasSuffix("_timestamp") {
		return false
	}
	if f.cfg.EmitVirtualAttributes && len(a.LogicalName) > 4 && a.HasSuffix("name") {
		return false
	}
	return true
}

// FormattedValue reports whether an attribute is read from the formatted
// values of its parent attribute.
func (f *Filter) FormattedValue(a *metadata.Attribute) bool {
	return readsFormattedValue(f.cfg, a)
}

func readsFormattedValue(cfg *Config, a *metadata.Attribute) bool {
	return cfg.EmitVirtualAttributes && a.IsNameCompanion()
}

// GenerateRelationship reports whether a relationship becomes a property.
// Calendar rule relationships are handled by the entity itself.
func (f *Filter) GenerateRelationship(_ metadata.Relationship, other *metadata.Entity, s *Services) bool {
	if other == nil || other.LogicalName == calendarRule {
		return false
	}
	return s.Filter.GenerateEntity(other, s)
}

// GenerateServiceContext reports whether the service context is generated.
func (f *Filter) GenerateServiceContext(*Services) bool {
	return strings.TrimSpace(f.cfg.ServiceContextName) != ""
}

// GenerateMessage reports whether a message is generated.
func (f *Filter) GenerateMessage(m *metadata.Message, s *Services) bool {
	if !f.cfg.GenerateMessages {
		return false
	}
	if m.IsPrivate && !f.cfg.Private {
		return false
	}
	if m.FilterCount() == 0 {
		return false
	}
	return !reserved(s).HasMessage(m.Name)
}

// GenerateMessagePair reports whether a message pair is generated. Only
// custom actions qualify unless private messages were requested.
func (f *Filter) GenerateMessagePair(p *metadata.Pair, s *Services) bool {
	if !f.cfg.GenerateMessages {
		return false
	}
	if !f.cfg.Private && (p.Message == nil || !p.Message.IsCustomAction) {
		return false
	}
	if p.Message != nil && reserved(s).HasMessage(p.Message.Name) {
		return false
	}
	if f.cfg.MessageNamespace == "" {
		return true
	}
	return equalFold(f.cfg.MessageNamespace, p.Namespace)
}

func reserved(s *Services) *Reserved {
	if s != nil && s.Reserved != nil {
		return s.Reserved
	}
	return DefaultReserved()
}
