package policy

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/metadata"
)

// Filter layers a policy over a filter service. Allow forces a node in,
// Deny drops it, and abstention defers to the wrapped service.
type Filter struct {
	gen.FilterService
	policy Policy
	log    *zap.Logger

	once   sync.Once
	owners map[*metadata.Attribute]*metadata.Entity
}

var _ gen.FilterService = (*Filter)(nil)

// NewFilter returns base overlaid with p.
func NewFilter(base gen.FilterService, p Policy, log *zap.Logger) *Filter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Filter{FilterService: base, policy: p, log: log}
}

// decide evaluates the policy for n. It returns the forced decision and
// whether the policy made one.
func (f *Filter) decide(n Node, name string) (generate, decided bool) {
	switch err := f.policy.Eval(n); {
	case err == nil:
		return false, false
	case errors.Is(err, Allow):
		f.log.Debug("policy allowed", zap.Stringer("kind", n.Kind), zap.String("name", name), zap.String("rule", err.Error()))
		return true, true
	case errors.Is(err, Deny):
		f.log.Debug("policy denied", zap.Stringer("kind", n.Kind), zap.String("name", name), zap.String("rule", err.Error()))
		return false, true
	default:
		f.log.Warn("policy rule failed", zap.Stringer("kind", n.Kind), zap.String("name", name), zap.Error(err))
		return false, false
	}
}

// owner returns the entity declaring a. Attributes carry no back
// reference, so the index is built from the organization once.
func (f *Filter) owner(a *metadata.Attribute, s *gen.Services) *metadata.Entity {
	f.once.Do(func() {
		f.owners = make(map[*metadata.Attribute]*metadata.Entity)
		if s == nil || s.Org == nil {
			return
		}
		for _, e := range s.Org.Entities {
			for _, attr := range e.Attributes {
				f.owners[attr] = e
			}
		}
	})
	return f.owners[a]
}

// GenerateOptionSet implements gen.FilterService.
func (f *Filter) GenerateOptionSet(os *metadata.OptionSet, s *gen.Services) bool {
	if ok, decided := f.decide(Node{Kind: KindOptionSet, OptionSet: os}, os.Name); decided {
		return ok
	}
	return f.FilterService.GenerateOptionSet(os, s)
}

// GenerateOption implements gen.FilterService.
func (f *Filter) GenerateOption(o *metadata.Option, s *gen.Services) bool {
	if ok, decided := f.decide(Node{Kind: KindOption, Option: o}, o.InvariantName); decided {
		return ok
	}
	return f.FilterService.GenerateOption(o, s)
}

// GenerateEntity implements gen.FilterService.
func (f *Filter) GenerateEntity(e *metadata.Entity, s *gen.Services) bool {
	if e == nil {
		return false
	}
	if ok, decided := f.decide(Node{Kind: KindEntity, Entity: e}, e.LogicalName); decided {
		return ok
	}
	return f.FilterService.GenerateEntity(e, s)
}

// GenerateAttribute implements gen.FilterService.
func (f *Filter) GenerateAttribute(a *metadata.Attribute, s *gen.Services) bool {
	n := Node{Kind: KindAttribute, Attribute: a, Entity: f.owner(a, s)}
	if ok, decided := f.decide(n, a.LogicalName); decided {
		return ok
	}
	return f.FilterService.GenerateAttribute(a, s)
}

// GenerateRelationship implements gen.FilterService. A relationship whose
// other end is not generated is never forced in.
func (f *Filter) GenerateRelationship(r metadata.Relationship, other *metadata.Entity, s *gen.Services) bool {
	if ok, decided := f.decide(Node{Kind: KindRelationship, Relationship: r, Entity: other}, r.Name()); decided {
		return ok && other != nil && f.GenerateEntity(other, s)
	}
	return f.FilterService.GenerateRelationship(r, other, s)
}

// GenerateMessage implements gen.FilterService.
func (f *Filter) GenerateMessage(m *metadata.Message, s *gen.Services) bool {
	if ok, decided := f.decide(Node{Kind: KindMessage, Message: m}, m.Name); decided {
		return ok
	}
	return f.FilterService.GenerateMessage(m, s)
}

// GenerateMessagePair implements gen.FilterService.
func (f *Filter) GenerateMessagePair(p *metadata.Pair, s *gen.Services) bool {
	name := ""
	if p.Message != nil {
		name = p.Message.Name
	}
	if ok, decided := f.decide(Node{Kind: KindMessagePair, Pair: p}, name); decided {
		return ok
	}
	return f.FilterService.GenerateMessagePair(p, s)
}
