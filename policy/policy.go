package policy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/modelbuilder/metadata"
)

// Policy decision sentinel errors. Rules return them, possibly wrapped,
// and callers test them with errors.Is.
var (
	// Allow ends the evaluation and forces the node to be generated.
	Allow = errors.New("modelbuilder/policy: allow rule")

	// Deny ends the evaluation and drops the node.
	Deny = errors.New("modelbuilder/policy: deny rule")

	// Skip abstains; evaluation continues with the next rule.
	Skip = errors.New("modelbuilder/policy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Kind is the kind of metadata node under evaluation.
type Kind uint8

// Node kinds.
const (
	KindEntity Kind = iota + 1
	KindAttribute
	KindOptionSet
	KindOption
	KindRelationship
	KindMessage
	KindMessagePair
)

var kindNames = [...]string{
	KindEntity:       "entity",
	KindAttribute:    "attribute",
	KindOptionSet:    "optionset",
	KindOption:       "option",
	KindRelationship: "relationship",
	KindMessage:      "message",
	KindMessagePair:  "pair",
}

// String returns the name used for the kind in expressions.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Node is one metadata node asked about by the filter. Only the fields
// relevant to Kind are set. Entity is the owning entity of an attribute
// and the other end of a relationship.
type Node struct {
	Kind         Kind
	Entity       *metadata.Entity
	Attribute    *metadata.Attribute
	OptionSet    *metadata.OptionSet
	Option       *metadata.Option
	Relationship metadata.Relationship
	Message      *metadata.Message
	Pair         *metadata.Pair
}

// Rule decides about one node.
type Rule interface {
	Eval(Node) error
}

// RuleFunc is an adapter to allow the use of ordinary functions as rules.
type RuleFunc func(Node) error

// Eval returns f(n).
func (f RuleFunc) Eval(n Node) error { return f(n) }

// Policy is an ordered chain of rules.
type Policy []Rule

// Eval runs the rules in order. It returns Allow or Deny (possibly wrapped)
// for the first rule that decides, any other error a rule returns, and nil
// when every rule abstains.
func (p Policy) Eval(n Node) error {
	for _, rule := range p {
		switch decision := rule.Eval(n); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(Node) error { return f.decision }

// AlwaysAllowRule returns a rule that always allows.
func AlwaysAllowRule() Rule { return fixedDecision{Allow} }

// AlwaysDenyRule returns a rule that always denies.
func AlwaysDenyRule() Rule { return fixedDecision{Deny} }

// OnKind evaluates rule only for nodes of the given kinds.
func OnKind(rule Rule, kinds ...Kind) Rule {
	return RuleFunc(func(n Node) error {
		if slices.Contains(kinds, n.Kind) {
			return rule.Eval(n)
		}
		return Skip
	})
}

// AllowEntities allows the entities with the given logical names, along
// with their attributes.
func AllowEntities(logicalNames ...string) Rule {
	return entityRule(Allow, logicalNames)
}

// DenyEntities denies the entities with the given logical names. Their
// attributes are denied too, so is any relationship pointing to them.
func DenyEntities(logicalNames ...string) Rule {
	return entityRule(Deny, logicalNames)
}

func entityRule(decision error, names []string) Rule {
	return RuleFunc(func(n Node) error {
		switch n.Kind {
		case KindEntity, KindAttribute, KindRelationship:
		default:
			return Skip
		}
		if n.Entity != nil && slices.Contains(names, n.Entity.LogicalName) {
			return fmt.Errorf("entity %s: %w", n.Entity.LogicalName, decision)
		}
		return Skip
	})
}

// DenyMessages denies the messages with the given names and their pairs.
func DenyMessages(names ...string) Rule {
	return RuleFunc(func(n Node) error {
		if m := n.message(); m != nil && slices.Contains(names, m.Name) {
			return Denyf("message %s", m.Name)
		}
		return Skip
	})
}

func (n Node) message() *metadata.Message {
	switch {
	case n.Message != nil:
		return n.Message
	case n.Pair != nil:
		return n.Pair.Message
	}
	return nil
}
