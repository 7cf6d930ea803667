package policy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"
)

// Env is the environment rule expressions are evaluated in. Names are
// metadata names (logical names for entities and attributes, schema
// names for relationships).
type Env struct {
	Kind         string `expr:"kind"`
	Entity       string `expr:"entity"`
	Schema       string `expr:"schema"`
	Intersect    bool   `expr:"intersect"`
	Attribute    string `expr:"attribute"`
	Type         string `expr:"type"`
	Deprecated   bool   `expr:"deprecated"`
	OptionSet    string `expr:"optionset"`
	Global       bool   `expr:"global"`
	Option       int    `expr:"option"`
	Relationship string `expr:"relationship"`
	Message      string `expr:"message"`
	Namespace    string `expr:"namespace"`
	Custom       bool   `expr:"custom"`
	Private      bool   `expr:"private"`
}

// NewEnv returns the expression environment of n.
func NewEnv(n Node) Env {
	env := Env{Kind: n.Kind.String()}
	if e := n.Entity; e != nil {
		env.Entity, env.Schema, env.Intersect = e.LogicalName, e.SchemaName, e.IsIntersect
	}
	if a := n.Attribute; a != nil {
		env.Attribute, env.Type, env.Deprecated = a.LogicalName, string(a.Type), a.DeprecatedVersion != ""
		if a.OptionSet != nil && n.OptionSet == nil {
			env.OptionSet = a.OptionSet.Name
		}
	}
	if os := n.OptionSet; os != nil {
		env.OptionSet, env.Global = os.Name, os.IsGlobal
	}
	if o := n.Option; o != nil {
		env.Option = o.Value
	}
	if r := n.Relationship; r != nil {
		env.Relationship = r.Name()
	}
	if p := n.Pair; p != nil {
		env.Namespace = p.Namespace
	}
	if m := n.message(); m != nil {
		env.Message, env.Custom, env.Private = m.Name, m.IsCustomAction, m.IsPrivate
	}
	return env
}

type exprRule struct {
	src      string
	program  *vm.Program
	decision error
}

// ExprRule compiles a boolean expression over Env. The rule returns
// decision when the expression holds for a node and abstains otherwise.
func ExprRule(src string, decision error) (Rule, error) {
	if !errors.Is(decision, Allow) && !errors.Is(decision, Deny) {
		return nil, fmt.Errorf("modelbuilder/policy: expression rule needs an allow or deny decision, got %v", decision)
	}
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("modelbuilder/policy: compile %q: %w", src, err)
	}
	return &exprRule{src: src, program: program, decision: decision}, nil
}

// MustExprRule is like ExprRule but panics on a bad expression.
func MustExprRule(src string, decision error) Rule {
	r, err := ExprRule(src, decision)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *exprRule) Eval(n Node) error {
	out, err := expr.Run(r.program, NewEnv(n))
	if err != nil {
		return fmt.Errorf("modelbuilder/policy: eval %q: %w", r.src, err)
	}
	if ok, _ := out.(bool); ok {
		return fmt.Errorf("%s: %w", r.src, r.decision)
	}
	return Skip
}

// File is the on-disk form of a policy.
type File struct {
	Rules []FileRule `yaml:"rules"`
}

// FileRule holds exactly one of Allow or Deny.
type FileRule struct {
	Allow string `yaml:"allow,omitempty"`
	Deny  string `yaml:"deny,omitempty"`
}

// Parse reads a policy from YAML (or JSON) data. Every rule is compiled
// and all failures are reported together.
func Parse(data []byte) (Policy, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("modelbuilder/policy: parse: %w", err)
	}
	var (
		p    Policy
		errs []error
	)
	for i, fr := range f.Rules {
		src, decision := fr.Allow, Allow
		switch {
		case strings.TrimSpace(fr.Allow) != "" && strings.TrimSpace(fr.Deny) != "":
			errs = append(errs, fmt.Errorf("modelbuilder/policy: rule %d sets both allow and deny", i+1))
			continue
		case strings.TrimSpace(fr.Deny) != "":
			src, decision = fr.Deny, Deny
		case strings.TrimSpace(fr.Allow) == "":
			errs = append(errs, fmt.Errorf("modelbuilder/policy: rule %d is empty", i+1))
			continue
		}
		r, err := ExprRule(src, decision)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i+1, err))
			continue
		}
		p = append(p, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads a policy file.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelbuilder/policy: %w", err)
	}
	return Parse(data)
}
