package render

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/compiler/gen"
)

// YAML dumps the declaration tree of each unit. It is the language-neutral
// view of a run, used to review what a renderer will be asked to spell.
type YAML struct{}

// NewYAML returns the YAML renderer.
func NewYAML() *YAML { return &YAML{} }

// Name implements Renderer.
func (*YAML) Name() string { return gen.LanguageYAML }

// Path implements Renderer. Split units keep their folders.
func (*YAML) Path(u *gen.Unit) string { return u.Path("yaml") }

// Render implements Renderer.
func (*YAML) Render(u *gen.Unit) ([]byte, error) {
	doc := yamlNamespace{Namespace: u.Namespace.Name}
	for _, t := range u.Namespace.Types {
		doc.Types = append(doc.Types, dumpType(t))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("render %s: %w", u.Base, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlNamespace struct {
	Namespace string     `yaml:"namespace,omitempty"`
	Types     []yamlType `yaml:"types"`
}

type yamlType struct {
	Name        string       `yaml:"name"`
	Kind        string       `yaml:"kind"`
	Static      bool         `yaml:"static,omitempty"`
	Base        string       `yaml:"base,omitempty"`
	Implements  []string     `yaml:"implements,omitempty"`
	TypeParams  []string     `yaml:"typeParams,omitempty"`
	Annotations []string     `yaml:"annotations,omitempty"`
	Doc         string       `yaml:"doc,omitempty"`
	Members     []yamlMember `yaml:"members,omitempty"`
	Nested      []yamlType   `yaml:"nested,omitempty"`
}

type yamlMember struct {
	Kind        string   `yaml:"kind"`
	Name        string   `yaml:"name,omitempty"`
	Type        string   `yaml:"type,omitempty"`
	Value       any      `yaml:"value,omitempty"`
	Override    bool     `yaml:"override,omitempty"`
	Static      bool     `yaml:"static,omitempty"`
	TypeParams  []string `yaml:"typeParams,omitempty"`
	Params      []string `yaml:"params,omitempty"`
	BaseArgs    []string `yaml:"baseArgs,omitempty"`
	Get         []string `yaml:"get,omitempty"`
	Set         []string `yaml:"set,omitempty"`
	Body        []string `yaml:"body,omitempty"`
	Annotations []string `yaml:"annotations,omitempty"`
	Doc         string   `yaml:"doc,omitempty"`
}

func dumpType(t *decl.Type) yamlType {
	out := yamlType{
		Name:        t.Name,
		Kind:        t.Kind.String(),
		Static:      t.Static,
		Base:        t.Base.String(),
		TypeParams:  dumpTypeParams(t.TypeParams),
		Annotations: dumpAnnotations(t.Annotations),
		Doc:         t.Doc,
	}
	for _, i := range t.Implements {
		out.Implements = append(out.Implements, i.String())
	}
	for _, m := range t.Members {
		out.Members = append(out.Members, dumpMember(m))
	}
	for _, n := range t.Nested {
		out.Nested = append(out.Nested, dumpType(n))
	}
	return out
}

func dumpMember(m decl.Member) yamlMember {
	switch m := m.(type) {
	case *decl.Field:
		kind := "field"
		if m.Const {
			kind = "const"
		}
		return yamlMember{Kind: kind, Name: m.Name, Type: m.Type.String(), Value: m.Value, Annotations: dumpAnnotations(m.Annotations), Doc: m.Doc}
	case *decl.EnumValue:
		return yamlMember{Kind: "value", Name: m.Name, Value: m.Value, Annotations: dumpAnnotations(m.Annotations), Doc: m.Doc}
	case *decl.Property:
		return yamlMember{
			Kind:        "property",
			Name:        m.Name,
			Type:        m.Type.String(),
			Override:    m.Override,
			Get:         dumpStmts(m.Getter),
			Set:         dumpStmts(m.Setter),
			Annotations: dumpAnnotations(m.Annotations),
			Doc:         m.Doc,
		}
	case *decl.Constructor:
		return yamlMember{Kind: "constructor", Params: dumpParams(m.Params), BaseArgs: m.BaseArgs, Body: dumpStmts(m.Body), Doc: m.Doc}
	case *decl.Event:
		return yamlMember{Kind: "event", Name: m.Name, Type: m.Interface}
	case *decl.Method:
		return yamlMember{
			Kind:       "method",
			Name:       m.Name,
			Type:       m.Returns.String(),
			Static:     m.Static,
			TypeParams: dumpTypeParams(m.TypeParams),
			Params:     dumpParams(m.Params),
			Body:       dumpStmts(m.Body),
			Doc:        m.Doc,
		}
	}
	return yamlMember{Kind: "unknown", Name: m.MemberName()}
}

func dumpTypeParams(tps []*decl.TypeParam) []string {
	var out []string
	for _, tp := range tps {
		s := tp.Name
		if tp.Constraint != nil {
			s += " " + tp.Constraint.String()
		}
		if tp.New {
			s += " new"
		}
		out = append(out, s)
	}
	return out
}

func dumpParams(ps []*decl.Param) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name+" "+p.Type.String())
	}
	return out
}

// dumpStmts spells each statement as "op key [role] [: type] [= value]".
func dumpStmts(body []*decl.Stmt) []string {
	var out []string
	for _, s := range body {
		var b strings.Builder
		b.WriteString(s.Op.String())
		if s.Key != "" {
			b.WriteString(" " + s.Key)
		}
		if s.Role != "" {
			b.WriteString(" [" + s.Role + "]")
		}
		if s.Type != nil {
			b.WriteString(" : " + s.Type.String())
		}
		switch v := s.Value.(type) {
		case nil:
		case decl.ParamValue:
			b.WriteString(" = " + string(v))
		default:
			fmt.Fprintf(&b, " = %q", fmt.Sprint(v))
		}
		out = append(out, b.String())
	}
	return out
}

func dumpAnnotations(as []*decl.Annotation) []string {
	var out []string
	for _, a := range as {
		args := make([]string, 0, len(a.Args))
		for _, arg := range a.Args {
			if arg.Key != "" {
				args = append(args, arg.Key+"="+arg.Value)
			} else {
				args = append(args, arg.Value)
			}
		}
		out = append(out, a.Name+"("+strings.Join(args, ", ")+")")
	}
	return out
}
