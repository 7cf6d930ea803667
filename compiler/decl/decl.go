// Package decl is the language-agnostic declaration tree produced by the
// generator and consumed by renderers: namespaces hold class and enum
// types, types hold members, and property bodies are lists of abstract
// statements that each renderer spells out in its own language.
package decl

// Namespace is a named group of type declarations.
type Namespace struct {
	Name  string
	Types []*Type
}

// Add appends types to the namespace, skipping nil entries.
func (ns *Namespace) Add(types ...*Type) {
	for _, t := range types {
		if t != nil {
			ns.Types = append(ns.Types, t)
		}
	}
}

// Len returns the number of types in the namespace.
func (ns *Namespace) Len() int { return len(ns.Types) }

// Kind is the kind of a type declaration.
type Kind uint8

// Type kinds.
const (
	Class Kind = iota
	Enum
)

func (k Kind) String() string {
	if k == Enum {
		return "enum"
	}
	return "class"
}

// Type is a class or enum declaration.
type Type struct {
	Name string
	Kind Kind
	// Base is the base type of a class, nil for none.
	Base *TypeRef
	// Implements lists the interfaces a class implements.
	Implements []*TypeRef
	TypeParams []*TypeParam
	Static     bool
	Members    []Member
	// Nested holds types declared inside this type.
	Nested      []*Type
	Annotations []*Annotation
	Doc         string
}

// Add appends members, skipping nil entries.
func (t *Type) Add(members ...Member) {
	for _, m := range members {
		if m != nil {
			t.Members = append(t.Members, m)
		}
	}
}

// Insert places members at the front of the member list.
func (t *Type) Insert(members ...Member) {
	t.Members = append(append([]Member(nil), members...), t.Members...)
}

// Nest places a nested type at the front of the nested types.
func (t *Type) Nest(n *Type) {
	t.Nested = append([]*Type{n}, t.Nested...)
}

// Properties returns the property members of the type, in order.
func (t *Type) Properties() []*Property {
	var props []*Property
	for _, m := range t.Members {
		if p, ok := m.(*Property); ok {
			props = append(props, p)
		}
	}
	return props
}

// Member returns the first member with the given name.
func (t *Type) Member(name string) Member {
	for _, m := range t.Members {
		if m.MemberName() == name {
			return m
		}
	}
	return nil
}

// Annotation returns the first annotation with the given name.
func (t *Type) Annotation(name string) *Annotation {
	return findAnnotation(t.Annotations, name)
}

// IsGeneric reports whether the type declares type parameters.
func (t *Type) IsGeneric() bool { return len(t.TypeParams) > 0 }

// TypeParam is a type parameter with an optional base-type constraint.
type TypeParam struct {
	Name       string
	Constraint *TypeRef
	// New requires the argument to be constructible without arguments.
	New bool
}

// Annotation is a key/value metadata attribute attached to a declaration,
// recording where in the source schema it came from.
type Annotation struct {
	Name string
	Args []Arg
}

// Arg is one annotation argument. An empty Key marks a positional argument.
type Arg struct {
	Key   string
	Value string
}

// Annotate returns an annotation with positional arguments.
func Annotate(name string, values ...string) *Annotation {
	a := &Annotation{Name: name}
	for _, v := range values {
		a.Args = append(a.Args, Arg{Value: v})
	}
	return a
}

// Named adds a keyed argument to the annotation and returns it.
func (a *Annotation) Named(key, value string) *Annotation {
	a.Args = append(a.Args, Arg{Key: key, Value: value})
	return a
}

// Value returns the first positional argument, or the argument with the
// given key when key is not empty.
func (a *Annotation) Value(key string) string {
	for _, arg := range a.Args {
		if arg.Key == key {
			return arg.Value
		}
	}
	return ""
}

func findAnnotation(as []*Annotation, name string) *Annotation {
	for _, a := range as {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Well-known annotation names.
const (
	AnnotationDataContract       = "DataContract"
	AnnotationEnumMember         = "EnumMember"
	AnnotationEntityLogicalName  = "EntityLogicalName"
	AnnotationAttributeLogical   = "AttributeLogicalName"
	AnnotationRelationshipSchema = "RelationshipSchemaName"
	AnnotationObsolete           = "Obsolete"
	AnnotationRequestProxy       = "RequestProxy"
	AnnotationResponseProxy      = "ResponseProxy"
	AnnotationGeneratedCode      = "GeneratedCode"
)
