package decl

// Member is a member of a type declaration.
type Member interface {
	MemberName() string
	member()
}

// Field is a constant or a field. Constants carry a Value.
type Field struct {
	Name  string
	Type  *TypeRef
	Const bool
	// Value is a string, int or bool literal.
	Value       any
	Annotations []*Annotation
	Doc         string
}

// EnumValue is a named value of an enum type.
type EnumValue struct {
	Name        string
	Value       int
	Annotations []*Annotation
	Doc         string
}

// Property is a property with optional get and set bodies. A nil Getter
// or Setter means the accessor is absent.
type Property struct {
	Name        string
	Type        *TypeRef
	Getter      []*Stmt
	Setter      []*Stmt
	Override    bool
	Annotations []*Annotation
	Doc         string
}

// HasGet reports whether the property can be read.
func (p *Property) HasGet() bool { return p.Getter != nil }

// HasSet reports whether the property can be written.
func (p *Property) HasSet() bool { return p.Setter != nil }

// Annotation returns the first annotation with the given name.
func (p *Property) Annotation(name string) *Annotation {
	return findAnnotation(p.Annotations, name)
}

// Param is a constructor or method parameter.
type Param struct {
	Name string
	Type *TypeRef
}

// Constructor initializes a class. BaseArgs are passed to the base class
// constructor.
type Constructor struct {
	Params   []*Param
	BaseArgs []string
	Body     []*Stmt
	Doc      string
}

// Event is a change notification event.
type Event struct {
	Name string
	// Interface names the interface the event implements.
	Interface string
}

// Method is a method. Static methods of a static class act as helpers.
type Method struct {
	Name       string
	Static     bool
	TypeParams []*TypeParam
	Params     []*Param
	Returns    *TypeRef
	Body       []*Stmt
	Doc        string
}

func (f *Field) MemberName() string       { return f.Name }
func (v *EnumValue) MemberName() string   { return v.Name }
func (p *Property) MemberName() string    { return p.Name }
func (c *Constructor) MemberName() string { return ".ctor" }
func (e *Event) MemberName() string       { return e.Name }
func (m *Method) MemberName() string      { return m.Name }

func (*Field) member()       {}
func (*EnumValue) member()   {}
func (*Property) member()    {}
func (*Constructor) member() {}
func (*Event) member()       {}
func (*Method) member()      {}
