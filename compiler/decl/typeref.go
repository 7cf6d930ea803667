package decl

import "strings"

// Builtin type names known to every renderer.
const (
	Bool                   = "bool"
	Int32                  = "int32"
	Int64                  = "int64"
	Decimal                = "decimal"
	Double                 = "double"
	String                 = "string"
	DateTime               = "datetime"
	Guid                   = "guid"
	Bytes                  = "bytes"
	Object                 = "object"
	Entity                 = "Entity"
	EntityReference        = "EntityReference"
	EntityCollection       = "EntityCollection"
	Money                  = "Money"
	OptionSetValue         = "OptionSetValue"
	OptionSetValueList     = "OptionSetValueCollection"
	BooleanManagedProperty = "BooleanManagedProperty"
	ColumnSet              = "ColumnSet"
	QueryBase              = "QueryBase"
	Relationship           = "Relationship"
	EntityReferenceList    = "EntityReferenceCollection"
	AttributeMetadata      = "AttributeMetadata"
	EntityMetadata         = "EntityMetadata"
	OrganizationRequest    = "OrganizationRequest"
	OrganizationResponse   = "OrganizationResponse"
	ServiceContext         = "OrganizationServiceContext"
	Service                = "OrganizationService"
	Queryable              = "Queryable"
	PropertyChanged        = "PropertyChanged"
	PropertyChanging       = "PropertyChanging"
)

var valueTypes = map[string]bool{
	Bool: true, Int32: true, Int64: true, Decimal: true, Double: true,
	DateTime: true, Guid: true,
}

// TypeRef references a builtin type, a declared type, a type parameter
// or a collection of one of those.
type TypeRef struct {
	Name     string
	Builtin  bool
	Nullable bool
	// Param marks a reference to a type parameter of the enclosing type.
	Param bool
	// Elem is the element type of a collection; Name is empty then.
	Elem *TypeRef
	// Args are the type arguments of a generic builtin.
	Args []*TypeRef
}

// Ref returns a reference to a declared type.
func Ref(name string) *TypeRef { return &TypeRef{Name: name} }

// Builtin returns a reference to a builtin type.
func Builtin(name string) *TypeRef { return &TypeRef{Name: name, Builtin: true} }

// ParamRef returns a reference to a type parameter.
func ParamRef(name string) *TypeRef { return &TypeRef{Name: name, Param: true} }

// Generic returns a builtin generic type instantiated with args.
func Generic(name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Name: name, Builtin: true, Args: args}
}

// CollectionOf returns a collection of elem.
func CollectionOf(elem *TypeRef) *TypeRef { return &TypeRef{Elem: elem} }

// NullableOf returns a nullable copy of t.
func NullableOf(t *TypeRef) *TypeRef {
	c := *t
	c.Nullable = true
	return &c
}

// IsCollection reports whether t is a collection.
func (t *TypeRef) IsCollection() bool { return t != nil && t.Elem != nil }

// IsValueType reports whether t is a builtin value type, which becomes
// nullable when it maps an attribute.
func (t *TypeRef) IsValueType() bool {
	return t != nil && t.Builtin && valueTypes[t.Name]
}

// Is reports whether t references the builtin with the given name.
func (t *TypeRef) Is(name string) bool {
	return t != nil && t.Builtin && t.Name == name
}

// String returns a language-neutral spelling of the reference, used in
// logs and in the YAML dump.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	if t.Elem != nil {
		b.WriteString("[]")
		b.WriteString(t.Elem.String())
	} else {
		b.WriteString(t.Name)
	}
	if len(t.Args) > 0 {
		b.WriteByte('[')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(']')
	}
	if t.Nullable {
		b.WriteString("?")
	}
	return b.String()
}
