package decl

// Op is the operation of an abstract statement.
type Op uint8

// Statement operations. Key is the attribute logical name, relationship
// schema name, parameter name or property name the operation acts on.
const (
	// OpGetAttribute returns the typed attribute value.
	OpGetAttribute Op = iota + 1
	// OpSetAttribute stores the incoming value as the attribute value.
	OpSetAttribute
	// OpGetFormatted returns the formatted value of the attribute, or "".
	OpGetFormatted
	// OpGetCollection returns the entities of a collection attribute as Type.Elem.
	OpGetCollection
	// OpSetCollection stores the incoming entities as a collection attribute.
	OpSetCollection
	// OpGetEnum returns an option set attribute as a nullable enum.
	OpGetEnum
	// OpSetEnum stores a nullable enum as an option set attribute.
	OpSetEnum
	// OpGetMultiEnum returns a multi-select attribute as enum values.
	OpGetMultiEnum
	// OpSetMultiEnum stores enum values as a multi-select attribute.
	OpSetMultiEnum
	// OpSyncID mirrors a nullable identifier into the record id.
	OpSyncID
	// OpGetID returns the record id.
	OpGetID
	// OpSetID stores the incoming value as the record id.
	OpSetID
	// OpSetProperty assigns the incoming value to the property named Key.
	OpSetProperty
	// OpGetRelated returns the related record of a relationship.
	OpGetRelated
	// OpSetRelated sets the related record of a relationship.
	OpSetRelated
	// OpGetRelatedMany returns the related records of a relationship.
	OpGetRelatedMany
	// OpSetRelatedMany sets the related records of a relationship.
	OpSetRelatedMany
	// OpNotifyChanging raises the changing notification for property Key.
	OpNotifyChanging
	// OpNotifyChanged raises the changed notification for property Key.
	OpNotifyChanged
	// OpGetParameter returns a request parameter, or the zero value.
	OpGetParameter
	// OpSetParameter stores a request parameter.
	OpSetParameter
	// OpGetResult returns a response result, or the zero value.
	OpGetResult
	// OpCreateQuery returns a query over the records of Type.
	OpCreateQuery
	// OpAssign assigns Value to the property named Key. A nil Value
	// assigns the zero value of Type.
	OpAssign
	// OpAssignNew assigns a fresh value of Type to the property named Key.
	OpAssignNew
	// OpRaise raises the event named Key with the method parameters.
	OpRaise
)

var opNames = map[Op]string{
	OpGetAttribute:   "getAttribute",
	OpSetAttribute:   "setAttribute",
	OpGetFormatted:   "getFormatted",
	OpGetCollection:  "getCollection",
	OpSetCollection:  "setCollection",
	OpGetEnum:        "getEnum",
	OpSetEnum:        "setEnum",
	OpGetMultiEnum:   "getMultiEnum",
	OpSetMultiEnum:   "setMultiEnum",
	OpSyncID:         "syncId",
	OpGetID:          "getId",
	OpSetID:          "setId",
	OpSetProperty:    "setProperty",
	OpGetRelated:     "getRelated",
	OpSetRelated:     "setRelated",
	OpGetRelatedMany: "getRelatedMany",
	OpSetRelatedMany: "setRelatedMany",
	OpNotifyChanging: "notifyChanging",
	OpNotifyChanged:  "notifyChanged",
	OpGetParameter:   "getParameter",
	OpSetParameter:   "setParameter",
	OpGetResult:      "getResult",
	OpCreateQuery:    "createQuery",
	OpAssign:         "assign",
	OpAssignNew:      "assignNew",
	OpRaise:          "raise",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// ParamValue is a statement value naming a parameter of the enclosing
// constructor or method.
type ParamValue string

// Stmt is one abstract statement of a property, constructor or method body.
type Stmt struct {
	Op  Op
	Key string
	// Role is the relationship role of reflexive relationships.
	Role string
	// Type is the value type the statement reads or writes.
	Type *TypeRef
	// Value is a literal or a ParamValue.
	Value any
}

// S returns a statement.
func S(op Op, key string) *Stmt { return &Stmt{Op: op, Key: key} }

// Typed sets the statement value type and returns the statement.
func (s *Stmt) Typed(t *TypeRef) *Stmt {
	s.Type = t
	return s
}

// As sets the relationship role and returns the statement.
func (s *Stmt) As(role string) *Stmt {
	s.Role = role
	return s
}

// With sets the literal value and returns the statement.
func (s *Stmt) With(v any) *Stmt {
	s.Value = v
	return s
}
