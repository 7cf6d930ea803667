// Package xrm is the runtime imported by generated Go models. Generated
// entity types embed *Entity and read their attributes through the generic
// accessors of this package; generated requests and responses embed
// *OrganizationRequest and *OrganizationResponse.
package xrm

import (
	"reflect"

	"github.com/google/uuid"
)

// Entity is a loosely typed record: a logical name, an id and a bag of
// attribute values keyed by attribute logical name.
type Entity struct {
	LogicalName     string
	ID              uuid.UUID
	Attributes      map[string]any
	FormattedValues map[string]string
	RelatedEntities map[RelationshipKey][]*Entity
}

// NewEntity returns an empty record of the given entity.
func NewEntity(logicalName string) *Entity {
	return &Entity{
		LogicalName:     logicalName,
		Attributes:      make(map[string]any),
		FormattedValues: make(map[string]string),
		RelatedEntities: make(map[RelationshipKey][]*Entity),
	}
}

// Base returns e. Generated types promote it from their embedded record.
func (e *Entity) Base() *Entity { return e }

// Bind makes e a copy of base.
func (e *Entity) Bind(base *Entity) {
	if base != nil {
		*e = *base
	}
}

// SetAttributeValue stores an attribute value. A nil pointer is stored as nil.
func (e *Entity) SetAttributeValue(name string, v any) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	if isNil(v) {
		v = nil
	}
	e.Attributes[name] = v
}

// FormattedValue returns the formatted value of an attribute, or "".
func (e *Entity) FormattedValue(name string) string {
	return e.FormattedValues[name]
}

// GetAttributeValue returns the value of an attribute as T, or the zero
// value of T when the attribute is absent or holds an incompatible value.
// Values are stored unwrapped, so *V reads a stored V.
func GetAttributeValue[T any](e *Entity, name string) T {
	if e == nil {
		var zero T
		return zero
	}
	return convert[T](e.Attributes[name])
}

func convert[T any](v any) T {
	var zero T
	if v == nil {
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	rv := reflect.ValueOf(v)
	tt := reflect.TypeOf(&zero).Elem()
	switch {
	case tt.Kind() == reflect.Pointer && convertible(rv.Type(), tt.Elem()):
		p := reflect.New(tt.Elem())
		p.Elem().Set(rv.Convert(tt.Elem()))
		return p.Interface().(T)
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && convertible(rv.Elem().Type(), tt):
		return rv.Elem().Convert(tt).Interface().(T)
	case convertible(rv.Type(), tt):
		return rv.Convert(tt).Interface().(T)
	}
	return zero
}

// convertible reports whether a value of type from reads as type to: the
// same underlying type, or numbers of any width.
func convertible(from, to reflect.Type) bool {
	if from.AssignableTo(to) || (from.Kind() == to.Kind() && from.ConvertibleTo(to)) {
		return true
	}
	return numeric(from.Kind()) && numeric(to.Kind())
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Record is implemented by *Entity and by every generated entity type.
type Record interface {
	Base() *Entity
}

// RecordPtr constrains PT to a pointer to a generated entity type T.
type RecordPtr[T any] interface {
	*T
	Record
	Bind(base *Entity)
}

// ToRecord wraps base in the generated type T.
func ToRecord[T any, PT RecordPtr[T]](base *Entity) PT {
	if base == nil {
		return nil
	}
	p := PT(new(T))
	p.Bind(base)
	return p
}

// NewRecord returns an empty record of the generated type T.
func NewRecord[T any, PT RecordPtr[T]]() PT {
	return ToRecord[T, PT](NewEntity(""))
}

func baseOf[PT Record](r PT) *Entity {
	if isNil(r) {
		return nil
	}
	return r.Base()
}

// GetEntityCollection returns the records of a collection attribute, such
// as an activity party list.
func GetEntityCollection[T any, PT RecordPtr[T]](e *Entity, name string) []PT {
	c := GetAttributeValue[*EntityCollection](e, name)
	if c == nil {
		return nil
	}
	out := make([]PT, 0, len(c.Entities))
	for _, base := range c.Entities {
		out = append(out, ToRecord[T, PT](base))
	}
	return out
}

// SetEntityCollection stores records as a collection attribute. A nil
// slice clears the attribute.
func SetEntityCollection[PT Record](e *Entity, name string, records []PT) {
	if records == nil {
		e.SetAttributeValue(name, nil)
		return
	}
	c := &EntityCollection{Entities: make([]*Entity, 0, len(records))}
	for _, r := range records {
		if base := baseOf(r); base != nil {
			c.Entities = append(c.Entities, base)
		}
	}
	e.SetAttributeValue(name, c)
}
