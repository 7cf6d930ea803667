package gen

import (
	"strings"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// GenericParam is the type parameter of generic requests.
const GenericParam = "T"

var attributeTypes = map[metadata.AttributeType]string{
	metadata.TypeBoolean:          decl.Bool,
	metadata.TypeManagedProperty:  decl.BooleanManagedProperty,
	metadata.TypeCalendarRules:    decl.Object,
	metadata.TypeCustomer:         decl.EntityReference,
	metadata.TypeLookup:           decl.EntityReference,
	metadata.TypeOwner:            decl.EntityReference,
	metadata.TypeDateTime:         decl.DateTime,
	metadata.TypeDecimal:          decl.Decimal,
	metadata.TypeDouble:           decl.Double,
	metadata.TypeInteger:          decl.Int32,
	metadata.TypeEntityName:       decl.String,
	metadata.TypeMemo:             decl.String,
	metadata.TypeString:           decl.String,
	metadata.TypeBigInt:           decl.Int64,
	metadata.TypeMoney:            decl.Money,
	metadata.TypeUniqueidentifier: decl.Guid,
	metadata.TypeImage:            decl.Bytes,
}

// Formatter type names of request and response fields. A formatter is
// "<type>,<assembly>"; only the type part is looked up.
var formatterTypes = map[string]func() *decl.TypeRef{
	"System.String":   builtin(decl.String),
	"System.Int32":    builtin(decl.Int32),
	"System.Int64":    builtin(decl.Int64),
	"System.Boolean":  builtin(decl.Bool),
	"System.Guid":     builtin(decl.Guid),
	"System.DateTime": builtin(decl.DateTime),
	"System.Decimal":  builtin(decl.Decimal),
	"System.Double":   builtin(decl.Double),
	"System.Byte[]":   builtin(decl.Bytes),
	"System.Object":   builtin(decl.Object),
	"System.String[]": func() *decl.TypeRef { return decl.CollectionOf(decl.Builtin(decl.String)) },
	"System.Guid[]":   func() *decl.TypeRef { return decl.CollectionOf(decl.Builtin(decl.Guid)) },

	"Microsoft.Xrm.Sdk.Entity":                       builtin(decl.Entity),
	"Microsoft.Xrm.Sdk.EntityReference":              builtin(decl.EntityReference),
	"Microsoft.Xrm.Sdk.EntityCollection":             builtin(decl.EntityCollection),
	"Microsoft.Xrm.Sdk.EntityReferenceCollection":    builtin(decl.EntityReferenceList),
	"Microsoft.Xrm.Sdk.Money":                        builtin(decl.Money),
	"Microsoft.Xrm.Sdk.OptionSetValue":               builtin(decl.OptionSetValue),
	"Microsoft.Xrm.Sdk.OptionSetValueCollection":     builtin(decl.OptionSetValueList),
	"Microsoft.Xrm.Sdk.BooleanManagedProperty":       builtin(decl.BooleanManagedProperty),
	"Microsoft.Xrm.Sdk.Relationship":                 builtin(decl.Relationship),
	"Microsoft.Xrm.Sdk.Query.ColumnSet":              builtin(decl.ColumnSet),
	"Microsoft.Xrm.Sdk.Query.QueryBase":              builtin(decl.QueryBase),
	"Microsoft.Xrm.Sdk.Query.QueryExpression":        builtin(decl.QueryBase),
	"Microsoft.Xrm.Sdk.Query.FetchExpression":        builtin(decl.QueryBase),
	"Microsoft.Xrm.Sdk.Metadata.AttributeMetadata":   builtin(decl.AttributeMetadata),
	"Microsoft.Xrm.Sdk.Metadata.EntityMetadata":      builtin(decl.EntityMetadata),
	"Microsoft.Xrm.Sdk.Metadata.EntityMetadata[]":    func() *decl.TypeRef { return decl.CollectionOf(decl.Builtin(decl.EntityMetadata)) },
	"Microsoft.Xrm.Sdk.Metadata.AttributeMetadata[]": func() *decl.TypeRef { return decl.CollectionOf(decl.Builtin(decl.AttributeMetadata)) },
}

func builtin(name string) func() *decl.TypeRef {
	return func() *decl.TypeRef { return decl.Builtin(name) }
}

// TypeMapping is the default TypeMappingService.
type TypeMapping struct {
	cfg *Config
}

// NewTypeMapping returns the default type mapping service.
func NewTypeMapping(cfg *Config) *TypeMapping {
	return &TypeMapping{cfg: cfg}
}

// EntityType returns a reference to the class generated for e.
func (m *TypeMapping) EntityType(e *metadata.Entity, s *Services) *decl.TypeRef {
	return decl.Ref(s.Naming.EntityName(e, s))
}

// AttributeType returns the property type of an attribute.
func (m *TypeMapping) AttributeType(e *metadata.Entity, a *metadata.Attribute, s *Services) *decl.TypeRef {
	if readsFormattedValue(m.cfg, a) {
		return decl.Builtin(decl.String)
	}
	if a.Type == metadata.TypePartyList {
		return decl.CollectionOf(m.partyType(s))
	}
	if os := attributeOptionSet(a); os != nil {
		return m.optionSetType(e, a, os, s)
	}
	name, ok := attributeTypes[a.Type]
	if !ok {
		return decl.Builtin(decl.Object)
	}
	t := decl.Builtin(name)
	if t.IsValueType() {
		return decl.NullableOf(t)
	}
	return t
}

func (m *TypeMapping) partyType(s *Services) *decl.TypeRef {
	if s.Org != nil {
		if party := s.Org.Entity(activityParty); party != nil && s.Filter.GenerateEntity(party, s) {
			return s.Types.EntityType(party, s)
		}
	}
	return decl.Builtin(decl.Entity)
}

func (m *TypeMapping) optionSetType(e *metadata.Entity, a *metadata.Attribute, os *metadata.OptionSet, s *Services) *decl.TypeRef {
	if s.Filter.GenerateOptionSet(os, s) {
		enum := decl.Ref(s.Naming.OptionSetName(e, os, s))
		if a.Type == metadata.TypeMultiSelectPicklist {
			return decl.CollectionOf(enum)
		}
		return decl.NullableOf(enum)
	}
	switch a.Type {
	case metadata.TypePicklist, metadata.TypeStatus:
		return decl.Builtin(decl.OptionSetValue)
	case metadata.TypeMultiSelectPicklist:
		return decl.Builtin(decl.OptionSetValueList)
	default:
		return decl.Builtin(decl.Object)
	}
}

// attributeOptionSet returns the option set of an enum-valued attribute.
// Boolean attributes keep their bool mapping.
func attributeOptionSet(a *metadata.Attribute) *metadata.OptionSet {
	switch a.Type {
	case metadata.TypePicklist, metadata.TypeState, metadata.TypeStatus, metadata.TypeMultiSelectPicklist:
		return a.OptionSet
	default:
		return nil
	}
}

// RelationshipType returns the element type of a relationship property:
// the class of the entity on the other end.
func (m *TypeMapping) RelationshipType(_ metadata.Relationship, other *metadata.Entity, s *Services) *decl.TypeRef {
	return s.Types.EntityType(other, s)
}

// RequestFieldType returns the property type of a request field. Entity
// fields of messages valid for more than one entity use the type parameter.
func (m *TypeMapping) RequestFieldType(f *metadata.RequestField, _ *Services) (*decl.TypeRef, error) {
	if f.IsGeneric() {
		return decl.ParamRef(GenericParam), nil
	}
	t, err := formatterType(f.Formatter)
	if err != nil {
		return nil, err
	}
	if f.Optional && t.IsValueType() {
		t = decl.NullableOf(t)
	}
	return t, nil
}

// ResponseFieldType returns the property type of a response field.
func (m *TypeMapping) ResponseFieldType(f *metadata.ResponseField, _ *Services) (*decl.TypeRef, error) {
	return formatterType(f.Formatter)
}

func formatterType(formatter string) (*decl.TypeRef, error) {
	if formatter == "" {
		return decl.Builtin(decl.Object), nil
	}
	name, _, _ := strings.Cut(formatter, ",")
	name = strings.TrimSpace(name)
	if mk, ok := formatterTypes[name]; ok {
		return mk(), nil
	}
	return nil, NewTypeUnavailableError("field formatter", formatter)
}
