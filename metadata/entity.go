package metadata

import (
	"strings"

	"github.com/google/uuid"
)

// AttributeType is the storage type of an attribute.
type AttributeType string

// Attribute types.
const (
	TypeBigInt              AttributeType = "BigInt"
	TypeBoolean             AttributeType = "Boolean"
	TypeCalendarRules       AttributeType = "CalendarRules"
	TypeCustomer            AttributeType = "Customer"
	TypeDateTime            AttributeType = "DateTime"
	TypeDecimal             AttributeType = "Decimal"
	TypeDouble              AttributeType = "Double"
	TypeEntityName          AttributeType = "EntityName"
	TypeImage               AttributeType = "Image"
	TypeInteger             AttributeType = "Integer"
	TypeLookup              AttributeType = "Lookup"
	TypeManagedProperty     AttributeType = "ManagedProperty"
	TypeMemo                AttributeType = "Memo"
	TypeMoney               AttributeType = "Money"
	TypeMultiSelectPicklist AttributeType = "MultiSelectPicklist"
	TypeOwner               AttributeType = "Owner"
	TypePartyList           AttributeType = "PartyList"
	TypePicklist            AttributeType = "Picklist"
	TypeState               AttributeType = "State"
	TypeStatus              AttributeType = "Status"
	TypeString              AttributeType = "String"
	TypeUniqueidentifier    AttributeType = "Uniqueidentifier"
	TypeVirtual             AttributeType = "Virtual"
)

// HasOptionSet reports whether attributes of this type carry an option set.
func (t AttributeType) HasOptionSet() bool {
	switch t {
	case TypeBoolean, TypePicklist, TypeState, TypeStatus, TypeMultiSelectPicklist:
		return true
	default:
		return false
	}
}

// Role is the side of a relationship an entity plays. RoleNone marks
// a non-reflexive relationship.
type Role uint8

// Relationship roles.
const (
	RoleNone Role = iota
	RoleReferencing
	RoleReferenced
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleReferencing:
		return "Referencing"
	case RoleReferenced:
		return "Referenced"
	default:
		return ""
	}
}

// Entity is a schema-described record type.
type Entity struct {
	MetadataID            uuid.UUID `json:"metadataId" yaml:"metadataId"`
	LogicalName           string    `json:"logicalName" yaml:"logicalName"`
	SchemaName            string    `json:"schemaName" yaml:"schemaName"`
	LogicalCollectionName string    `json:"logicalCollectionName,omitempty" yaml:"logicalCollectionName,omitempty"`
	EntitySetName         string    `json:"entitySetName,omitempty" yaml:"entitySetName,omitempty"`
	ObjectTypeCode        *int      `json:"objectTypeCode,omitempty" yaml:"objectTypeCode,omitempty"`
	IsIntersect           bool      `json:"isIntersect,omitempty" yaml:"isIntersect,omitempty"`
	PrimaryIDAttribute    string    `json:"primaryIdAttribute,omitempty" yaml:"primaryIdAttribute,omitempty"`
	PrimaryNameAttribute  string    `json:"primaryNameAttribute,omitempty" yaml:"primaryNameAttribute,omitempty"`
	Description           Label     `json:"description,omitzero" yaml:"description,omitempty"`

	Attributes []*Attribute              `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	OneToMany  []*OneToManyRelationship  `json:"oneToMany,omitempty" yaml:"oneToMany,omitempty"`
	ManyToOne  []*OneToManyRelationship  `json:"manyToOne,omitempty" yaml:"manyToOne,omitempty"`
	ManyToMany []*ManyToManyRelationship `json:"manyToMany,omitempty" yaml:"manyToMany,omitempty"`
}

// Attribute returns the attribute with the given logical name.
func (e *Entity) Attribute(logicalName string) *Attribute {
	for _, a := range e.Attributes {
		if a.LogicalName == logicalName {
			return a
		}
	}
	return nil
}

// HasTypeCode reports whether the entity carries the given object type code.
func (e *Entity) HasTypeCode(code int) bool {
	return e.ObjectTypeCode != nil && *e.ObjectTypeCode == code
}

// Attribute is one column of an entity.
type Attribute struct {
	MetadataID        uuid.UUID     `json:"metadataId" yaml:"metadataId"`
	LogicalName       string        `json:"logicalName" yaml:"logicalName"`
	SchemaName        string        `json:"schemaName" yaml:"schemaName"`
	Type              AttributeType `json:"type" yaml:"type"`
	AttributeOf       string        `json:"attributeOf,omitempty" yaml:"attributeOf,omitempty"`
	IsValidForCreate  bool          `json:"isValidForCreate,omitempty" yaml:"isValidForCreate,omitempty"`
	IsValidForRead    bool          `json:"isValidForRead,omitempty" yaml:"isValidForRead,omitempty"`
	IsValidForUpdate  bool          `json:"isValidForUpdate,omitempty" yaml:"isValidForUpdate,omitempty"`
	IsPrimaryID       bool          `json:"isPrimaryId,omitempty" yaml:"isPrimaryId,omitempty"`
	DeprecatedVersion string        `json:"deprecatedVersion,omitempty" yaml:"deprecatedVersion,omitempty"`
	Targets           []string      `json:"targets,omitempty" yaml:"targets,omitempty"`
	OptionSet         *OptionSet    `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
	Description       Label         `json:"description,omitzero" yaml:"description,omitempty"`
}

// IsImage reports whether the attribute holds image bytes.
func (a *Attribute) IsImage() bool {
	return a.Type == TypeImage
}

// HasSuffix reports whether the logical name ends with suffix, ignoring case.
func (a *Attribute) HasSuffix(suffix string) bool {
	return len(a.LogicalName) >= len(suffix) &&
		strings.EqualFold(a.LogicalName[len(a.LogicalName)-len(suffix):], suffix)
}

// IsNameCompanion reports whether the attribute is the "name" companion of
// another attribute, whose value is read from the formatted values.
func (a *Attribute) IsNameCompanion() bool {
	return a.AttributeOf != "" && len(a.LogicalName) > 4 && a.HasSuffix("name")
}

// OneToManyRelationship links a referenced (one) entity to a referencing
// (many) entity through a lookup attribute.
type OneToManyRelationship struct {
	MetadataID           uuid.UUID `json:"metadataId" yaml:"metadataId"`
	SchemaName           string    `json:"schemaName" yaml:"schemaName"`
	ReferencedEntity     string    `json:"referencedEntity" yaml:"referencedEntity"`
	ReferencedAttribute  string    `json:"referencedAttribute" yaml:"referencedAttribute"`
	ReferencingEntity    string    `json:"referencingEntity" yaml:"referencingEntity"`
	ReferencingAttribute string    `json:"referencingAttribute" yaml:"referencingAttribute"`
}

// IsReflexive reports whether both ends are the same entity.
func (r *OneToManyRelationship) IsReflexive() bool {
	return r.ReferencedEntity == r.ReferencingEntity
}

// ManyToManyRelationship links two entities through an intersect entity.
type ManyToManyRelationship struct {
	MetadataID                uuid.UUID `json:"metadataId" yaml:"metadataId"`
	SchemaName                string    `json:"schemaName" yaml:"schemaName"`
	Entity1LogicalName        string    `json:"entity1LogicalName" yaml:"entity1LogicalName"`
	Entity1IntersectAttribute string    `json:"entity1IntersectAttribute" yaml:"entity1IntersectAttribute"`
	Entity2LogicalName        string    `json:"entity2LogicalName" yaml:"entity2LogicalName"`
	Entity2IntersectAttribute string    `json:"entity2IntersectAttribute" yaml:"entity2IntersectAttribute"`
	IntersectEntityName       string    `json:"intersectEntityName" yaml:"intersectEntityName"`
}

// IsReflexive reports whether both ends are the same entity.
func (r *ManyToManyRelationship) IsReflexive() bool {
	return r.Entity1LogicalName == r.Entity2LogicalName
}

// Other returns the logical name of the entity on the other end.
func (r *ManyToManyRelationship) Other(logicalName string) string {
	if r.Entity1LogicalName == logicalName {
		return r.Entity2LogicalName
	}
	return r.Entity1LogicalName
}

// Relationship is implemented by both relationship kinds.
type Relationship interface {
	ID() uuid.UUID
	Name() string
}

// ID returns the relationship metadata id.
func (r *OneToManyRelationship) ID() uuid.UUID { return r.MetadataID }

// Name returns the relationship schema name.
func (r *OneToManyRelationship) Name() string { return r.SchemaName }

// ID returns the relationship metadata id.
func (r *ManyToManyRelationship) ID() uuid.UUID { return r.MetadataID }

// Name returns the relationship schema name.
func (r *ManyToManyRelationship) Name() string { return r.SchemaName }
