package xrm

import (
	"github.com/google/uuid"

	"github.com/syssam/modelbuilder/metadata"
)

// EntityReference points to a record by logical name and id.
type EntityReference struct {
	LogicalName string
	ID          uuid.UUID
	Name        string
}

// NewEntityReference returns a reference to the record id of logicalName.
func NewEntityReference(logicalName string, id uuid.UUID) *EntityReference {
	return &EntityReference{LogicalName: logicalName, ID: id}
}

// Money is a currency amount.
type Money struct {
	Value float64
}

// OptionSetValue is the raw value of an option set attribute.
type OptionSetValue struct {
	Value int32
}

// OptionSetValueCollection is the raw value of a multi-select attribute.
type OptionSetValueCollection []*OptionSetValue

// EntityCollection is a page of records.
type EntityCollection struct {
	EntityName       string
	Entities         []*Entity
	MoreRecords      bool
	PagingCookie     string
	TotalRecordCount int
}

// EntityReferenceCollection is a list of record references.
type EntityReferenceCollection []*EntityReference

// BooleanManagedProperty is a solution-managed flag.
type BooleanManagedProperty struct {
	Value                      bool
	CanBeChanged               bool
	ManagedPropertyLogicalName string
}

// ColumnSet selects the attributes a query returns.
type ColumnSet struct {
	AllColumns bool
	Columns    []string
}

// NewColumnSet returns a column set of the given attributes, or of all
// attributes when none are given.
func NewColumnSet(columns ...string) *ColumnSet {
	return &ColumnSet{AllColumns: len(columns) == 0, Columns: columns}
}

// QueryBase is a query the organization service can run.
type QueryBase interface {
	// QueryEntity returns the logical name of the queried entity, or "".
	QueryEntity() string
}

// QueryExpression is a structured query over one entity.
type QueryExpression struct {
	EntityName string
	ColumnSet  *ColumnSet
	TopCount   int
	PageInfo   *PagingInfo
}

// QueryEntity implements QueryBase.
func (q *QueryExpression) QueryEntity() string { return q.EntityName }

// FetchExpression is a query in the service's XML query language.
type FetchExpression struct {
	Query string
}

// QueryEntity implements QueryBase.
func (*FetchExpression) QueryEntity() string { return "" }

// PagingInfo is the continuation state of a paged query.
type PagingInfo struct {
	PageNumber   int
	Count        int
	PagingCookie string
}

// Relationship names a relationship and, for reflexive ones, the role of
// the primary record.
type Relationship struct {
	SchemaName        string
	PrimaryEntityRole EntityRole
}

// AttributeMetadata and EntityMetadata are the metadata shapes of the
// generator, returned by metadata messages.
type (
	AttributeMetadata = metadata.Attribute
	EntityMetadata    = metadata.Entity
)
