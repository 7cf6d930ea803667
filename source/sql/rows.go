package sql

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/modelbuilder/metadata"
)

// Relationship kinds in the relationship table.
const (
	kindOneToMany  = "OneToMany"
	kindManyToMany = "ManyToMany"
)

// Label fields in the label table.
const (
	fieldDescription = "description"
	fieldDisplayName = "displayname"
	fieldLabel       = "label"
)

type entityRow struct {
	MetadataID           uuid.UUID     `db:"metadataid"`
	LogicalName          string        `db:"logicalname"`
	SchemaName           string        `db:"schemaname"`
	CollectionName       string        `db:"collectionname"`
	EntitySetName        string        `db:"entitysetname"`
	ObjectTypeCode       sql.NullInt64 `db:"objecttypecode"`
	IsIntersect          bool          `db:"isintersect"`
	PrimaryIDAttribute   string        `db:"primaryidattribute"`
	PrimaryNameAttribute string        `db:"primarynameattribute"`
}

var entityColumns = []string{
	"metadataid", "logicalname", "schemaname", "collectionname", "entitysetname",
	"objecttypecode", "isintersect", "primaryidattribute", "primarynameattribute",
}

func (r *entityRow) entity() *metadata.Entity {
	e := &metadata.Entity{
		MetadataID:            r.MetadataID,
		LogicalName:           r.LogicalName,
		SchemaName:            r.SchemaName,
		LogicalCollectionName: r.CollectionName,
		EntitySetName:         r.EntitySetName,
		IsIntersect:           r.IsIntersect,
		PrimaryIDAttribute:    r.PrimaryIDAttribute,
		PrimaryNameAttribute:  r.PrimaryNameAttribute,
	}
	if r.ObjectTypeCode.Valid {
		code := int(r.ObjectTypeCode.Int64)
		e.ObjectTypeCode = &code
	}
	return e
}

func entityValues(e *metadata.Entity) []any {
	var code sql.NullInt64
	if e.ObjectTypeCode != nil {
		code = sql.NullInt64{Int64: int64(*e.ObjectTypeCode), Valid: true}
	}
	return []any{
		e.MetadataID.String(), e.LogicalName, e.SchemaName, e.LogicalCollectionName, e.EntitySetName,
		code, e.IsIntersect, e.PrimaryIDAttribute, e.PrimaryNameAttribute,
	}
}

type attributeRow struct {
	MetadataID        uuid.UUID `db:"metadataid"`
	Entity            string    `db:"entity"`
	Position          int       `db:"position"`
	LogicalName       string    `db:"logicalname"`
	SchemaName        string    `db:"schemaname"`
	Type              string    `db:"type"`
	AttributeOf       string    `db:"attributeof"`
	ValidForCreate    bool      `db:"validforcreate"`
	ValidForRead      bool      `db:"validforread"`
	ValidForUpdate    bool      `db:"validforupdate"`
	IsPrimaryID       bool      `db:"isprimaryid"`
	DeprecatedVersion string    `db:"deprecatedversion"`
	Targets           string    `db:"targets"`
	OptionSet         string    `db:"optionset"`
}

var attributeColumns = []string{
	"metadataid", "entity", "position", "logicalname", "schemaname", "type", "attributeof",
	"validforcreate", "validforread", "validforupdate", "isprimaryid", "deprecatedversion",
	"targets", "optionset",
}

func (r *attributeRow) attribute() *metadata.Attribute {
	a := &metadata.Attribute{
		MetadataID:        r.MetadataID,
		LogicalName:       r.LogicalName,
		SchemaName:        r.SchemaName,
		Type:              metadata.AttributeType(r.Type),
		AttributeOf:       r.AttributeOf,
		IsValidForCreate:  r.ValidForCreate,
		IsValidForRead:    r.ValidForRead,
		IsValidForUpdate:  r.ValidForUpdate,
		IsPrimaryID:       r.IsPrimaryID,
		DeprecatedVersion: r.DeprecatedVersion,
	}
	if r.Targets != "" {
		a.Targets = strings.Split(r.Targets, ";")
	}
	return a
}

func attributeValues(e *metadata.Entity, pos int, a *metadata.Attribute) []any {
	optionSet := ""
	if a.OptionSet != nil {
		optionSet = a.OptionSet.MetadataID.String()
	}
	return []any{
		a.MetadataID.String(), e.LogicalName, pos, a.LogicalName, a.SchemaName, string(a.Type), a.AttributeOf,
		a.IsValidForCreate, a.IsValidForRead, a.IsValidForUpdate, a.IsPrimaryID, a.DeprecatedVersion,
		strings.Join(a.Targets, ";"), optionSet,
	}
}

type optionSetRow struct {
	MetadataID uuid.UUID `db:"metadataid"`
	Name       string    `db:"name"`
	Type       string    `db:"type"`
	IsGlobal   bool      `db:"isglobal"`
}

var optionSetColumns = []string{"metadataid", "name", "type", "isglobal"}

type optionRow struct {
	OptionSet     uuid.UUID `db:"optionset"`
	Position      int       `db:"position"`
	Value         int       `db:"value"`
	InvariantName string    `db:"invariantname"`
}

var optionColumns = []string{"optionset", "position", "value", "invariantname"}

// optionOwner keys the labels of an option.
func optionOwner(set uuid.UUID, value int) string {
	return set.String() + ":" + strconv.Itoa(value)
}

type relationshipRow struct {
	MetadataID           uuid.UUID `db:"metadataid"`
	Kind                 string    `db:"kind"`
	SchemaName           string    `db:"schemaname"`
	ReferencedEntity     string    `db:"referencedentity"`
	ReferencedAttribute  string    `db:"referencedattribute"`
	ReferencingEntity    string    `db:"referencingentity"`
	ReferencingAttribute string    `db:"referencingattribute"`
	Entity1              string    `db:"entity1"`
	Entity1Attribute     string    `db:"entity1attribute"`
	Entity2              string    `db:"entity2"`
	Entity2Attribute     string    `db:"entity2attribute"`
	IntersectEntity      string    `db:"intersectentity"`
}

var relationshipColumns = []string{
	"metadataid", "kind", "schemaname",
	"referencedentity", "referencedattribute", "referencingentity", "referencingattribute",
	"entity1", "entity1attribute", "entity2", "entity2attribute", "intersectentity",
}

type labelRow struct {
	Owner        string `db:"owner"`
	Field        string `db:"field"`
	LanguageCode int    `db:"languagecode"`
	Label        string `db:"label"`
}

var labelColumns = []string{"owner", "field", "languagecode", "label"}

// labels indexes label rows by owner and field.
type labels map[[2]string]metadata.Label

func (ls labels) add(r labelRow) {
	k := [2]string{r.Owner, r.Field}
	l := ls[k]
	l.LocalizedLabels = append(l.LocalizedLabels, metadata.LocalizedLabel{Label: r.Label, LanguageCode: r.LanguageCode})
	ls[k] = l
}

func (ls labels) get(owner, field string) metadata.Label {
	return ls[[2]string{owner, field}]
}

// messageRow is a stored message row. Column names are the lower-cased
// field names of metadata.RowResult.
type messageRow struct {
	Position int `db:"position"`
	metadata.RowResult
}

var messageColumns = []string{
	"position", "messageid", "name", "isprivate", "customizationlevel",
	"pairid", "pairnamespace", "requestid", "requestname",
	"requestfieldname", "requestfieldoptional", "requestfieldparser", "requestfieldclrparser", "requestfieldposition",
	"responseid", "responsefieldvalue", "responsefieldformatter", "responsefieldclrformatter", "responsefieldname", "responsefieldposition",
	"filterid", "primaryobjecttypecode", "secondaryobjecttypecode",
}

func messageValues(pos int, r *metadata.RowResult) []any {
	return []any{
		pos, r.MessageID.String(), r.Name, r.IsPrivate, r.CustomizationLevel,
		r.PairID.String(), r.PairNamespace, r.RequestID.String(), r.RequestName,
		r.RequestFieldName, r.RequestFieldOptional, r.RequestFieldParser, r.RequestFieldCLRParser, nullInt(r.RequestFieldPosition),
		r.ResponseID.String(), r.ResponseFieldValue, r.ResponseFieldFormatter, r.ResponseFieldCLRFormatter, r.ResponseFieldName, nullInt(r.ResponseFieldPosition),
		r.FilterID.String(), r.PrimaryObjectTypeCode, r.SecondaryObjectTypeCode,
	}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
