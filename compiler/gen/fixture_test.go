package gen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

func label(s string) metadata.Label {
	return metadata.Label{LocalizedLabels: []metadata.LocalizedLabel{{Label: s, LanguageCode: 1033}}}
}

func intp(i int) *int { return &i }

func option(value int, text string) *metadata.Option {
	return &metadata.Option{Value: value, Label: label(text)}
}

func attr(logical, schema string, typ metadata.AttributeType) *metadata.Attribute {
	return &metadata.Attribute{
		MetadataID:       uuid.New(),
		LogicalName:      logical,
		SchemaName:       schema,
		Type:             typ,
		IsValidForCreate: true,
		IsValidForRead:   true,
		IsValidForUpdate: true,
	}
}

func readOnly(a *metadata.Attribute) *metadata.Attribute {
	a.IsValidForCreate, a.IsValidForUpdate = false, false
	return a
}

func withOptions(a *metadata.Attribute, name string, global bool, opts ...*metadata.Option) *metadata.Attribute {
	typ := metadata.OptionSetPicklist
	switch a.Type {
	case metadata.TypeState:
		typ = metadata.OptionSetState
	case metadata.TypeStatus:
		typ = metadata.OptionSetStatus
	case metadata.TypeBoolean:
		typ = metadata.OptionSetBoolean
	}
	a.OptionSet = &metadata.OptionSet{MetadataID: uuid.New(), Name: name, Type: typ, IsGlobal: global, Options: opts}
	return a
}

// colorSet is a global option set shared by account and contact.
var colorSet = &metadata.OptionSet{
	MetadataID: uuid.New(),
	Name:       "new_color",
	Type:       metadata.OptionSetPicklist,
	IsGlobal:   true,
	Options:    []*metadata.Option{option(1, "Red"), option(2, "Blue")},
}

func accountEntity() *metadata.Entity {
	id := attr("accountid", "AccountId", metadata.TypeUniqueidentifier)
	id.IsPrimaryID = true
	id.IsValidForUpdate = false
	state := withOptions(attr("statecode", "StateCode", metadata.TypeState), "account_statecode", false,
		&metadata.Option{Value: 0, InvariantName: "Active", Label: label("Active")},
		&metadata.Option{Value: 1, InvariantName: "Inactive", Label: label("Inactive")})
	industry := withOptions(attr("industrycode", "IndustryCode", metadata.TypePicklist), "account_industrycode", false,
		option(1, "Accounting"), option(2, "Consulting"), option(3, "Accounting"))
	color := attr("new_color", "new_Color", metadata.TypePicklist)
	color.OptionSet = colorSet
	tags := withOptions(attr("new_tags", "new_Tags", metadata.TypeMultiSelectPicklist), "account_new_tags", false,
		option(1, "Gold"), option(2, "Silver"))
	email := withOptions(attr("donotemail", "DoNotEmail", metadata.TypeBoolean), "account_donotemail", false,
		option(0, "Allow"), option(1, "Do Not Allow"))
	parent := attr("parentaccountid", "ParentAccountId", metadata.TypeLookup)
	parentName := readOnly(attr("parentaccountidname", "ParentAccountIdName", metadata.TypeString))
	parentName.AttributeOf = "parentaccountid"
	old := attr("telephone3", "Telephone3", metadata.TypeString)
	old.DeprecatedVersion = "9.0"
	hidden := attr("hidden", "Hidden", metadata.TypeString)
	hidden.IsValidForCreate, hidden.IsValidForRead, hidden.IsValidForUpdate = false, false, false
	return &metadata.Entity{
		MetadataID:            uuid.New(),
		LogicalName:           "account",
		SchemaName:            "Account",
		LogicalCollectionName: "accounts",
		EntitySetName:         "accounts",
		ObjectTypeCode:        intp(1),
		PrimaryIDAttribute:    "accountid",
		PrimaryNameAttribute:  "name",
		Description:           label("Business that represents a customer."),
		Attributes: []*metadata.Attribute{
			attr("name", "Name", metadata.TypeString),
			id, state, industry, color, tags, email, parent, parentName, old, hidden,
			attr("revenue", "Revenue", metadata.TypeMoney),
			attr("numberofemployees", "NumberOfEmployees", metadata.TypeInteger),
		},
		OneToMany: []*metadata.OneToManyRelationship{
			{MetadataID: uuid.New(), SchemaName: "account_primary_contact", ReferencedEntity: "account", ReferencedAttribute: "accountid", ReferencingEntity: "contact", ReferencingAttribute: "parentcustomerid"},
			{MetadataID: uuid.New(), SchemaName: "account_parent_account", ReferencedEntity: "account", ReferencedAttribute: "accountid", ReferencingEntity: "account", ReferencingAttribute: "parentaccountid"},
		},
		ManyToOne: []*metadata.OneToManyRelationship{
			{MetadataID: uuid.New(), SchemaName: "account_parent_account", ReferencedEntity: "account", ReferencedAttribute: "accountid", ReferencingEntity: "account", ReferencingAttribute: "parentaccountid"},
			{MetadataID: uuid.New(), SchemaName: "account_missing_lookup", ReferencedEntity: "contact", ReferencedAttribute: "contactid", ReferencingEntity: "account", ReferencingAttribute: "primarycontactid"},
		},
		ManyToMany: []*metadata.ManyToManyRelationship{
			{MetadataID: uuid.New(), SchemaName: "account_partners", Entity1LogicalName: "account", Entity2LogicalName: "account", IntersectEntityName: "accountpartners"},
			{MetadataID: uuid.New(), SchemaName: "accountcontacts_association", Entity1LogicalName: "account", Entity2LogicalName: "contact", IntersectEntityName: "accountcontacts"},
		},
	}
}

func contactEntity() *metadata.Entity {
	id := attr("contactid", "ContactId", metadata.TypeUniqueidentifier)
	id.IsPrimaryID = true
	color := attr("new_favoritecolor", "new_FavoriteColor", metadata.TypePicklist)
	color.OptionSet = colorSet
	return &metadata.Entity{
		MetadataID:         uuid.New(),
		LogicalName:        "contact",
		SchemaName:         "Contact",
		ObjectTypeCode:     intp(2),
		PrimaryIDAttribute: "contactid",
		Attributes: []*metadata.Attribute{
			id, color,
			attr("parentcustomerid", "ParentCustomerId", metadata.TypeCustomer),
		},
	}
}

func partyEntity() *metadata.Entity {
	return &metadata.Entity{
		MetadataID:     uuid.New(),
		LogicalName:    "activityparty",
		SchemaName:     "ActivityParty",
		ObjectTypeCode: intp(135),
		Attributes:     []*metadata.Attribute{attr("partyid", "PartyId", metadata.TypeLookup)},
	}
}

func testOrg(messages ...*metadata.RowResult) *metadata.Organization {
	ms := metadata.NewMessages()
	ms.Fill(messages...)
	return metadata.NewOrganization(
		[]*metadata.Entity{contactEntity(), accountEntity(), partyEntity()}, nil, ms)
}

// actionRows returns the rows of a custom action valid for the given
// object type codes, taking a target entity and returning a count.
func actionRows(name string, codes ...int) []*metadata.RowResult {
	msg, pair, req, resp := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	base := metadata.RowResult{
		MessageID: msg, Name: name, CustomizationLevel: 1,
		PairID: pair, PairNamespace: "2011/Organization.svc",
		RequestID: req, RequestName: name, ResponseID: resp,
	}
	target, comment, count := base, base, base
	target.RequestFieldName, target.RequestFieldCLRParser, target.RequestFieldPosition = "Target", metadata.EntityFormatter, intp(0)
	comment.RequestFieldName, comment.RequestFieldCLRParser, comment.RequestFieldPosition = "Comment", "System.String,mscorlib", intp(1)
	comment.RequestFieldOptional = true
	count.ResponseFieldName, count.ResponseFieldCLRFormatter, count.ResponseFieldPosition = "Count", "System.Int32,mscorlib", intp(0)
	rows := []*metadata.RowResult{&target, &comment, &count}
	for _, c := range codes {
		f := base
		f.FilterID, f.PrimaryObjectTypeCode = uuid.New(), c
		rows = append(rows, &f)
	}
	return rows
}

func newTestServices(t *testing.T, org *metadata.Organization, opts ...Option) *Services {
	t.Helper()
	cfg, err := NewConfig(opts...)
	require.NoError(t, err)
	if !cfg.SplitFiles && cfg.OutFile == "" {
		cfg.OutFile = "model.go"
	}
	return NewServices(cfg, org)
}

func findType(t *testing.T, types []*decl.Type, name string) *decl.Type {
	t.Helper()
	for _, typ := range types {
		if typ.Name == name {
			return typ
		}
	}
	require.Failf(t, "type not found", "no type %q", name)
	return nil
}

func property(t *testing.T, typ *decl.Type, name string) *decl.Property {
	t.Helper()
	p, ok := typ.Member(name).(*decl.Property)
	require.Truef(t, ok, "no property %q on %s", name, typ.Name)
	return p
}

func typeNames(types []*decl.Type) []string {
	names := make([]string, len(types))
	for i, typ := range types {
		names[i] = typ.Name
	}
	return names
}
