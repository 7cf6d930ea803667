package xrm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contact mirrors the shape of a generated entity type.
type contact struct {
	*Entity
}

func (c *contact) Bind(base *Entity) {
	if base.LogicalName == "" {
		base.LogicalName = "contact"
	}
	c.Entity = base
}

type color int32

func TestAttributeValues(t *testing.T) {
	e := NewEntity("account")
	e.SetAttributeValue("name", "Contoso")
	e.SetAttributeValue("numberofemployees", 12)
	e.SetAttributeValue("revenue", &Money{Value: 10})
	e.SetAttributeValue("parentaccountid", (*EntityReference)(nil))

	assert.Equal(t, "Contoso", GetAttributeValue[string](e, "name"))
	assert.Equal(t, int32(12), GetAttributeValue[int32](e, "numberofemployees"))
	n := GetAttributeValue[*int32](e, "numberofemployees")
	require.NotNil(t, n)
	assert.Equal(t, int32(12), *n)
	assert.Nil(t, GetAttributeValue[*int32](e, "missing"))
	assert.Empty(t, GetAttributeValue[string](e, "numberofemployees"), "numbers do not read as strings")
	assert.Equal(t, 10.0, GetAttributeValue[*Money](e, "revenue").Value)

	v, ok := e.Attributes["parentaccountid"]
	assert.True(t, ok)
	assert.Nil(t, v, "typed nil is stored as nil")

	e.FormattedValues["statecode"] = "Active"
	assert.Equal(t, "Active", e.FormattedValue("statecode"))
	assert.Empty(t, GetAttributeValue[string](nil, "name"))
}

func TestEnums(t *testing.T) {
	e := NewEntity("account")
	assert.Nil(t, GetEnum[color](e, "new_color"))

	red := color(1)
	SetEnum(e, "new_color", &red)
	got := GetEnum[color](e, "new_color")
	require.NotNil(t, got)
	assert.Equal(t, red, *got)
	assert.Equal(t, int32(1), *OptionValue(e, "new_color"))

	SetEnum[color](e, "new_color", nil)
	assert.Nil(t, OptionValue(e, "new_color"))

	SetMultiEnum(e, "new_tags", []color{1, 3})
	assert.Equal(t, []color{1, 3}, GetMultiEnum[color](e, "new_tags"))
	assert.Len(t, MultiEnumValue([]color{2}), 1)
	SetMultiEnum[color](e, "new_tags", nil)
	assert.Nil(t, GetMultiEnum[color](e, "new_tags"))
}

func TestRecords(t *testing.T) {
	r := NewRecord[contact]()
	require.NotNil(t, r)
	assert.Equal(t, "contact", r.LogicalName)
	assert.Nil(t, ToRecord[contact](nil))

	account := NewEntity("account")
	SetEntityCollection(account, "to", []*contact{r})
	parties := GetEntityCollection[contact](account, "to")
	require.Len(t, parties, 1)
	assert.Same(t, r.Entity, parties[0].Entity)

	SetEntityCollection[*contact](account, "to", nil)
	assert.Nil(t, GetEntityCollection[contact](account, "to"))
}

func TestRelatedEntities(t *testing.T) {
	account := NewEntity("account")
	parent := NewEntity("account")
	parent.ID = uuid.New()

	SetRelatedEntity(account, "account_parent_account", Referencing, parent)
	got := GetRelatedEntity[Entity](account, "account_parent_account", Referencing)
	require.NotNil(t, got)
	assert.Equal(t, parent.ID, got.ID)
	assert.Nil(t, GetRelatedEntity[Entity](account, "account_parent_account", Referenced), "roles are distinct")

	SetRelatedEntity[*Entity](account, "account_parent_account", Referencing, nil)
	assert.Nil(t, GetRelatedEntity[Entity](account, "account_parent_account", Referencing))

	c := NewRecord[contact]()
	SetRelatedEntities(account, "account_primary_contact", RoleNone, []*contact{c})
	contacts := GetRelatedEntities[contact](account, "account_primary_contact", RoleNone)
	require.Len(t, contacts, 1)
	assert.Same(t, c.Entity, contacts[0].Entity)
	assert.Equal(t, "Referenced", Referenced.String())
}

func TestRequests(t *testing.T) {
	req := NewOrganizationRequest()
	req.RequestName = "new_Approve"
	req.SetParameter("Target", NewEntity("account"))
	req.SetParameter("Comment", (*string)(nil))

	assert.Equal(t, "account", GetParameter[*Entity](req, "Target").LogicalName)
	assert.Nil(t, GetParameter[*string](req, "Comment"))

	resp := NewOrganizationResponse()
	resp.Results["Count"] = int64(3)
	assert.Equal(t, int32(3), GetResult[int32](resp, "Count"))
	assert.Zero(t, GetResult[int32](nil, "Count"))
}

type pagedService struct {
	pages   []*EntityCollection
	queries []*QueryExpression
}

func (s *pagedService) Execute(_ context.Context, req *OrganizationRequest) (*OrganizationResponse, error) {
	resp := NewOrganizationResponse()
	resp.ResponseName = req.RequestName
	return resp, nil
}

func (s *pagedService) RetrieveMultiple(_ context.Context, q QueryBase) (*EntityCollection, error) {
	expr := *q.(*QueryExpression)
	s.queries = append(s.queries, &expr)
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

func TestQuery(t *testing.T) {
	svc := &pagedService{pages: []*EntityCollection{
		{Entities: []*Entity{NewEntity("contact")}, MoreRecords: true, PagingCookie: "c1"},
		{Entities: []*Entity{NewEntity("contact")}},
	}}
	sc := NewServiceContext(svc)
	records, err := CreateQuery[contact](sc, "contact").Select("fullname").List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, sc.IsAttached(records[0]))

	require.Len(t, svc.queries, 2)
	assert.Equal(t, "contact", svc.queries[0].QueryEntity())
	assert.Equal(t, []string{"fullname"}, svc.queries[0].ColumnSet.Columns)
	assert.Equal(t, 2, svc.queries[1].PageInfo.PageNumber)
	assert.Equal(t, "c1", svc.queries[1].PageInfo.PagingCookie)

	resp, err := sc.Execute(context.Background(), &OrganizationRequest{RequestName: "WhoAmI"})
	require.NoError(t, err)
	assert.Equal(t, "WhoAmI", resp.ResponseName)

	_, err = CreateQuery[contact](NewServiceContext(nil), "contact").List(context.Background())
	assert.ErrorIs(t, err, ErrNoService)
}
