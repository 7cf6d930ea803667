package gen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelbuilder/metadata"
)

func TestFilterEntity(t *testing.T) {
	rows := actionRows("new_Approve", 1)
	lead := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "lead", ObjectTypeCode: intp(4)}
	intersect := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "accountleads", IsIntersect: true}

	t.Run("all entities without messages", func(t *testing.T) {
		s := newTestServices(t, testOrg(rows...))
		assert.True(t, s.Filter.GenerateEntity(lead, s))
		assert.False(t, s.Filter.GenerateEntity(nil, s))
	})

	t.Run("entities referenced by a message filter", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org, WithMessages("", false))
		assert.True(t, s.Filter.GenerateEntity(org.Entity("account"), s))
		assert.False(t, s.Filter.GenerateEntity(org.Entity("contact"), s))
		assert.False(t, s.Filter.GenerateEntity(lead, s))
		assert.True(t, s.Filter.GenerateEntity(intersect, s))
		assert.True(t, s.Filter.GenerateEntity(org.Entity("activityparty"), s))
	})

	t.Run("legacy mode consults messages", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org, WithLegacyMode())
		assert.True(t, s.Filter.GenerateEntity(org.Entity("account"), s))
		assert.False(t, s.Filter.GenerateEntity(org.Entity("contact"), s))
	})

	t.Run("private messages do not count", func(t *testing.T) {
		private := actionRows("new_Hidden", 2)
		for _, r := range private {
			r.IsPrivate = true
		}
		org := testOrg(private...)
		s := newTestServices(t, org, WithMessages("", true))
		assert.False(t, s.Filter.GenerateEntity(org.Entity("contact"), s))
	})
}

func TestFilterAttribute(t *testing.T) {
	s := newTestServices(t, testOrg())
	virtual := newTestServices(t, testOrg(), WithEmit(true, false, false))

	child := func(logical string, typ metadata.AttributeType) *metadata.Attribute {
		a := attr(logical, logical, typ)
		a.AttributeOf = "parentaccountid"
		return a
	}
	tests := []struct {
		name       string
		a          *metadata.Attribute
		plain, emt bool
	}{
		{"regular", attr("name", "Name", metadata.TypeString), true, true},
		{"name companion", child("parentaccountidname", metadata.TypeString), false, true},
		{"short name companion", child("name", metadata.TypeString), false, false},
		{"image child", child("entityimage", metadata.TypeImage), true, true},
		{"url child", child("entityimage_url", metadata.TypeString), true, true},
		{"timestamp child", child("entityimage_timestamp", metadata.TypeBigInt), true, true},
		{"yomi child", child("yomifullname", metadata.TypeString), false, true},
		{"other child", child("address1_composite", metadata.TypeMemo), false, false},
		{"not valid anywhere", func() *metadata.Attribute {
			a := attr("hidden", "Hidden", metadata.TypeString)
			a.IsValidForCreate, a.IsValidForRead, a.IsValidForUpdate = false, false, false
			return a
		}(), false, false},
		{"empty picklist", withOptions(attr("empty", "Empty", metadata.TypePicklist), "empty", false), false, false},
		{"picklist without set", attr("bare", "Bare", metadata.TypeStatus), false, false},
		{"empty multi-select", withOptions(attr("tags", "Tags", metadata.TypeMultiSelectPicklist), "tags", false), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plain, s.Filter.GenerateAttribute(tt.a, s))
			assert.Equal(t, tt.emt, virtual.Filter.GenerateAttribute(tt.a, virtual))
		})
	}
}

func TestFilterOptionSet(t *testing.T) {
	state := &metadata.OptionSet{Type: metadata.OptionSetState}
	picklist := &metadata.OptionSet{Type: metadata.OptionSetPicklist}

	s := newTestServices(t, testOrg())
	assert.True(t, s.Filter.GenerateOptionSet(state, s))
	assert.True(t, s.Filter.GenerateOptionSet(picklist, s))
	assert.True(t, s.Filter.GenerateOption(&metadata.Option{}, s))

	legacy := newTestServices(t, testOrg(), WithLegacyMode())
	assert.True(t, legacy.Filter.GenerateOptionSet(state, legacy))
	assert.False(t, legacy.Filter.GenerateOptionSet(picklist, legacy))
}

func TestFilterRelationship(t *testing.T) {
	org := testOrg()
	s := newTestServices(t, org)
	r := &metadata.OneToManyRelationship{SchemaName: "x"}
	assert.True(t, s.Filter.GenerateRelationship(r, org.Entity("contact"), s))
	assert.False(t, s.Filter.GenerateRelationship(r, nil, s))
	assert.False(t, s.Filter.GenerateRelationship(r, &metadata.Entity{LogicalName: "calendarrule"}, s))
}

func TestFilterServiceContext(t *testing.T) {
	s := newTestServices(t, testOrg())
	assert.False(t, s.Filter.GenerateServiceContext(s))
	s = newTestServices(t, testOrg(), WithServiceContext("XrmContext"))
	assert.True(t, s.Filter.GenerateServiceContext(s))
}

func TestFilterMessages(t *testing.T) {
	custom := actionRows("new_Approve", 1)
	system := actionRows("new_System", 1)
	for _, r := range system {
		r.CustomizationLevel = 0
	}
	private := actionRows("new_Private", 1)
	for _, r := range private {
		r.IsPrivate = true
	}
	unfiltered := actionRows("new_Unfiltered")
	reserved := actionRows("WhoAmI", 1)
	rows := append(append(append(append(custom, system...), private...), unfiltered...), reserved...)

	message := func(org *metadata.Organization, name string) *metadata.Message {
		for _, m := range org.Messages.All() {
			if m.Name == name {
				return m
			}
		}
		require.FailNow(t, "message not found", name)
		return nil
	}

	t.Run("messages disabled", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org)
		assert.False(t, s.Filter.GenerateMessage(message(org, "new_Approve"), s))
	})

	t.Run("public", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org, WithMessages("", false))
		assert.True(t, s.Filter.GenerateMessage(message(org, "new_Approve"), s))
		assert.True(t, s.Filter.GenerateMessage(message(org, "new_System"), s))
		assert.False(t, s.Filter.GenerateMessage(message(org, "new_Private"), s))
		assert.False(t, s.Filter.GenerateMessage(message(org, "new_Unfiltered"), s))
		assert.False(t, s.Filter.GenerateMessage(message(org, "WhoAmI"), s))

		assert.True(t, s.Filter.GenerateMessagePair(message(org, "new_Approve").Pairs()[0], s))
		assert.False(t, s.Filter.GenerateMessagePair(message(org, "new_System").Pairs()[0], s))
	})

	t.Run("private", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org, WithMessages("", true))
		assert.True(t, s.Filter.GenerateMessage(message(org, "new_Private"), s))
		assert.True(t, s.Filter.GenerateMessagePair(message(org, "new_System").Pairs()[0], s))
		assert.False(t, s.Filter.GenerateMessagePair(message(org, "WhoAmI").Pairs()[0], s))
	})

	t.Run("namespace", func(t *testing.T) {
		org := testOrg(rows...)
		s := newTestServices(t, org, WithMessages("", false), WithMessageNamespace("2011/ORGANIZATION.svc"))
		assert.True(t, s.Filter.GenerateMessagePair(message(org, "new_Approve").Pairs()[0], s))

		s = newTestServices(t, org, WithMessages("", false), WithMessageNamespace("2016/Web.svc"))
		assert.False(t, s.Filter.GenerateMessagePair(message(org, "new_Approve").Pairs()[0], s))
	})
}
