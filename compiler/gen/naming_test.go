package gen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelbuilder/metadata"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "Unknown"},
		{"Account", "Account"},
		{"Do Not Allow", "DoNotAllow"},
		{"$Amount", "CurrencySymbol_Amount"},
		{"Amount (Base)", "Amount_Base"},
		{"1st Choice", "_1stChoice"},
		{"new_name", "new_name"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.in))
		})
	}
}

func TestValidTypeName(t *testing.T) {
	n := NewNaming(&Config{}, nil)
	assert.Equal(t, "Account", n.ValidTypeName("Account"))
	assert.Equal(t, "Account1", n.ValidTypeName("Account"))
	assert.Equal(t, "Account2", n.ValidTypeName("Account"))
	assert.Equal(t, "Contact", n.ValidTypeName("Contact"))
	assert.Equal(t, "DoNotAllow", n.ValidTypeName("Do Not Allow"))
	assert.Equal(t, "DoNotAllow1", n.ValidTypeName("DoNotAllow"), "counted by valid name")
}

func TestNamingEntity(t *testing.T) {
	s := newTestServices(t, testOrg())

	t.Run("schema name", func(t *testing.T) {
		e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "account", SchemaName: "Account"}
		assert.Equal(t, "Account", s.Naming.EntityName(e, s))
		assert.Equal(t, "Account", s.Naming.EntityName(e, s), "memoized per entity")
		assert.Equal(t, "AccountSet", s.Naming.EntitySetName(e, s))
	})

	t.Run("fixed names", func(t *testing.T) {
		e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "activitymimeattachment", SchemaName: "ActivityMimeAttachment1"}
		assert.Equal(t, "ActivityMimeAttachment", s.Naming.EntityName(e, s))
	})

	t.Run("sdk type collision", func(t *testing.T) {
		e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "label", SchemaName: "Label"}
		assert.Equal(t, "Label_Ent", s.Naming.EntityName(e, s))
	})
}

func TestNamingAttribute(t *testing.T) {
	s := newTestServices(t, testOrg())
	e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "new_item", SchemaName: "new_Item"}

	tests := []struct {
		logical, schema, want string
	}{
		{"new_code", "new_Code", "new_Code"},
		{"id", "Id", "Id1"},
		{"new_item", "new_Item", "new_Item1"},
		{"month1", "Month1", "Month1"},
		{"quarter2_base", "quarter2_base", "Quarter2_Base"},
		{"requiredattendees", "requiredattendees", "RequiredAttendees"},
	}
	for _, tt := range tests {
		t.Run(tt.logical, func(t *testing.T) {
			a := &metadata.Attribute{MetadataID: uuid.New(), LogicalName: tt.logical, SchemaName: tt.schema}
			assert.Equal(t, tt.want, s.Naming.AttributeName(e, a, s))
		})
	}
}

func TestNamingRelationship(t *testing.T) {
	s := newTestServices(t, testOrg())
	e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "account", SchemaName: "Account"}
	r := &metadata.ManyToManyRelationship{MetadataID: uuid.New(), SchemaName: "account_partners"}

	assert.Equal(t, "account_partners", s.Naming.RelationshipName(e, r, metadata.RoleNone, s))
	assert.Equal(t, "Referencingaccount_partners", s.Naming.RelationshipName(e, r, metadata.RoleReferencing, s))
	assert.Equal(t, "Referencedaccount_partners", s.Naming.RelationshipName(e, r, metadata.RoleReferenced, s))

	t.Run("name already used under the entity", func(t *testing.T) {
		other := &metadata.OneToManyRelationship{MetadataID: uuid.New(), SchemaName: "account_partners"}
		assert.Equal(t, "account_partners1", s.Naming.RelationshipName(e, other, metadata.RoleNone, s))
	})

	t.Run("reserved member", func(t *testing.T) {
		rel := &metadata.OneToManyRelationship{MetadataID: uuid.New(), SchemaName: "Attributes"}
		assert.Equal(t, "Attributes1", s.Naming.RelationshipName(e, rel, metadata.RoleNone, s))
	})
}

func TestNamingOptionSet(t *testing.T) {
	t.Run("set name", func(t *testing.T) {
		s := newTestServices(t, testOrg())
		os := &metadata.OptionSet{MetadataID: uuid.New(), Name: "new_color"}
		assert.Equal(t, "new_color", s.Naming.OptionSetName(nil, os, s))
	})

	t.Run("legacy state set", func(t *testing.T) {
		s := newTestServices(t, testOrg(), WithLegacyMode())
		e := &metadata.Entity{MetadataID: uuid.New(), LogicalName: "account", SchemaName: "Account"}
		os := &metadata.OptionSet{MetadataID: uuid.New(), Name: "account_statecode", Type: metadata.OptionSetState}
		assert.Equal(t, "AccountState", s.Naming.OptionSetName(e, os, s))
	})

	t.Run("entity collision", func(t *testing.T) {
		s := newTestServices(t, testOrg())
		os := &metadata.OptionSet{MetadataID: uuid.New(), Name: "contact"}
		assert.Equal(t, "contactEnum", s.Naming.OptionSetName(nil, os, s))

		org := metadata.NewOrganization([]*metadata.Entity{{LogicalName: "new_size", SchemaName: "new_Dimension"}}, nil, nil)
		s = newTestServices(t, org)
		os = &metadata.OptionSet{MetadataID: uuid.New(), Name: "new_size"}
		assert.Equal(t, "new_size", s.Naming.OptionSetName(nil, os, s), "schema name differs")
	})
}

func TestNamingOption(t *testing.T) {
	s := newTestServices(t, testOrg(), WithDefaultLanguage(1036))
	os := &metadata.OptionSet{MetadataID: uuid.New()}

	t.Run("invariant name wins", func(t *testing.T) {
		o := &metadata.Option{Value: 0, InvariantName: "Active", Label: label("Actif")}
		assert.Equal(t, "Active", s.Naming.OptionName(os, o, s))
	})

	t.Run("label in default language", func(t *testing.T) {
		o := &metadata.Option{Value: 1, Label: metadata.Label{LocalizedLabels: []metadata.LocalizedLabel{
			{Label: "Red", LanguageCode: 1033},
			{Label: "Rouge", LanguageCode: 1036},
		}}}
		assert.Equal(t, "Rouge", s.Naming.OptionName(os, o, s))
	})

	t.Run("first label", func(t *testing.T) {
		o := &metadata.Option{Value: 2, Label: label("Blue")}
		assert.Equal(t, "Blue", s.Naming.OptionName(os, o, s))
	})

	t.Run("no usable label", func(t *testing.T) {
		o := &metadata.Option{Value: 3, Label: label("???")}
		assert.Equal(t, "UnknownLabel3", s.Naming.OptionName(os, o, s))
	})

	t.Run("no label", func(t *testing.T) {
		var used, got []string
		for _, o := range []*metadata.Option{{Value: 4}, {Value: 5}} {
			name := s.Naming.OptionName(os, o, s)
			assert.Equal(t, "Unknown", name)
			name, used = uniqueOptionName(used, name)
			got = append(got, name)
		}
		assert.Equal(t, []string{"Unknown", "Unknown1"}, got)
	})
}

func TestUniqueOptionName(t *testing.T) {
	var used []string
	var got []string
	for _, name := range []string{"Active", "Active", "Active", "Inactive"} {
		var n string
		n, used = uniqueOptionName(used, name)
		got = append(got, n)
	}
	assert.Equal(t, []string{"Active", "Active1", "Active2", "Inactive"}, got)

	t.Run("highest digit suffix", func(t *testing.T) {
		used := []string{"Level", "Level2"}
		n, used := uniqueOptionName(used, "Level")
		assert.Equal(t, "Level3", n)
		require.Len(t, used, 3)
	})

	t.Run("suffixes past nine", func(t *testing.T) {
		tests := []struct {
			name string
			used []string
			want string
		}{
			{"ninth repeat", []string{"Active", "Active1", "Active2", "Active3", "Active4", "Active5", "Active6", "Active7", "Active8"}, "Active9"},
			{"tenth repeat", []string{"Active", "Active1", "Active2", "Active3", "Active4", "Active5", "Active6", "Active7", "Active8", "Active9"}, "Active10"},
			// Only the first digit after the name counts, so Active10 is handed out again.
			{"eleventh repeat", []string{"Active", "Active1", "Active2", "Active3", "Active4", "Active5", "Active6", "Active7", "Active8", "Active9", "Active10"}, "Active10"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				n, _ := uniqueOptionName(tt.used, "Active")
				assert.Equal(t, tt.want, n)
			})
		}
	})
}

func TestNamingMessages(t *testing.T) {
	org := testOrg(actionRows("new_Approve", 1)...)
	s := newTestServices(t, org)
	m := org.Messages.All()[0]
	p := m.Pairs()[0]

	assert.Equal(t, "new_Approve", s.Naming.PairName(p, s))
	assert.Equal(t, "new_Approve", s.Naming.PairName(p, s), "memoized per pair")

	f, ok := p.Request.Field(0)
	require.True(t, ok)
	assert.Equal(t, "Target", s.Naming.RequestFieldName(p.Request, f, s))
	rf, ok := p.Response.Field(0)
	require.True(t, ok)
	assert.Equal(t, "Count", s.Naming.ResponseFieldName(p.Response, rf, s))
	assert.Equal(t, defaultContext, s.Naming.ServiceContextName(s))
}
