package metadata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationAddOptionSet(t *testing.T) {
	t.Run("deduplicates by name", func(t *testing.T) {
		o := NewOrganization(nil, nil, nil)
		first := &OptionSet{MetadataID: uuid.New(), Name: "new_color", IsGlobal: true}
		second := &OptionSet{MetadataID: uuid.New(), Name: "new_color", IsGlobal: true}

		assert.True(t, o.AddOptionSet(first))
		assert.False(t, o.AddOptionSet(second))

		sets := o.OptionSets()
		require.Len(t, sets, 1)
		assert.Same(t, first, sets[0])
	})

	t.Run("constructor dedups its input", func(t *testing.T) {
		o := NewOrganization(nil, []*OptionSet{{Name: "a"}, {Name: "b"}, {Name: "a"}}, nil)
		assert.Len(t, o.OptionSets(), 2)
		_, ok := o.OptionSet("b")
		assert.True(t, ok)
	})

	t.Run("nil is ignored", func(t *testing.T) {
		o := NewOrganization(nil, nil, nil)
		assert.False(t, o.AddOptionSet(nil))
		assert.Empty(t, o.OptionSets())
	})
}

func TestOrganizationEntity(t *testing.T) {
	account := &Entity{LogicalName: "account"}
	o := NewOrganization([]*Entity{account, {LogicalName: "contact"}}, nil, nil)

	assert.Same(t, account, o.Entity("account"))
	assert.Nil(t, o.Entity("lead"))
	assert.NotNil(t, o.Messages)
	assert.Equal(t, DefaultLanguageCode, o.LanguageCode)
}

func TestLabel(t *testing.T) {
	l := Label{LocalizedLabels: []LocalizedLabel{
		{Label: "Rouge", LanguageCode: 1036},
		{Label: "Red", LanguageCode: 1033},
	}}

	s, ok := l.In(1033)
	assert.True(t, ok)
	assert.Equal(t, "Red", s)

	_, ok = l.In(1031)
	assert.False(t, ok)
	assert.Equal(t, "Rouge", l.Text(1031))
	assert.True(t, Label{}.IsZero())
}

func TestAttributeNameCompanion(t *testing.T) {
	tests := []struct {
		attr *Attribute
		want bool
	}{
		{&Attribute{LogicalName: "primarycontactidname", AttributeOf: "primarycontactid"}, true},
		{&Attribute{LogicalName: "name", AttributeOf: "x"}, false},
		{&Attribute{LogicalName: "fullname"}, false},
		{&Attribute{LogicalName: "statuscodeNAME", AttributeOf: "statuscode"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.attr.LogicalName, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attr.IsNameCompanion())
		})
	}
}
