package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelbuilder"
	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/metadata"
)

var (
	approveID = uuid.MustParse("6f5d6f4e-2b7e-4d6b-9a1e-0c7b1b0c3a01")
	whoAmIID  = uuid.MustParse("6f5d6f4e-2b7e-4d6b-9a1e-0c7b1b0c3a02")
)

func pos(i int) *int { return &i }

// document holds two entities, a global and a local option set, and the
// new_Approve and WhoAmI messages.
func document() *metadata.Document {
	code := 1
	rows := []*metadata.RowResult{
		{
			MessageID:             approveID,
			Name:                  "new_Approve",
			CustomizationLevel:    1,
			PairID:                uuid.New(),
			PairNamespace:         "http://schemas.contoso.com/xrm/2011/new/",
			RequestID:             uuid.New(),
			RequestName:           "new_Approve",
			RequestFieldName:      "Target",
			RequestFieldCLRParser: "Microsoft.Xrm.Sdk.EntityReference",
			RequestFieldPosition:  pos(0),
		},
		{MessageID: approveID, Name: "new_Approve", CustomizationLevel: 1, FilterID: uuid.New(), PrimaryObjectTypeCode: 1},
		{MessageID: whoAmIID, Name: "WhoAmI", PairID: uuid.New(), PairNamespace: "http://schemas.microsoft.com/crm/2011/Contracts", RequestID: uuid.New(), RequestName: "WhoAmI"},
		{MessageID: whoAmIID, Name: "WhoAmI", FilterID: uuid.New()},
	}
	msgs := metadata.NewMessages()
	msgs.Fill(rows...)
	org := metadata.NewOrganization(
		[]*metadata.Entity{
			{MetadataID: uuid.New(), LogicalName: "account", SchemaName: "Account", ObjectTypeCode: &code},
			{MetadataID: uuid.New(), LogicalName: "contact", SchemaName: "Contact"},
		},
		[]*metadata.OptionSet{
			{MetadataID: uuid.New(), Name: "budgetstatus", Type: metadata.OptionSetPicklist, IsGlobal: true, Options: []*metadata.Option{{Value: 0}}},
			{MetadataID: uuid.New(), Name: "account_local", Type: metadata.OptionSetPicklist},
		},
		msgs,
	)
	org.LanguageCode = 1036
	return org.Document()
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"org.msgpack", Msgpack},
		{"org.MPK", Msgpack},
		{"dir/org.yml", YAML},
		{"org.yaml", YAML},
		{"org.json", JSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatOf(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
	_, err := FormatOf("org.xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestReadWrite(t *testing.T) {
	for _, ext := range []string{"msgpack", "yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "org."+ext)
			require.NoError(t, Write(path, document()))

			doc, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, 1036, doc.LanguageCode)
			require.Len(t, doc.Entities, 2)
			assert.Equal(t, "account", doc.Entities[0].LogicalName)
			assert.Equal(t, 1, *doc.Entities[0].ObjectTypeCode)

			org := doc.Organization()
			m, ok := org.Messages.Get(approveID)
			require.True(t, ok)
			assert.True(t, m.IsCustomAction)
			require.Len(t, m.Pairs(), 1)
			assert.Equal(t, "Target", m.Pairs()[0].Request.Fields()[0].Name)
		})
	}

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "org.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := Read(path)
		assert.ErrorContains(t, err, "decode json")
	})
	t.Run("missing", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "org.yaml"))
		assert.Error(t, err)
	})
}

func TestSourceLoad(t *testing.T) {
	src := New(document(), WithPageSize(1))

	t.Run("all", func(t *testing.T) {
		org, err := load.New(src, load.WithMessages(true), load.WithGlobalOptionSets(true)).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1036, org.LanguageCode)
		assert.Len(t, org.Entities, 2)
		require.Len(t, org.OptionSets(), 1)
		assert.Equal(t, "budgetstatus", org.OptionSets()[0].Name)
		assert.Equal(t, 2, org.Messages.Len())
		m, ok := org.Messages.Get(approveID)
		require.True(t, ok)
		assert.Equal(t, 1, m.FilterCount())
		assert.Len(t, m.Pairs(), 1)
	})

	t.Run("filtered", func(t *testing.T) {
		ld := load.New(src, load.WithEntityNames("contact"), load.WithMessageNames("new_*"))
		org, err := ld.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, org.Entities, 1)
		assert.Equal(t, "contact", org.Entities[0].LogicalName)
		assert.Empty(t, org.OptionSets())
		_, ok := org.Messages.Get(whoAmIID)
		assert.False(t, ok)
		_, ok = org.Messages.Get(approveID)
		assert.True(t, ok)
	})
}

func TestSourceFetch(t *testing.T) {
	src := New(document(), WithPageSize(1))
	ctx := context.Background()

	data, err := src.Fetch(ctx, &load.Query{Stage: load.StageMessages, Page: 1})
	require.NoError(t, err)
	rs, err := metadata.DecodeResultSet(data)
	require.NoError(t, err)
	require.Len(t, rs.Results, 1)
	assert.Equal(t, "new_Approve", rs.Results[0].Name)
	assert.True(t, rs.Paging().HasMore)
	assert.Equal(t, "1", rs.PagingCookie)

	// The request field of new_Approve is a row of its own.
	data, err = src.Fetch(ctx, &load.Query{Stage: load.StageMessages, Page: 2, Cookie: rs.PagingCookie})
	require.NoError(t, err)
	rs, err = metadata.DecodeResultSet(data)
	require.NoError(t, err)
	require.Len(t, rs.Results, 1)
	assert.Equal(t, "Target", rs.Results[0].RequestFieldName)
	assert.True(t, rs.Paging().HasMore)

	data, err = src.Fetch(ctx, &load.Query{Stage: load.StageMessages, Page: 3})
	require.NoError(t, err)
	rs, err = metadata.DecodeResultSet(data)
	require.NoError(t, err)
	require.Len(t, rs.Results, 1)
	assert.Equal(t, "WhoAmI", rs.Results[0].Name)
	assert.False(t, rs.Paging().HasMore)

	_, err = src.Fetch(ctx, &load.Query{Stage: load.StageMessages, Page: 2, Cookie: "abc"})
	assert.ErrorContains(t, err, "bad paging cookie")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.Fetch(canceled, &load.Query{Stage: load.StageFilters})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	c := NewCache(filepath.Join(t.TempDir(), "cache"))
	key := modelbuilder.CacheKey{Source: "snapshot:org.yaml", Entities: "account"}.String()

	_, err := c.Get(ctx, key)
	require.ErrorIs(t, err, modelbuilder.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, []byte("payload")))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
	assert.FileExists(t, c.Path(key))

	require.NoError(t, c.Delete(ctx, key))
	require.NoError(t, c.Delete(ctx, key))
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, modelbuilder.ErrCacheMiss)
}

func TestProviderCache(t *testing.T) {
	ctx := context.Background()
	c := NewCache(t.TempDir())
	key := modelbuilder.CacheKey{Source: "snapshot", Global: true}

	org, err := load.NewProvider(load.New(New(document()), load.WithMessages(true)), load.WithCache(c, key)).Load(ctx)
	require.NoError(t, err)
	assert.FileExists(t, c.Path(key.String()))

	// A provider over an empty source is served from the cache.
	empty := New(&metadata.Document{})
	cached, err := load.NewProvider(load.New(empty), load.WithCache(c, key)).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Entities, len(org.Entities))
	assert.Equal(t, org.Messages.Len(), cached.Messages.Len())
}
