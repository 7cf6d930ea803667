package metadata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<resultset morerecords="1" paging-cookie="&lt;cookie page=&quot;1&quot;/&gt;">
  <result>
    <name>new_Approve</name>
    <isprivate>0</isprivate>
    <customizationlevel>1</customizationlevel>
    <sdkmessageid>{11111111-1111-1111-1111-111111111111}</sdkmessageid>
    <sdkmessagepair.sdkmessagepairid>22222222-2222-2222-2222-222222222222</sdkmessagepair.sdkmessagepairid>
    <sdkmessagepair.namespace>http://schemas.microsoft.com/crm/2011/new/</sdkmessagepair.namespace>
    <sdkmessagerequest.sdkmessagerequestid>33333333-3333-3333-3333-333333333333</sdkmessagerequest.sdkmessagerequestid>
    <sdkmessagerequest.name>new_Approve</sdkmessagerequest.name>
    <sdkmessagerequestfield.name>Target</sdkmessagerequestfield.name>
    <sdkmessagerequestfield.optional>0</sdkmessagerequestfield.optional>
    <sdkmessagerequestfield.clrparser>Microsoft.Xrm.Sdk.EntityReference,Microsoft.Xrm.Sdk</sdkmessagerequestfield.clrparser>
    <sdkmessagerequestfield.position>0</sdkmessagerequestfield.position>
    <sdmessagefilter.sdkmessagefilterid>55555555-5555-5555-5555-555555555551</sdmessagefilter.sdkmessagefilterid>
    <sdmessagefilter.primaryobjecttypecode>1</sdmessagefilter.primaryobjecttypecode>
    <sdmessagefilter.secondaryobjecttypecode>0</sdmessagefilter.secondaryobjecttypecode>
  </result>
</resultset>`

func TestDecodeResultSet(t *testing.T) {
	t.Run("decodes rows and paging attributes", func(t *testing.T) {
		rs, err := DecodeResultSet([]byte(samplePage))
		require.NoError(t, err)

		paging := rs.Paging()
		assert.True(t, paging.HasMore)
		assert.Equal(t, `<cookie page="1"/>`, paging.Cookie)

		require.Len(t, rs.Results, 1)
		r := rs.Results[0]
		assert.Equal(t, uuid.MustParse("11111111-1111-1111-1111-111111111111"), r.MessageID)
		assert.Equal(t, 1, r.CustomizationLevel)
		assert.False(t, r.IsPrivate)
		require.NotNil(t, r.RequestFieldPosition)
		assert.Equal(t, 0, *r.RequestFieldPosition)
		assert.Nil(t, r.ResponseFieldPosition)
		assert.Equal(t, uuid.Nil, r.ResponseID)
		assert.Equal(t, 1, r.PrimaryObjectTypeCode)
	})

	t.Run("last page has no more records", func(t *testing.T) {
		rs, err := DecodeResultSet([]byte(`<resultset morerecords="0"></resultset>`))
		require.NoError(t, err)
		assert.False(t, rs.Paging().HasMore)
		assert.Empty(t, rs.Results)
	})

	t.Run("malformed envelope fails", func(t *testing.T) {
		_, err := DecodeResultSet([]byte(`<resultset morerecords="1"><result>`))
		require.Error(t, err)

		_, err = DecodeResultSet([]byte(`<resultset morerecords="yes"></resultset>`))
		require.Error(t, err)
	})
}

func TestEncodeResultSet(t *testing.T) {
	in := &ResultSet{
		PagingCookie: `<cookie page="2"/>`,
		MoreRecords:  1,
		Results:      []*RowResult{fullRow()},
	}
	data, err := EncodeResultSet(in)
	require.NoError(t, err)

	out, err := DecodeResultSet(data)
	require.NoError(t, err)
	assert.Equal(t, in.PagingCookie, out.PagingCookie)
	assert.True(t, out.Paging().HasMore)
	require.Len(t, out.Results, 1)
	assert.Equal(t, *fullRow(), *out.Results[0])
}
