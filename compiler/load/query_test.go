package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"account", "contact"}, SplitList(" account;;contact ;"))
	assert.Nil(t, SplitList(""))
}

func TestMessageConditions(t *testing.T) {
	t.Run("empty filter reads everything", func(t *testing.T) {
		assert.Nil(t, MessageConditions(nil))
	})

	t.Run("wildcards and required messages", func(t *testing.T) {
		conds := MessageConditions([]string{"new_*", "Create"})
		assert.Equal(t, Condition{Value: "new_%", Wildcard: true}, conds[0])
		assert.Equal(t, Condition{Value: "Create"}, conds[1])
		var plain []string
		for _, c := range conds[2:] {
			plain = append(plain, c.Value)
		}
		assert.Equal(t, []string{"Update", "Delete", "Retrieve", "RetrieveMultiple", "Associate", "Disassociate"}, plain)
	})
}

func TestConditionMatch(t *testing.T) {
	tests := []struct {
		cond Condition
		name string
		want bool
	}{
		{Condition{Value: "Create"}, "create", true},
		{Condition{Value: "Create"}, "CreateMultiple", false},
		{Condition{Value: "new_%", Wildcard: true}, "NEW_Approve", true},
		{Condition{Value: "%approve", Wildcard: true}, "new_Approve", true},
		{Condition{Value: "a%b%c", Wildcard: true}, "axxbyyc", true},
		{Condition{Value: "ab%ba", Wildcard: true}, "aba", false},
	}
	for _, tt := range tests {
		t.Run(tt.cond.Value+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Match(tt.name))
		})
	}
	assert.True(t, MatchAny(nil, "anything"))
}

func TestBatches(t *testing.T) {
	assert.Len(t, Batches(make([]string, 40), 20), 2)
	assert.Len(t, Batches(make([]string, 41), 20), 3)
	assert.Empty(t, Batches(nil, 20))
}

func TestFetchXML(t *testing.T) {
	t.Run("first page carries no paging attributes", func(t *testing.T) {
		x := (&Query{Stage: StageMessages, Page: 1}).FetchXML()
		assert.NotContains(t, x, "page=")
		assert.Contains(t, x, "sdkmessagepair")
		assert.NotContains(t, x, "<filter type='or'>")
	})

	t.Run("later pages carry cookie and page", func(t *testing.T) {
		x := (&Query{Stage: StageFilters, Page: 3, Cookie: `<cookie a="1"/>`}).FetchXML()
		assert.Contains(t, x, `paging-cookie='&lt;cookie a=&#34;1&#34;/&gt;'`)
		assert.Contains(t, x, `page='3'`)
		assert.Contains(t, x, "sdkmessagefilter")
	})

	t.Run("conditions", func(t *testing.T) {
		x := (&Query{Page: 1, Conditions: []Condition{{Value: "new_%", Wildcard: true}, {Value: "Create"}}}).FetchXML()
		assert.Contains(t, x, `operator='like' value='new_%'`)
		assert.Contains(t, x, `operator='eq' value='Create'`)
	})
}
