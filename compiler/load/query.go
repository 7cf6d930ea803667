package load

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Stage identifies one of the paged message queries.
type Stage string

// Message query stages, executed in this order.
const (
	// StageMessages reads messages joined to pairs, requests, responses and fields.
	StageMessages Stage = "messages"
	// StageFilters reads messages joined to their visible filters.
	StageFilters Stage = "filters"
)

// MaxConditions bounds the number of conditions in one metadata filter.
const MaxConditions = 20

// OrganizationEndpoint is the endpoint whose message pairs are read.
const OrganizationEndpoint = "2011/Organization.svc"

// requiredMessages are always read when a message name filter is set.
var requiredMessages = []string{
	"Create", "Update", "Delete", "Retrieve", "RetrieveMultiple", "Associate", "Disassociate",
}

// Condition is one message name condition. Wildcard conditions match
// names by pattern, with '%' standing for any run of characters.
type Condition struct {
	Value    string
	Wildcard bool
}

// Query is one request for a page of message rows.
type Query struct {
	Stage      Stage
	Conditions []Condition
	// Cookie is the continuation cookie of the previous page, empty on the first page.
	Cookie string
	// Page is the 1-based page number.
	Page int
}

// SplitList splits a ';' separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MessageConditions turns message name filter entries into conditions.
// A '*' in an entry makes it a wildcard condition. The required messages
// are appended when they are not already named.
func MessageConditions(names []string) []Condition {
	if len(names) == 0 {
		return nil
	}
	conds := make([]Condition, 0, len(names)+len(requiredMessages))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.Contains(n, "*") {
			conds = append(conds, Condition{Value: strings.ReplaceAll(n, "*", "%"), Wildcard: true})
			continue
		}
		seen[n] = true
		conds = append(conds, Condition{Value: n})
	}
	for _, n := range requiredMessages {
		if !seen[n] {
			conds = append(conds, Condition{Value: n})
		}
	}
	return conds
}

// Batches groups names into slices of at most size entries.
func Batches(names []string, size int) [][]string {
	if size <= 0 {
		size = MaxConditions
	}
	var out [][]string
	for len(names) > 0 {
		n := min(size, len(names))
		out = append(out, names[:n])
		names = names[n:]
	}
	return out
}

// Match reports whether a message name satisfies the condition, ignoring case.
func (c Condition) Match(name string) bool {
	if !c.Wildcard {
		return strings.EqualFold(c.Value, name)
	}
	return likeFold(strings.ToLower(c.Value), strings.ToLower(name))
}

// likeFold matches s against a pattern where '%' matches any run.
func likeFold(pattern, s string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(s, p)
		if i < 0 {
			return false
		}
		s = s[i+len(p):]
	}
	return strings.HasSuffix(s, last)
}

// MatchAny reports whether name satisfies one of the conditions. An empty
// condition list matches every name.
func MatchAny(conds []Condition, name string) bool {
	if len(conds) == 0 {
		return true
	}
	for _, c := range conds {
		if c.Match(name) {
			return true
		}
	}
	return false
}

// FetchXML renders the query as a fetch document. The first page carries
// no paging attributes; later pages carry the cookie (when present) and
// the page number.
func (q *Query) FetchXML() string {
	var b bytes.Buffer
	b.WriteString(`<fetch distinct='true' version='1.0'`)
	if q.Page > 1 || q.Cookie != "" {
		if q.Cookie != "" {
			b.WriteString(` paging-cookie='`)
			escape(&b, q.Cookie)
			b.WriteString(`'`)
		}
		b.WriteString(` page='`)
		b.WriteString(strconv.Itoa(q.Page))
		b.WriteString(`'`)
	}
	b.WriteString(`><entity name='sdkmessage'>`)
	b.WriteString(`<attribute name='name'/><attribute name='isprivate'/><attribute name='sdkmessageid'/><attribute name='customizationlevel'/>`)
	if len(q.Conditions) > 0 {
		b.WriteString(`<filter type='or'>`)
		for _, c := range q.Conditions {
			op := "eq"
			if c.Wildcard {
				op = "like"
			}
			b.WriteString(`<condition attribute='name' operator='` + op + `' value='`)
			escape(&b, c.Value)
			b.WriteString(`'/>`)
		}
		b.WriteString(`</filter>`)
	}
	switch q.Stage {
	case StageFilters:
		b.WriteString(`<link-entity name='sdkmessagefilter' alias='sdmessagefilter' to='sdkmessageid' from='sdkmessageid' link-type='inner'>`)
		b.WriteString(`<filter><condition alias='sdmessagefilter' attribute='isvisible' operator='eq' value='1'/></filter>`)
		b.WriteString(`<attribute name='sdkmessagefilterid'/><attribute name='primaryobjecttypecode'/><attribute name='secondaryobjecttypecode'/>`)
		b.WriteString(`</link-entity>`)
	default:
		b.WriteString(`<link-entity name='sdkmessagepair' alias='sdkmessagepair' to='sdkmessageid' from='sdkmessageid' link-type='inner'>`)
		b.WriteString(`<filter><condition alias='sdkmessagepair' attribute='endpoint' operator='eq' value='` + OrganizationEndpoint + `'/></filter>`)
		b.WriteString(`<attribute name='sdkmessagepairid'/><attribute name='namespace'/>`)
		b.WriteString(`<link-entity name='sdkmessagerequest' alias='sdkmessagerequest' to='sdkmessagepairid' from='sdkmessagepairid' link-type='outer'>`)
		b.WriteString(`<attribute name='sdkmessagerequestid'/><attribute name='name'/>`)
		b.WriteString(`<link-entity name='sdkmessagerequestfield' alias='sdkmessagerequestfield' to='sdkmessagerequestid' from='sdkmessagerequestid' link-type='outer'>`)
		b.WriteString(`<attribute name='name'/><attribute name='optional'/><attribute name='position'/><attribute name='publicname'/><attribute name='clrparser'/>`)
		b.WriteString(`<order attribute='sdkmessagerequestfieldid' descending='false'/>`)
		b.WriteString(`</link-entity>`)
		b.WriteString(`<link-entity name='sdkmessageresponse' alias='sdkmessageresponse' to='sdkmessagerequestid' from='sdkmessagerequestid' link-type='outer'>`)
		b.WriteString(`<attribute name='sdkmessageresponseid'/>`)
		b.WriteString(`<link-entity name='sdkmessageresponsefield' alias='sdkmessageresponsefield' to='sdkmessageresponseid' from='sdkmessageresponseid' link-type='outer'>`)
		b.WriteString(`<attribute name='publicname'/><attribute name='value'/><attribute name='clrformatter'/><attribute name='name'/><attribute name='position'/>`)
		b.WriteString(`</link-entity></link-entity></link-entity></link-entity>`)
	}
	b.WriteString(`<order attribute='sdkmessageid' descending='false'/></entity></fetch>`)
	return b.String()
}

func escape(b *bytes.Buffer, s string) {
	// EscapeText only fails when the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(b, []byte(s))
}
