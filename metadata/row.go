package metadata

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RowResult is one denormalized row of the message query. A row joins a
// message with at most one pair, request, request field, response,
// response field and filter. A sub-entity is absent from the join when its
// identifier is uuid.Nil (or, for fields, when the position is nil).
type RowResult struct {
	MessageID          uuid.UUID `xml:"sdkmessageid" json:"sdkmessageid"`
	Name               string    `xml:"name" json:"name"`
	IsPrivate          bool      `xml:"isprivate" json:"isprivate"`
	CustomizationLevel int       `xml:"customizationlevel" json:"customizationlevel"`

	PairID        uuid.UUID `xml:"sdkmessagepair.sdkmessagepairid" json:"sdkmessagepairid"`
	PairNamespace string    `xml:"sdkmessagepair.namespace" json:"namespace"`

	RequestID   uuid.UUID `xml:"sdkmessagerequest.sdkmessagerequestid" json:"sdkmessagerequestid"`
	RequestName string    `xml:"sdkmessagerequest.name" json:"requestname"`

	RequestFieldName      string `xml:"sdkmessagerequestfield.name" json:"requestfieldname"`
	RequestFieldOptional  bool   `xml:"sdkmessagerequestfield.optional" json:"requestfieldoptional"`
	RequestFieldParser    string `xml:"sdkmessagerequestfield.parser" json:"requestfieldparser"`
	RequestFieldCLRParser string `xml:"sdkmessagerequestfield.clrparser" json:"requestfieldclrparser"`
	RequestFieldPosition  *int   `xml:"sdkmessagerequestfield.position" json:"requestfieldposition"`

	ResponseID uuid.UUID `xml:"sdkmessageresponse.sdkmessageresponseid" json:"sdkmessageresponseid"`

	ResponseFieldValue        string `xml:"sdkmessageresponsefield.value" json:"responsefieldvalue"`
	ResponseFieldFormatter    string `xml:"sdkmessageresponsefield.formatter" json:"responsefieldformatter"`
	ResponseFieldCLRFormatter string `xml:"sdkmessageresponsefield.clrformatter" json:"responsefieldclrformatter"`
	ResponseFieldName         string `xml:"sdkmessageresponsefield.name" json:"responsefieldname"`
	ResponseFieldPosition     *int   `xml:"sdkmessageresponsefield.position" json:"responsefieldposition"`

	FilterID                uuid.UUID `xml:"sdmessagefilter.sdkmessagefilterid" json:"sdkmessagefilterid"`
	PrimaryObjectTypeCode   int       `xml:"sdmessagefilter.primaryobjecttypecode" json:"primaryobjecttypecode"`
	SecondaryObjectTypeCode int       `xml:"sdmessagefilter.secondaryobjecttypecode" json:"secondaryobjecttypecode"`
}

// ResultSet is one page of the message query as returned by the source.
type ResultSet struct {
	XMLName      xml.Name     `xml:"resultset"`
	Results      []*RowResult `xml:"result"`
	PagingCookie string       `xml:"paging-cookie,attr"`
	MoreRecords  int          `xml:"morerecords,attr"`
}

// PagingInfo is the continuation state carried by a page.
type PagingInfo struct {
	Cookie  string
	HasMore bool
}

// Paging returns the continuation state of the result set.
func (rs *ResultSet) Paging() *PagingInfo {
	return &PagingInfo{
		Cookie:  rs.PagingCookie,
		HasMore: rs.MoreRecords != 0,
	}
}

// DecodeResultSet decodes one page envelope. Any decode failure is returned
// as-is; callers treat it as fatal for the load phase.
func DecodeResultSet(data []byte) (*ResultSet, error) {
	rs := &ResultSet{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// EncodeResultSet renders a result set in the envelope format accepted
// by DecodeResultSet. Sources that read rows from elsewhere use it to
// hand pages to the loader in the common format.
func EncodeResultSet(rs *ResultSet) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`<resultset morerecords="`)
	b.WriteString(strconv.Itoa(rs.MoreRecords))
	b.WriteString(`"`)
	if rs.PagingCookie != "" {
		b.WriteString(` paging-cookie="`)
		if err := xml.EscapeText(&b, []byte(rs.PagingCookie)); err != nil {
			return nil, err
		}
		b.WriteString(`"`)
	}
	b.WriteString(">")
	for _, r := range rs.Results {
		b.WriteString("<result>")
		for _, el := range r.elements() {
			b.WriteString("<" + el[0] + ">")
			if err := xml.EscapeText(&b, []byte(el[1])); err != nil {
				return nil, err
			}
			b.WriteString("</" + el[0] + ">")
		}
		b.WriteString("</result>")
	}
	b.WriteString("</resultset>")
	return b.Bytes(), nil
}

// elements lists the non-empty columns of the row as (element, text) pairs.
func (r *RowResult) elements() [][2]string {
	var els [][2]string
	add := func(name, value string) {
		if strings.TrimSpace(value) != "" {
			els = append(els, [2]string{name, value})
		}
	}
	id := func(name string, v uuid.UUID) {
		if v != uuid.Nil {
			add(name, v.String())
		}
	}
	flag := func(name string, v bool) {
		if v {
			add(name, "1")
		} else {
			add(name, "0")
		}
	}
	pos := func(name string, v *int) {
		if v != nil {
			add(name, strconv.Itoa(*v))
		}
	}
	add("name", r.Name)
	flag("isprivate", r.IsPrivate)
	add("customizationlevel", strconv.Itoa(r.CustomizationLevel))
	id("sdkmessageid", r.MessageID)
	id("sdkmessagepair.sdkmessagepairid", r.PairID)
	add("sdkmessagepair.namespace", r.PairNamespace)
	id("sdkmessagerequest.sdkmessagerequestid", r.RequestID)
	add("sdkmessagerequest.name", r.RequestName)
	add("sdkmessagerequestfield.name", r.RequestFieldName)
	if r.RequestFieldPosition != nil {
		flag("sdkmessagerequestfield.optional", r.RequestFieldOptional)
	}
	add("sdkmessagerequestfield.parser", r.RequestFieldParser)
	add("sdkmessagerequestfield.clrparser", r.RequestFieldCLRParser)
	pos("sdkmessagerequestfield.position", r.RequestFieldPosition)
	id("sdkmessageresponse.sdkmessageresponseid", r.ResponseID)
	add("sdkmessageresponsefield.value", r.ResponseFieldValue)
	add("sdkmessageresponsefield.formatter", r.ResponseFieldFormatter)
	add("sdkmessageresponsefield.clrformatter", r.ResponseFieldCLRFormatter)
	add("sdkmessageresponsefield.name", r.ResponseFieldName)
	pos("sdkmessageresponsefield.position", r.ResponseFieldPosition)
	id("sdmessagefilter.sdkmessagefilterid", r.FilterID)
	if r.FilterID != uuid.Nil {
		add("sdmessagefilter.primaryobjecttypecode", strconv.Itoa(r.PrimaryObjectTypeCode))
		add("sdmessagefilter.secondaryobjecttypecode", strconv.Itoa(r.SecondaryObjectTypeCode))
	}
	return els
}
