package metadata

import (
	"github.com/google/uuid"
)

// Document is the serializable form of an Organization. The message graph
// is carried as the rows it was folded from, so that decoding a document
// folds them again into an identical graph.
type Document struct {
	LanguageCode int          `json:"languageCode" yaml:"languageCode"`
	Entities     []*Entity    `json:"entities,omitempty" yaml:"entities,omitempty"`
	OptionSets   []*OptionSet `json:"optionSets,omitempty" yaml:"optionSets,omitempty"`
	Messages     []*RowResult `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Document returns the serializable form of the organization.
func (o *Organization) Document() *Document {
	return &Document{
		LanguageCode: o.LanguageCode,
		Entities:     o.Entities,
		OptionSets:   o.OptionSets(),
		Messages:     o.Messages.Rows(),
	}
}

// Organization rebuilds the organization the document was taken from.
func (d *Document) Organization() *Organization {
	msgs := NewMessages()
	msgs.Fill(d.Messages...)
	o := NewOrganization(d.Entities, d.OptionSets, msgs)
	if d.LanguageCode != 0 {
		o.LanguageCode = d.LanguageCode
	}
	return o
}

// Rows flattens the graph into rows that fold back into the same graph,
// in the same order. Every message yields one bare row, followed by rows
// for its pairs, request fields, response fields and filters.
func (ms *Messages) Rows() []*RowResult {
	var rows []*RowResult
	for _, m := range ms.All() {
		base := RowResult{
			MessageID: m.ID,
			Name:      m.Name,
			IsPrivate: m.IsPrivate,
		}
		if m.IsCustomAction {
			base.CustomizationLevel = 1
		}
		head := base
		rows = append(rows, &head)
		for _, p := range m.Pairs() {
			pr := base
			pr.PairID, pr.PairNamespace = p.ID, p.Namespace
			if p.Request != nil {
				pr.RequestID, pr.RequestName = p.Request.ID, p.Request.Name
			}
			if p.Response != nil {
				pr.ResponseID = p.Response.ID
			}
			pairRow := pr
			rows = append(rows, &pairRow)
			if p.Request != nil {
				for _, f := range p.Request.Fields() {
					r := pr
					r.RequestFieldName = f.Name
					r.RequestFieldCLRParser = f.Formatter
					r.RequestFieldOptional = f.Optional
					r.RequestFieldPosition = intPtr(f.Index)
					rows = append(rows, &r)
				}
			}
			if p.Response != nil {
				for _, f := range p.Response.Fields() {
					r := pr
					r.ResponseFieldName = f.Name
					r.ResponseFieldCLRFormatter = f.Formatter
					r.ResponseFieldValue = f.Value
					r.ResponseFieldPosition = intPtr(f.Index)
					rows = append(rows, &r)
				}
			}
		}
		for _, f := range m.Filters() {
			r := base
			r.FilterID = f.ID
			r.PrimaryObjectTypeCode = f.PrimaryObjectTypeCode
			r.SecondaryObjectTypeCode = f.SecondaryObjectTypeCode
			rows = append(rows, &r)
		}
	}
	return rows
}

// HasFilter reports whether the row carries a message filter.
func (r *RowResult) HasFilter() bool {
	return r.FilterID != uuid.Nil
}

func intPtr(i int) *int { return &i }
