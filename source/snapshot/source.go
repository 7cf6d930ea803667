package snapshot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/metadata"
)

// DefaultPageSize is the number of message rows served per page.
const DefaultPageSize = 5000

// Source serves a snapshot to the loader. Message rows are paged the way
// the metadata service pages them, so a snapshot goes through the same
// fold as a live organization.
type Source struct {
	doc      *metadata.Document
	pageSize int
}

var _ load.Source = (*Source)(nil)

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithPageSize sets the number of rows per page.
func WithPageSize(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New returns a source over doc.
func New(doc *metadata.Document, opts ...SourceOption) *Source {
	s := &Source{doc: doc, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a source over the snapshot at path.
func Open(path string, opts ...SourceOption) (*Source, error) {
	doc, err := Read(path)
	if err != nil {
		return nil, err
	}
	return New(doc, opts...), nil
}

// RetrieveEntities implements load.Source.
func (s *Source) RetrieveEntities(ctx context.Context, names []string) ([]*metadata.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return s.doc.Entities, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []*metadata.Entity
	for _, e := range s.doc.Entities {
		if want[e.LogicalName] {
			out = append(out, e)
		}
	}
	return out, nil
}

// RetrieveOptionSets implements load.Source. Only global sets are returned.
func (s *Source) RetrieveOptionSets(ctx context.Context) ([]*metadata.OptionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*metadata.OptionSet
	for _, os := range s.doc.OptionSets {
		if os.IsGlobal {
			out = append(out, os)
		}
	}
	return out, nil
}

// LanguageCode implements load.Source.
func (s *Source) LanguageCode(context.Context) (int, error) {
	return s.doc.LanguageCode, nil
}

// Fetch implements load.Source. The messages stage returns rows joined to
// a pair, the filters stage rows joined to a filter. The cookie of a page
// is the offset of the next one.
func (s *Source) Fetch(ctx context.Context, q *load.Query) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []*metadata.RowResult
	for _, r := range s.doc.Messages {
		if !inStage(r, q.Stage) {
			continue
		}
		if len(q.Conditions) > 0 && !load.MatchAny(q.Conditions, r.Name) {
			continue
		}
		rows = append(rows, r)
	}
	offset, err := pageOffset(q, s.pageSize)
	if err != nil {
		return nil, err
	}
	return Page(rows, offset, s.pageSize)
}

func inStage(r *metadata.RowResult, stage load.Stage) bool {
	if stage == load.StageFilters {
		return r.HasFilter()
	}
	return r.PairID != uuid.Nil
}

func pageOffset(q *load.Query, size int) (int, error) {
	if q.Cookie != "" {
		offset, err := strconv.Atoi(q.Cookie)
		if err != nil || offset < 0 {
			return 0, fmt.Errorf("snapshot: bad paging cookie %q", q.Cookie)
		}
		return offset, nil
	}
	if q.Page > 1 {
		return (q.Page - 1) * size, nil
	}
	return 0, nil
}

// Page encodes rows[offset:offset+size] as a result set envelope. The
// envelope reports more records when rows remain after the page.
func Page(rows []*metadata.RowResult, offset, size int) ([]byte, error) {
	rs := &metadata.ResultSet{}
	if offset < len(rows) {
		end := min(offset+size, len(rows))
		rs.Results = rows[offset:end]
		if end < len(rows) {
			rs.MoreRecords = 1
			rs.PagingCookie = strconv.Itoa(end)
		}
	}
	return metadata.EncodeResultSet(rs)
}
