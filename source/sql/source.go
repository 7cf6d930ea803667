// Package sql reads organization metadata from a relational mirror.
//
// The mirror is a set of plain tables (see CreateSchema) holding entities,
// attributes, option sets, relationships, labels and the denormalized
// message rows. It can be filled from any organization with Store, and
// read back through the same paged fold the loader applies to a live
// metadata service.
package sql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/metadata"
)

// DefaultPageSize is the number of message rows served per page.
const DefaultPageSize = 5000

// Source is a load.Source over a mirror database.
type Source struct {
	db       *sqlx.DB
	flavor   sqlbuilder.Flavor
	prefix   string
	pageSize int
	slow     time.Duration
	log      *zap.Logger
	stats    QueryStats
}

var _ load.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithTablePrefix sets the prefix of the mirror tables.
func WithTablePrefix(prefix string) Option {
	return func(s *Source) { s.prefix = prefix }
}

// WithPageSize sets the number of message rows per page.
func WithPageSize(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSlowThreshold logs statements running at least d at warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(s *Source) { s.slow = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a source over db. The query flavor follows the driver name.
func New(db *sqlx.DB, opts ...Option) *Source {
	s := &Source{
		db:       db,
		flavor:   Flavor(db.DriverName()),
		prefix:   DefaultTablePrefix,
		pageSize: DefaultPageSize,
		slow:     time.Second,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a mirror database with a registered driver.
func Open(driver, dsn string, opts ...Option) (*Source, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql source: open %s: %w", driver, err)
	}
	return New(db, opts...), nil
}

// Flavor returns the SQL flavor for a driver name. Wrapped drivers are
// recognized by prefix; unknown drivers use the MySQL flavor.
func Flavor(driver string) sqlbuilder.Flavor {
	switch d := strings.ToLower(driver); {
	case strings.HasPrefix(d, "postgres"), strings.HasPrefix(d, "pgx"):
		return sqlbuilder.PostgreSQL
	case strings.HasPrefix(d, "sqlite"):
		return sqlbuilder.SQLite
	}
	return sqlbuilder.MySQL
}

// DB returns the underlying database.
func (s *Source) DB() *sqlx.DB { return s.db }

// Close closes the database.
func (s *Source) Close() error { return s.db.Close() }

// Stats returns the statement counts so far.
func (s *Source) Stats() StatsSnapshot { return s.stats.Snapshot() }

// CreateSchema creates the mirror tables.
func (s *Source) CreateSchema(ctx context.Context) error {
	return CreateSchema(ctx, s.db, s.prefix)
}

func (s *Source) table(name string) string { return s.prefix + name }

func (s *Source) observe(query string, exec bool, d time.Duration, err error) {
	s.stats.record(exec, d, s.slow, err)
	if s.slow > 0 && d >= s.slow {
		s.log.Warn("slow query", zap.String("query", query), zap.Duration("elapsed", d))
	} else {
		s.log.Debug("query", zap.String("query", query), zap.Duration("elapsed", d), zap.Error(err))
	}
}

func (s *Source) selectRows(ctx context.Context, dest any, sb *sqlbuilder.SelectBuilder) error {
	query, args := sb.Build()
	start := time.Now()
	err := s.db.SelectContext(ctx, dest, query, args...)
	s.observe(query, false, time.Since(start), err)
	return err
}

func anys[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// RetrieveEntities implements load.Source.
func (s *Source) RetrieveEntities(ctx context.Context, names []string) ([]*metadata.Entity, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(entityColumns...).From(s.table(tableEntity))
	if len(names) > 0 {
		sb.Where(sb.In("logicalname", anys(names)...))
	}
	sb.OrderBy("logicalname").Asc()
	var rows []entityRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("sql source: entities: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ls, err := s.labels(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]*metadata.Entity, 0, len(rows))
	byName := make(map[string]*metadata.Entity, len(rows))
	for i := range rows {
		e := rows[i].entity()
		e.Description = ls.get(e.MetadataID.String(), fieldDescription)
		entities = append(entities, e)
		byName[e.LogicalName] = e
	}
	if err := s.attributes(ctx, names, byName, ls); err != nil {
		return nil, err
	}
	if err := s.relationships(ctx, names, byName); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *Source) attributes(ctx context.Context, names []string, byName map[string]*metadata.Entity, ls labels) error {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(attributeColumns...).From(s.table(tableAttribute))
	if len(names) > 0 {
		sb.Where(sb.In("entity", anys(names)...))
	}
	sb.OrderBy("entity", "position").Asc()
	var rows []attributeRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return fmt.Errorf("sql source: attributes: %w", err)
	}

	var setIDs []string
	for _, r := range rows {
		if r.OptionSet != "" {
			setIDs = append(setIDs, r.OptionSet)
		}
	}
	sets, err := s.optionSets(ctx, ls, func(sb *sqlbuilder.SelectBuilder) bool {
		if len(setIDs) == 0 {
			return false
		}
		sb.Where(sb.In("metadataid", anys(setIDs)...))
		return true
	})
	if err != nil {
		return err
	}
	byID := make(map[string]*metadata.OptionSet, len(sets))
	for _, os := range sets {
		byID[os.MetadataID.String()] = os
	}

	for i := range rows {
		e := byName[rows[i].Entity]
		if e == nil {
			continue
		}
		a := rows[i].attribute()
		a.Description = ls.get(a.MetadataID.String(), fieldDescription)
		if rows[i].OptionSet != "" {
			a.OptionSet = byID[rows[i].OptionSet]
		}
		e.Attributes = append(e.Attributes, a)
	}
	return nil
}

func (s *Source) relationships(ctx context.Context, names []string, byName map[string]*metadata.Entity) error {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(relationshipColumns...).From(s.table(tableRelationship))
	if len(names) > 0 {
		in := anys(names)
		sb.Where(sb.Or(
			sb.In("referencedentity", in...),
			sb.In("referencingentity", in...),
			sb.In("entity1", in...),
			sb.In("entity2", in...),
		))
	}
	sb.OrderBy("schemaname").Asc()
	var rows []relationshipRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return fmt.Errorf("sql source: relationships: %w", err)
	}
	for _, r := range rows {
		switch r.Kind {
		case kindOneToMany:
			rel := &metadata.OneToManyRelationship{
				MetadataID:           r.MetadataID,
				SchemaName:           r.SchemaName,
				ReferencedEntity:     r.ReferencedEntity,
				ReferencedAttribute:  r.ReferencedAttribute,
				ReferencingEntity:    r.ReferencingEntity,
				ReferencingAttribute: r.ReferencingAttribute,
			}
			if e := byName[rel.ReferencedEntity]; e != nil {
				e.OneToMany = append(e.OneToMany, rel)
			}
			if e := byName[rel.ReferencingEntity]; e != nil {
				e.ManyToOne = append(e.ManyToOne, rel)
			}
		case kindManyToMany:
			rel := &metadata.ManyToManyRelationship{
				MetadataID:                r.MetadataID,
				SchemaName:                r.SchemaName,
				Entity1LogicalName:        r.Entity1,
				Entity1IntersectAttribute: r.Entity1Attribute,
				Entity2LogicalName:        r.Entity2,
				Entity2IntersectAttribute: r.Entity2Attribute,
				IntersectEntityName:       r.IntersectEntity,
			}
			if e := byName[rel.Entity1LogicalName]; e != nil {
				e.ManyToMany = append(e.ManyToMany, rel)
			}
			if e := byName[rel.Entity2LogicalName]; e != nil && !rel.IsReflexive() {
				e.ManyToMany = append(e.ManyToMany, rel)
			}
		default:
			s.log.Warn("unknown relationship kind", zap.String("kind", r.Kind), zap.String("relationship", r.SchemaName))
		}
	}
	return nil
}

// RetrieveOptionSets implements load.Source.
func (s *Source) RetrieveOptionSets(ctx context.Context) ([]*metadata.OptionSet, error) {
	ls, err := s.labels(ctx)
	if err != nil {
		return nil, err
	}
	return s.optionSets(ctx, ls, func(sb *sqlbuilder.SelectBuilder) bool {
		sb.Where(sb.Equal("isglobal", true))
		return true
	})
}

// optionSets reads the option sets selected by where, with their options.
// Nothing is read when where reports false.
func (s *Source) optionSets(ctx context.Context, ls labels, where func(*sqlbuilder.SelectBuilder) bool) ([]*metadata.OptionSet, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(optionSetColumns...).From(s.table(tableOptionSet))
	if !where(sb) {
		return nil, nil
	}
	sb.OrderBy("name").Asc()
	var rows []optionSetRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("sql source: option sets: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	sets := make([]*metadata.OptionSet, 0, len(rows))
	byID := make(map[uuid.UUID]*metadata.OptionSet, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		os := &metadata.OptionSet{
			MetadataID:  r.MetadataID,
			Name:        r.Name,
			Type:        metadata.OptionSetType(r.Type),
			IsGlobal:    r.IsGlobal,
			DisplayName: ls.get(r.MetadataID.String(), fieldDisplayName),
			Description: ls.get(r.MetadataID.String(), fieldDescription),
		}
		sets = append(sets, os)
		byID[os.MetadataID] = os
		ids = append(ids, os.MetadataID.String())
	}

	ob := s.flavor.NewSelectBuilder()
	ob.Select(optionColumns...).From(s.table(tableOption))
	ob.Where(ob.In("optionset", anys(ids)...))
	ob.OrderBy("optionset", "position").Asc()
	var opts []optionRow
	if err := s.selectRows(ctx, &opts, ob); err != nil {
		return nil, fmt.Errorf("sql source: options: %w", err)
	}
	for _, r := range opts {
		os := byID[r.OptionSet]
		if os == nil {
			continue
		}
		owner := optionOwner(r.OptionSet, r.Value)
		os.Options = append(os.Options, &metadata.Option{
			Value:         r.Value,
			InvariantName: r.InvariantName,
			Label:         ls.get(owner, fieldLabel),
			Description:   ls.get(owner, fieldDescription),
		})
	}
	return sets, nil
}

func (s *Source) labels(ctx context.Context) (labels, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select(labelColumns...).From(s.table(tableLabel))
	sb.OrderBy("owner", "field", "languagecode").Asc()
	var rows []labelRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("sql source: labels: %w", err)
	}
	ls := make(labels, len(rows))
	for _, r := range rows {
		ls.add(r)
	}
	return ls, nil
}

// LanguageCode implements load.Source. An empty organization table
// reports zero.
func (s *Source) LanguageCode(ctx context.Context) (int, error) {
	sb := s.flavor.NewSelectBuilder()
	sb.Select("languagecode").From(s.table(tableOrganization)).Limit(1)
	var codes []int
	if err := s.selectRows(ctx, &codes, sb); err != nil {
		return 0, fmt.Errorf("sql source: language: %w", err)
	}
	if len(codes) == 0 {
		return 0, nil
	}
	return codes[0], nil
}

// Fetch implements load.Source. Rows are read in stored order; the cookie
// of a page is the offset of the next one.
func (s *Source) Fetch(ctx context.Context, q *load.Query) ([]byte, error) {
	offset := 0
	switch {
	case q.Cookie != "":
		n, err := strconv.Atoi(q.Cookie)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("sql source: bad paging cookie %q", q.Cookie)
		}
		offset = n
	case q.Page > 1:
		offset = (q.Page - 1) * s.pageSize
	}

	sb := s.flavor.NewSelectBuilder()
	sb.Select(messageColumns...).From(s.table(tableMessageRow))
	nilID := uuid.Nil.String()
	if q.Stage == load.StageFilters {
		sb.Where(sb.NotEqual("filterid", nilID))
	} else {
		sb.Where(sb.NotEqual("pairid", nilID))
	}
	if len(q.Conditions) > 0 {
		conds := make([]string, 0, len(q.Conditions))
		for _, c := range q.Conditions {
			if c.Wildcard {
				conds = append(conds, sb.Like("name", c.Value))
			} else {
				conds = append(conds, sb.Equal("name", c.Value))
			}
		}
		sb.Where(sb.Or(conds...))
	}
	sb.OrderBy("position").Asc()
	sb.Limit(s.pageSize + 1).Offset(offset)

	var rows []messageRow
	if err := s.selectRows(ctx, &rows, sb); err != nil {
		return nil, fmt.Errorf("sql source: %s: %w", q.Stage, err)
	}
	rs := &metadata.ResultSet{}
	if len(rows) > s.pageSize {
		rows = rows[:s.pageSize]
		rs.MoreRecords = 1
		rs.PagingCookie = strconv.Itoa(offset + s.pageSize)
	}
	for i := range rows {
		rs.Results = append(rs.Results, &rows[i].RowResult)
	}
	return metadata.EncodeResultSet(rs)
}
