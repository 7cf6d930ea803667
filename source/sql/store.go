package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/metadata"
)

// insertBatch bounds the rows of one insert statement.
const insertBatch = 50

// Store replaces the content of the mirror with doc, in one transaction.
func (s *Source) Store(ctx context.Context, doc *metadata.Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql source: begin: %w", err)
	}
	if err := s.store(ctx, tx, doc); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql source: commit: %w", err)
	}
	s.log.Info("metadata mirrored",
		zap.Int("entities", len(doc.Entities)),
		zap.Int("optionSets", len(doc.OptionSets)),
		zap.Int("messageRows", len(doc.Messages)))
	return nil
}

func (s *Source) store(ctx context.Context, tx *sqlx.Tx, doc *metadata.Document) error {
	for _, t := range tables {
		db := s.flavor.NewDeleteBuilder()
		db.DeleteFrom(s.table(t))
		query, args := db.Build()
		if err := s.exec(ctx, tx, query, args); err != nil {
			return fmt.Errorf("sql source: clear %s: %w", t, err)
		}
	}

	var entities, attributes, sets, options, relationships, ls, messages [][]any
	seenSets := make(map[string]bool)
	seenRels := make(map[string]bool)
	label := func(owner, field string, l metadata.Label) {
		for _, ll := range l.LocalizedLabels {
			ls = append(ls, []any{owner, field, ll.LanguageCode, ll.Label})
		}
	}
	addSet := func(os *metadata.OptionSet) {
		id := os.MetadataID.String()
		if seenSets[id] {
			return
		}
		seenSets[id] = true
		sets = append(sets, []any{id, os.Name, string(os.Type), os.IsGlobal})
		label(id, fieldDisplayName, os.DisplayName)
		label(id, fieldDescription, os.Description)
		for i, o := range os.Options {
			options = append(options, []any{id, i, o.Value, o.InvariantName})
			owner := optionOwner(os.MetadataID, o.Value)
			label(owner, fieldLabel, o.Label)
			label(owner, fieldDescription, o.Description)
		}
	}
	addRel := func(id string, values ...any) {
		if !seenRels[id] {
			seenRels[id] = true
			relationships = append(relationships, append([]any{id}, values...))
		}
	}

	for _, os := range doc.OptionSets {
		addSet(os)
	}
	for _, e := range doc.Entities {
		entities = append(entities, entityValues(e))
		label(e.MetadataID.String(), fieldDescription, e.Description)
		for i, a := range e.Attributes {
			attributes = append(attributes, attributeValues(e, i, a))
			label(a.MetadataID.String(), fieldDescription, a.Description)
			if a.OptionSet != nil {
				addSet(a.OptionSet)
			}
		}
		for _, r := range append(append([]*metadata.OneToManyRelationship{}, e.OneToMany...), e.ManyToOne...) {
			addRel(r.MetadataID.String(), kindOneToMany, r.SchemaName,
				r.ReferencedEntity, r.ReferencedAttribute, r.ReferencingEntity, r.ReferencingAttribute,
				"", "", "", "", "")
		}
		for _, r := range e.ManyToMany {
			addRel(r.MetadataID.String(), kindManyToMany, r.SchemaName, "", "", "", "",
				r.Entity1LogicalName, r.Entity1IntersectAttribute, r.Entity2LogicalName, r.Entity2IntersectAttribute,
				r.IntersectEntityName)
		}
	}
	for i, r := range doc.Messages {
		messages = append(messages, messageValues(i, r))
	}

	inserts := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{tableOrganization, []string{"languagecode"}, [][]any{{doc.LanguageCode}}},
		{tableEntity, entityColumns, entities},
		{tableAttribute, attributeColumns, attributes},
		{tableOptionSet, optionSetColumns, sets},
		{tableOption, optionColumns, options},
		{tableRelationship, relationshipColumns, relationships},
		{tableLabel, labelColumns, ls},
		{tableMessageRow, messageColumns, messages},
	}
	for _, in := range inserts {
		if err := s.insert(ctx, tx, in.table, in.columns, in.rows); err != nil {
			return fmt.Errorf("sql source: insert %s: %w", in.table, err)
		}
	}
	return nil
}

func (s *Source) insert(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) error {
	for len(rows) > 0 {
		n := min(insertBatch, len(rows))
		ib := s.flavor.NewInsertBuilder()
		ib.InsertInto(s.table(table)).Cols(columns...)
		for _, r := range rows[:n] {
			ib.Values(r...)
		}
		query, args := ib.Build()
		if err := s.exec(ctx, tx, query, args); err != nil {
			return err
		}
		rows = rows[n:]
	}
	return nil
}

func (s *Source) exec(ctx context.Context, tx *sqlx.Tx, query string, args []any) error {
	start := time.Now()
	_, err := tx.ExecContext(ctx, query, args...)
	s.observe(query, true, time.Since(start), err)
	return err
}
