// Package load reads organization metadata from a Source and assembles it
// into a metadata.Organization.
package load

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder"
	"github.com/syssam/modelbuilder/metadata"
)

// Source is the transport boundary to the metadata service.
type Source interface {
	// RetrieveEntities returns the entities with the given logical names,
	// or every entity when names is empty.
	RetrieveEntities(ctx context.Context, names []string) ([]*metadata.Entity, error)
	// RetrieveOptionSets returns every global option set.
	RetrieveOptionSets(ctx context.Context) ([]*metadata.OptionSet, error)
	// Fetch returns one page envelope for the query.
	Fetch(ctx context.Context, q *Query) ([]byte, error)
	// LanguageCode returns the organization's default language code,
	// or zero when unknown.
	LanguageCode(ctx context.Context) (int, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithEntityNames restricts the entities read to the given logical names.
func WithEntityNames(names ...string) Option {
	return func(ld *Loader) { ld.entityNames = names }
}

// WithMessageNames restricts the messages read. Entries may contain '*'.
// A non-empty list turns message loading on.
func WithMessageNames(names ...string) Option {
	return func(ld *Loader) { ld.messageNames = names }
}

// WithMessages turns message loading on or off.
func WithMessages(on bool) Option {
	return func(ld *Loader) { ld.messages = on }
}

// WithLegacyMode reads messages and global option sets as older tool
// versions did.
func WithLegacyMode(on bool) Option {
	return func(ld *Loader) { ld.legacy = on }
}

// WithGlobalOptionSets turns global option set loading on.
func WithGlobalOptionSets(on bool) Option {
	return func(ld *Loader) { ld.globalOptionSets = on }
}

// WithLanguageCode fixes the label language instead of asking the source.
func WithLanguageCode(code int) Option {
	return func(ld *Loader) { ld.language = code }
}

// Loader assembles an Organization from a Source.
type Loader struct {
	src              Source
	log              *zap.Logger
	entityNames      []string
	messageNames     []string
	messages         bool
	legacy           bool
	globalOptionSets bool
	language         int
}

// New returns a Loader reading from src.
func New(src Source, opts ...Option) *Loader {
	ld := &Loader{src: src, log: zap.NewNop()}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the assembled organization. Any source or decode failure
// aborts the whole load and is returned as a *modelbuilder.LoadError or
// *modelbuilder.PagingError.
func (ld *Loader) Load(ctx context.Context) (*metadata.Organization, error) {
	return ld.load(ctx)
}

// MessagesEnabled reports whether the loader reads messages.
func (ld *Loader) MessagesEnabled() bool {
	return ld.messages || ld.legacy || len(ld.messageNames) > 0
}

func (ld *Loader) load(ctx context.Context) (*metadata.Organization, error) {
	start := time.Now()
	ld.log.Info("reading metadata")

	step := time.Now()
	entities, err := ld.entities(ctx)
	if err != nil {
		return nil, err
	}
	ld.log.Info("read entities", zap.Int("count", len(entities)), zap.Duration("elapsed", time.Since(step)))

	step = time.Now()
	var optionSets []*metadata.OptionSet
	if ld.legacy || ld.globalOptionSets {
		if optionSets, err = ld.src.RetrieveOptionSets(ctx); err != nil {
			return nil, modelbuilder.NewLoadError("optionsets", 0, err)
		}
	}
	ld.log.Info("read global option sets", zap.Int("count", len(optionSets)), zap.Duration("elapsed", time.Since(step)))

	step = time.Now()
	msgs := metadata.NewMessages()
	if ld.MessagesEnabled() {
		conds := MessageConditions(ld.messageNames)
		for _, stage := range []Stage{StageMessages, StageFilters} {
			if err := ld.fetchAll(ctx, stage, conds, msgs); err != nil {
				return nil, err
			}
		}
	}
	ld.log.Info("read messages", zap.Int("count", msgs.Len()), zap.Duration("elapsed", time.Since(step)))

	org := metadata.NewOrganization(entities, optionSets, msgs)
	org.LanguageCode = ld.language
	if org.LanguageCode == 0 {
		code, err := ld.src.LanguageCode(ctx)
		if err != nil {
			return nil, modelbuilder.NewLoadError("language", 0, err)
		}
		org.LanguageCode = code
	}
	if org.LanguageCode <= 1000 {
		org.LanguageCode = metadata.DefaultLanguageCode
	}
	ld.log.Info("completed reading metadata", zap.Duration("elapsed", time.Since(start)))
	return org, nil
}

func (ld *Loader) entities(ctx context.Context) ([]*metadata.Entity, error) {
	if len(ld.entityNames) == 0 {
		entities, err := ld.src.RetrieveEntities(ctx, nil)
		if err != nil {
			return nil, modelbuilder.NewLoadError("entities", 0, err)
		}
		return entities, nil
	}
	var entities []*metadata.Entity
	for i, batch := range Batches(ld.entityNames, MaxConditions) {
		part, err := ld.src.RetrieveEntities(ctx, batch)
		if err != nil {
			return nil, modelbuilder.NewLoadError("entities", i+1, err)
		}
		entities = append(entities, part...)
	}
	return entities, nil
}

// fetchAll pages through one stage until the source reports no more
// records, folding every page into msgs in page order.
func (ld *Loader) fetchAll(ctx context.Context, stage Stage, conds []Condition, msgs *metadata.Messages) error {
	var paging *metadata.PagingInfo
	for page := 1; paging == nil || paging.HasMore; page++ {
		q := &Query{Stage: stage, Conditions: conds, Page: page}
		if paging != nil {
			q.Cookie = paging.Cookie
		}
		data, err := ld.src.Fetch(ctx, q)
		if err != nil {
			return modelbuilder.NewLoadError(string(stage), page, err)
		}
		rs, err := metadata.DecodeResultSet(data)
		if err != nil {
			return modelbuilder.NewPagingError(page, err)
		}
		msgs.Fill(rs.Results...)
		paging = rs.Paging()
		ld.log.Debug("folded page",
			zap.String("stage", string(stage)),
			zap.Int("page", page),
			zap.Int("rows", len(rs.Results)),
			zap.Bool("more", paging.HasMore),
		)
	}
	return nil
}
