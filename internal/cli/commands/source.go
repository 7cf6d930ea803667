package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	// Mirror drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder"
	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/source/snapshot"
	sqlsrc "github.com/syssam/modelbuilder/source/sql"
	"github.com/syssam/modelbuilder/source/webapi"
)

// Source kinds.
const (
	SourceSnapshot = "snapshot"
	SourceSQL      = "sql"
	SourceWebAPI   = "webapi"
)

// openedSource is a metadata source and what identifies it in the cache.
type openedSource struct {
	load.Source
	name  string
	close func() error
}

func (o *openedSource) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// openSource opens the source selected by s.
func openSource(s SourceSettings, log *zap.Logger) (*openedSource, error) {
	switch kind := strings.ToLower(s.Kind); kind {
	case SourceSnapshot:
		if s.Snapshot == "" {
			return nil, fmt.Errorf("source %s: --snapshot is required", kind)
		}
		src, err := snapshot.Open(s.Snapshot)
		if err != nil {
			return nil, err
		}
		path, err := filepath.Abs(s.Snapshot)
		if err != nil {
			path = s.Snapshot
		}
		return &openedSource{Source: src, name: kind + ":" + path}, nil
	case SourceSQL:
		if s.SQLDriver == "" || s.SQLDSN == "" {
			return nil, fmt.Errorf("source %s: --sql-driver and --sql-dsn are required", kind)
		}
		src, err := sqlsrc.Open(s.SQLDriver, s.SQLDSN, sqlsrc.WithTablePrefix(s.SQLPrefix), sqlsrc.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return &openedSource{Source: src, name: kind + ":" + s.SQLDriver + ":" + s.SQLDSN, close: src.Close}, nil
	case SourceWebAPI:
		if s.URL == "" {
			return nil, fmt.Errorf("source %s: --url is required", kind)
		}
		retries := s.Retries
		if retries < 0 {
			retries = 0
		}
		c, err := webapi.New(s.URL, webapi.WithToken(s.Token), webapi.WithRetry(uint64(retries), 0), webapi.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return &openedSource{Source: c, name: kind + ":" + s.URL}, nil
	default:
		return nil, fmt.Errorf("unknown source %q; use %s, %s or %s", s.Kind, SourceSnapshot, SourceSQL, SourceWebAPI)
	}
}

// cacheKey identifies the snapshot a run over src with cfg reads.
func cacheKey(src *openedSource, cfg *gen.Config) modelbuilder.CacheKey {
	key := modelbuilder.CacheKey{
		Source:   src.name,
		Entities: cfg.EntityNamesFilter,
		Global:   cfg.GenerateGlobalOptionSets || cfg.LegacyMode,
	}
	if cfg.MessagesEnabled() {
		key.Messages = "messages=" + cfg.MessageNamesFilter
	}
	return key
}

// newProvider returns the memoizing loader of a run, cached below
// cacheDir when set.
func newProvider(src *openedSource, cfg *gen.Config, cacheDir string, log *zap.Logger) *load.Provider {
	ld := load.New(src, loaderOptions(cfg, log)...)
	var opts []load.ProviderOption
	if cacheDir != "" {
		opts = append(opts, load.WithCache(snapshot.NewCache(cacheDir), cacheKey(src, cfg)))
	}
	return load.NewProvider(ld, opts...)
}
