package load

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder"
	"github.com/syssam/modelbuilder/metadata"
)

// Provider hands out the organization of a run. The first call to Load
// reads the source (or the cache); later calls return the same result.
type Provider struct {
	loader *Loader
	cache  modelbuilder.Cache
	key    string
	log    *zap.Logger

	once sync.Once
	org  *metadata.Organization
	err  error
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithCache stores the loaded organization in c under key, and reads it
// back from there on later runs.
func WithCache(c modelbuilder.Cache, key modelbuilder.CacheKey) ProviderOption {
	return func(p *Provider) {
		p.cache = c
		p.key = key.String()
	}
}

// NewProvider returns a Provider over ld.
func NewProvider(ld *Loader, opts ...ProviderOption) *Provider {
	p := &Provider{loader: ld, log: ld.log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the organization.
func (p *Provider) Load(ctx context.Context) (*metadata.Organization, error) {
	p.once.Do(func() {
		p.org, p.err = p.load(ctx)
	})
	return p.org, p.err
}

func (p *Provider) load(ctx context.Context) (*metadata.Organization, error) {
	if p.cache != nil {
		org, err := p.cached(ctx)
		switch {
		case err == nil:
			p.log.Info("metadata read from cache", zap.String("key", p.key))
			return org, nil
		case !errors.Is(err, modelbuilder.ErrCacheMiss):
			p.log.Warn("metadata cache unreadable", zap.String("key", p.key), zap.Error(err))
		}
	}
	org, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		data, err := EncodeDocument(org.Document())
		if err == nil {
			err = p.cache.Set(ctx, p.key, data)
		}
		if err != nil {
			p.log.Warn("metadata cache not written", zap.String("key", p.key), zap.Error(err))
		}
	}
	return org, nil
}

func (p *Provider) cached(ctx context.Context) (*metadata.Organization, error) {
	data, err := p.cache.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Organization(), nil
}

// EncodeDocument encodes a document in the msgpack snapshot format.
func EncodeDocument(doc *metadata.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDocument decodes a document written by EncodeDocument.
func DecodeDocument(data []byte) (*metadata.Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	doc := &metadata.Document{}
	if err := dec.Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
