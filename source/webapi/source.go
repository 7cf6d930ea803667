package webapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/metadata"
)

var _ load.Source = (*Client)(nil)

// RetrieveEntities implements load.Source.
func (c *Client) RetrieveEntities(ctx context.Context, names []string) ([]*metadata.Entity, error) {
	var q url.Values
	if len(names) > 0 {
		q = url.Values{"name": names}
	}
	var entities []*metadata.Entity
	if err := c.getJSON(ctx, "entities", q, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// RetrieveOptionSets implements load.Source.
func (c *Client) RetrieveOptionSets(ctx context.Context) ([]*metadata.OptionSet, error) {
	var sets []*metadata.OptionSet
	if err := c.getJSON(ctx, "optionsets", nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

type organization struct {
	LanguageCode int `json:"languageCode"`
}

// LanguageCode implements load.Source.
func (c *Client) LanguageCode(ctx context.Context) (int, error) {
	var org organization
	if err := c.getJSON(ctx, "organization", nil, &org); err != nil {
		return 0, err
	}
	return org.LanguageCode, nil
}

// Fetch implements load.Source. The envelope is returned undecoded.
func (c *Client) Fetch(ctx context.Context, q *load.Query) ([]byte, error) {
	return c.do(ctx, http.MethodPost, "fetch", "application/xml", nil, []byte(q.FetchXML()))
}
