package metadata

import (
	"github.com/google/uuid"
)

// EntityFormatter is the formatter type name of a field carrying a full
// entity record. A request field with this formatter is generic when its
// message applies to more than one entity type.
const EntityFormatter = "Microsoft.Xrm.Sdk.Entity,Microsoft.Xrm.Sdk"

// keyed is an insertion-ordered collection with unique keys.
type keyed[K comparable, V any] struct {
	keys []K
	m    map[K]V
}

func (c *keyed[K, V]) get(k K) (V, bool) {
	v, ok := c.m[k]
	return v, ok
}

// upsert returns the value at k, creating it with create when absent.
func (c *keyed[K, V]) upsert(k K, create func() V) V {
	if v, ok := c.m[k]; ok {
		return v
	}
	if c.m == nil {
		c.m = make(map[K]V)
	}
	v := create()
	c.m[k] = v
	c.keys = append(c.keys, k)
	return v
}

func (c *keyed[K, V]) len() int { return len(c.keys) }

func (c *keyed[K, V]) values() []V {
	vs := make([]V, 0, len(c.keys))
	for _, k := range c.keys {
		vs = append(vs, c.m[k])
	}
	return vs
}

// Messages is the message graph: every message keyed by id, in the order
// the first row referencing each message was folded.
type Messages struct {
	messages keyed[uuid.UUID, *Message]
}

// NewMessages returns an empty message graph.
func NewMessages() *Messages {
	return &Messages{}
}

// Fill folds rows into the graph in order. Rows without a message id are
// ignored. Folding the same row twice leaves the graph unchanged.
func (ms *Messages) Fill(rows ...*RowResult) {
	for _, r := range rows {
		if r == nil || r.MessageID == uuid.Nil {
			continue
		}
		m := ms.messages.upsert(r.MessageID, func() *Message {
			return &Message{
				ID:             r.MessageID,
				Name:           r.Name,
				IsPrivate:      r.IsPrivate,
				IsCustomAction: r.CustomizationLevel != 0,
			}
		})
		m.fill(r)
	}
}

// Get returns the message with the given id.
func (ms *Messages) Get(id uuid.UUID) (*Message, bool) {
	return ms.messages.get(id)
}

// Len returns the number of messages.
func (ms *Messages) Len() int { return ms.messages.len() }

// All returns the messages in fold order.
func (ms *Messages) All() []*Message { return ms.messages.values() }

// Message is a named remote operation.
type Message struct {
	ID             uuid.UUID
	Name           string
	IsPrivate      bool
	IsCustomAction bool

	pairs   keyed[uuid.UUID, *Pair]
	filters keyed[uuid.UUID, *Filter]
}

func (m *Message) fill(r *RowResult) {
	if r.PairID != uuid.Nil {
		p := m.pairs.upsert(r.PairID, func() *Pair {
			return &Pair{ID: r.PairID, Namespace: r.PairNamespace, Message: m}
		})
		p.fill(r)
	}
	if r.FilterID != uuid.Nil {
		m.filters.upsert(r.FilterID, func() *Filter {
			return &Filter{
				ID:                      r.FilterID,
				PrimaryObjectTypeCode:   r.PrimaryObjectTypeCode,
				SecondaryObjectTypeCode: r.SecondaryObjectTypeCode,
			}
		})
	}
}

// Pairs returns the message pairs in fold order.
func (m *Message) Pairs() []*Pair { return m.pairs.values() }

// Pair returns the pair with the given id.
func (m *Message) Pair(id uuid.UUID) (*Pair, bool) { return m.pairs.get(id) }

// Filters returns the message filters in fold order.
func (m *Message) Filters() []*Filter { return m.filters.values() }

// FilterCount returns the number of distinct filters of the message.
func (m *Message) FilterCount() int { return m.filters.len() }

// Pair is one request/response shape of a message on an endpoint namespace.
type Pair struct {
	ID        uuid.UUID
	Namespace string
	Message   *Message
	Request   *Request
	Response  *Response
}

func (p *Pair) fill(r *RowResult) {
	if r.RequestID != uuid.Nil && p.Request == nil {
		p.Request = &Request{ID: r.RequestID, Name: r.RequestName, Pair: p}
	}
	if p.Request != nil {
		p.Request.fill(r)
	}
	if r.ResponseID != uuid.Nil && p.Response == nil {
		p.Response = &Response{ID: r.ResponseID, Pair: p}
	}
	if p.Response != nil {
		p.Response.fill(r)
	}
}

// Request is the input shape of a pair.
type Request struct {
	ID     uuid.UUID
	Name   string
	Pair   *Pair
	fields keyed[int, *RequestField]
}

func (q *Request) fill(r *RowResult) {
	if r.RequestFieldPosition == nil {
		return
	}
	pos := *r.RequestFieldPosition
	q.fields.upsert(pos, func() *RequestField {
		return &RequestField{
			Index:     pos,
			Name:      r.RequestFieldName,
			Formatter: r.RequestFieldCLRParser,
			Optional:  r.RequestFieldOptional,
			Request:   q,
		}
	})
}

// Fields returns the request fields in fold order.
func (q *Request) Fields() []*RequestField { return q.fields.values() }

// Field returns the request field at position.
func (q *Request) Field(pos int) (*RequestField, bool) { return q.fields.get(pos) }

// Response is the output shape of a pair.
type Response struct {
	ID     uuid.UUID
	Pair   *Pair
	fields keyed[int, *ResponseField]
}

func (s *Response) fill(r *RowResult) {
	if r.ResponseFieldPosition == nil {
		return
	}
	pos := *r.ResponseFieldPosition
	s.fields.upsert(pos, func() *ResponseField {
		return &ResponseField{
			Index:     pos,
			Name:      r.ResponseFieldName,
			Formatter: r.ResponseFieldCLRFormatter,
			Value:     r.ResponseFieldValue,
		}
	})
}

// Fields returns the response fields in fold order.
func (s *Response) Fields() []*ResponseField { return s.fields.values() }

// Field returns the response field at position.
func (s *Response) Field(pos int) (*ResponseField, bool) { return s.fields.get(pos) }

// RequestField is one positional parameter of a request.
type RequestField struct {
	Index     int
	Name      string
	Formatter string
	Optional  bool
	Request   *Request
}

// IsGeneric reports whether the field carries a full entity record while
// its message applies to more than one entity type.
func (f *RequestField) IsGeneric() bool {
	if f.Formatter != EntityFormatter {
		return false
	}
	if f.Request == nil || f.Request.Pair == nil || f.Request.Pair.Message == nil {
		return false
	}
	return f.Request.Pair.Message.FilterCount() > 1
}

// ResponseField is one positional result of a response.
type ResponseField struct {
	Index     int
	Name      string
	Formatter string
	Value     string
}

// Filter declares one entity type combination a message is valid for.
type Filter struct {
	ID                      uuid.UUID
	PrimaryObjectTypeCode   int
	SecondaryObjectTypeCode int
	// IsVisible is false for filters folded from message rows.
	IsVisible bool
}
