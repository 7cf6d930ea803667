package gen

import (
	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
	"go.uber.org/zap"
)

// NamingService maps metadata nodes to identifiers. Names are memoized per
// node identity for the whole run.
type NamingService interface {
	OptionSetName(e *metadata.Entity, os *metadata.OptionSet, s *Services) string
	OptionName(os *metadata.OptionSet, o *metadata.Option, s *Services) string
	EntityName(e *metadata.Entity, s *Services) string
	AttributeName(e *metadata.Entity, a *metadata.Attribute, s *Services) string
	RelationshipName(e *metadata.Entity, r metadata.Relationship, role metadata.Role, s *Services) string
	ServiceContextName(s *Services) string
	EntitySetName(e *metadata.Entity, s *Services) string
	PairName(p *metadata.Pair, s *Services) string
	RequestFieldName(q *metadata.Request, f *metadata.RequestField, s *Services) string
	ResponseFieldName(r *metadata.Response, f *metadata.ResponseField, s *Services) string
}

// FilterService decides which nodes become declarations.
type FilterService interface {
	GenerateOptionSet(os *metadata.OptionSet, s *Services) bool
	GenerateOption(o *metadata.Option, s *Services) bool
	GenerateEntity(e *metadata.Entity, s *Services) bool
	GenerateAttribute(a *metadata.Attribute, s *Services) bool
	GenerateRelationship(r metadata.Relationship, other *metadata.Entity, s *Services) bool
	GenerateServiceContext(s *Services) bool
	GenerateMessage(m *metadata.Message, s *Services) bool
	GenerateMessagePair(p *metadata.Pair, s *Services) bool
}

// TypeMappingService maps metadata types to declaration type references.
type TypeMappingService interface {
	EntityType(e *metadata.Entity, s *Services) *decl.TypeRef
	AttributeType(e *metadata.Entity, a *metadata.Attribute, s *Services) *decl.TypeRef
	RelationshipType(r metadata.Relationship, other *metadata.Entity, s *Services) *decl.TypeRef
	// RequestFieldType and ResponseFieldType fail with a *TypeUnavailableError
	// when the field formatter names an unknown type.
	RequestFieldType(f *metadata.RequestField, s *Services) (*decl.TypeRef, error)
	ResponseFieldType(f *metadata.ResponseField, s *Services) (*decl.TypeRef, error)
}

// Customizer rewrites a namespace after generation and before rendering.
type Customizer interface {
	Customize(ns *decl.Namespace, s *Services) error
}

// CustomizerFunc adapts a function to a Customizer.
type CustomizerFunc func(*decl.Namespace, *Services) error

// Customize calls f(ns, s).
func (f CustomizerFunc) Customize(ns *decl.Namespace, s *Services) error { return f(ns, s) }

type nopCustomizer struct{}

func (nopCustomizer) Customize(*decl.Namespace, *Services) error { return nil }

// Services holds one implementation per decision point of a run. It is
// built once and passed to every service call, so an override of one
// service is seen by the others.
type Services struct {
	Config     *Config
	Org        *metadata.Organization
	Naming     NamingService
	Filter     FilterService
	Types      TypeMappingService
	Customizer Customizer
	Reserved   *Reserved
	Log        *zap.Logger
}

// ServicesOption overrides a service.
type ServicesOption func(*Services)

// WithNaming replaces the naming service.
func WithNaming(n NamingService) ServicesOption {
	return func(s *Services) { s.Naming = n }
}

// WithFilter replaces the filter service.
func WithFilter(f FilterService) ServicesOption {
	return func(s *Services) { s.Filter = f }
}

// WithTypeMapping replaces the type mapping service.
func WithTypeMapping(t TypeMappingService) ServicesOption {
	return func(s *Services) { s.Types = t }
}

// WithCustomizer sets the namespace customizer.
func WithCustomizer(c Customizer) ServicesOption {
	return func(s *Services) { s.Customizer = c }
}

// WithReserved replaces the reserved-name denylist.
func WithReserved(r *Reserved) ServicesOption {
	return func(s *Services) { s.Reserved = r }
}

// NewServices returns the default services for a run over org.
func NewServices(cfg *Config, org *metadata.Organization, opts ...ServicesOption) *Services {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Services{
		Config:     cfg,
		Org:        org,
		Customizer: nopCustomizer{},
		Reserved:   DefaultReserved(),
		Log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Naming == nil {
		s.Naming = NewNaming(cfg, s.Reserved)
	}
	if s.Filter == nil {
		s.Filter = NewFilter(cfg)
	}
	if s.Types == nil {
		s.Types = NewTypeMapping(cfg)
	}
	return s
}
