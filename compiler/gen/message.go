package gen

import (
	"errors"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// Request class members.
const (
	requestNameProperty = "RequestName"
	targetParam         = "target"
	requestSuffix       = "Request"
	responseSuffix      = "Response"
)

// message builds the request and response classes of every generated pair
// of m. A pair whose fields name an unavailable type is skipped whole.
func (g *generator) message(m *metadata.Message) []*decl.Type {
	var types []*decl.Type
	for _, p := range m.Pairs() {
		if !g.s.Filter.GenerateMessagePair(p, g.s) {
			g.log.Debug("message pair skipped", zap.String("message", m.Name), zap.String("namespace", p.Namespace))
			continue
		}
		req, err := g.request(p)
		if err == nil {
			var resp *decl.Type
			if resp, err = g.response(p); err == nil {
				types = append(types, req, resp)
				g.stats.Pairs++
				continue
			}
		}
		var tu *TypeUnavailableError
		if !errors.As(err, &tu) {
			g.log.Error("message pair failed", zap.String("message", m.Name), zap.Error(err))
			continue
		}
		g.stats.SkippedPairs++
		g.log.Warn("message pair skipped, supporting types missing",
			zap.String("message", m.Name), zap.String("type", tu.Type))
	}
	return types
}

func messageAnnotations(p *metadata.Pair, proxy string) []*decl.Annotation {
	name := ""
	if p.Request != nil {
		name = p.Request.Name
	}
	return []*decl.Annotation{
		decl.Annotate(decl.AnnotationDataContract).Named("Namespace", p.Namespace),
		decl.Annotate(proxy, name),
	}
}

func (g *generator) request(p *metadata.Pair) (*decl.Type, error) {
	t := g.annotateType(&decl.Type{
		Name:        g.s.Naming.PairName(p, g.s) + requestSuffix,
		Kind:        decl.Class,
		Base:        decl.Builtin(decl.OrganizationRequest),
		Annotations: messageAnnotations(p, decl.AnnotationRequestProxy),
	})
	var (
		name     string
		defaults []*decl.Stmt
		target   *decl.Property
	)
	if p.Request != nil {
		name = p.Request.Name
		for _, f := range p.Request.Fields() {
			prop, err := g.requestField(p.Request, f)
			if err != nil {
				return nil, err
			}
			t.Add(prop)
			if prop.Type.Param && target == nil {
				target = prop
				t.TypeParams = []*decl.TypeParam{{Name: prop.Type.Name, Constraint: decl.Builtin(decl.Entity), New: true}}
			}
			if !f.Optional {
				defaults = append(defaults, decl.S(decl.OpAssign, prop.Name).Typed(prop.Type))
			}
		}
	}
	setName := decl.S(decl.OpAssign, requestNameProperty).With(name)
	if target == nil {
		t.Insert(&decl.Constructor{Body: append([]*decl.Stmt{setName}, defaults...)})
		return t, nil
	}
	t.Insert(
		&decl.Constructor{Body: []*decl.Stmt{
			decl.S(decl.OpAssignNew, target.Name).Typed(target.Type),
			setName,
		}},
		&decl.Constructor{
			Params: []*decl.Param{{Name: targetParam, Type: target.Type}},
			Body: []*decl.Stmt{
				decl.S(decl.OpAssign, target.Name).Typed(target.Type).With(decl.ParamValue(targetParam)),
				setName,
			},
		},
	)
	return t, nil
}

func (g *generator) requestField(q *metadata.Request, f *metadata.RequestField) (*decl.Property, error) {
	typ, err := g.s.Types.RequestFieldType(f, g.s)
	if err != nil {
		return nil, err
	}
	return &decl.Property{
		Name:   g.s.Naming.RequestFieldName(q, f, g.s),
		Type:   typ,
		Getter: []*decl.Stmt{decl.S(decl.OpGetParameter, f.Name).Typed(typ)},
		Setter: []*decl.Stmt{decl.S(decl.OpSetParameter, f.Name).Typed(typ)},
	}, nil
}

func (g *generator) response(p *metadata.Pair) (*decl.Type, error) {
	t := g.annotateType(&decl.Type{
		Name:        g.s.Naming.PairName(p, g.s) + responseSuffix,
		Kind:        decl.Class,
		Base:        decl.Builtin(decl.OrganizationResponse),
		Annotations: messageAnnotations(p, decl.AnnotationResponseProxy),
	})
	t.Add(&decl.Constructor{})
	if p.Response == nil {
		return t, nil
	}
	for _, f := range p.Response.Fields() {
		typ, err := g.s.Types.ResponseFieldType(f, g.s)
		if err != nil {
			return nil, err
		}
		t.Add(&decl.Property{
			Name:   g.s.Naming.ResponseFieldName(p.Response, f, g.s),
			Type:   typ,
			Getter: []*decl.Stmt{decl.S(decl.OpGetResult, f.Name).Typed(typ)},
		})
	}
	return t, nil
}
