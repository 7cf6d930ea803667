package gen

import (
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/decl"
)

const serviceParam = "service"

// serviceContext builds the service context class with one queryable set
// per generated entity, or returns nil when no context is requested.
func (g *generator) serviceContext() *decl.Type {
	if !g.s.Filter.GenerateServiceContext(g.s) {
		g.log.Debug("service context skipped")
		return nil
	}
	t := g.annotateType(&decl.Type{
		Name: g.s.Naming.ServiceContextName(g.s),
		Kind: decl.Class,
		Base: decl.Builtin(decl.ServiceContext),
		Doc:  "Represents a source of entities bound to a service. It tracks and manages changes made to the retrieved entities.",
	})
	t.Add(&decl.Constructor{
		Params:   []*decl.Param{{Name: serviceParam, Type: decl.Builtin(decl.Service)}},
		BaseArgs: []string{serviceParam},
		Doc:      "Constructor.",
	})
	for _, e := range g.sortedEntities() {
		if e.LogicalName == calendarRule || !g.s.Filter.GenerateEntity(e, g.s) {
			g.log.Debug("entity set skipped", zap.String("entity", e.LogicalName))
			continue
		}
		typ := g.s.Types.EntityType(e, g.s)
		t.Add(&decl.Property{
			Name:   g.s.Naming.EntitySetName(e, g.s),
			Type:   decl.Generic(decl.Queryable, typ),
			Getter: []*decl.Stmt{decl.S(decl.OpCreateQuery, e.LogicalName).Typed(typ)},
			Doc:    "Gets a binding to the set of all " + typ.Name + " entities.",
		})
	}
	return t
}
