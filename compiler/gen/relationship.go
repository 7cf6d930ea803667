package gen

import (
	"sort"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// Doc prefixes of relationship properties. The fields class reads them back.
const (
	docOneToMany  = "1:N "
	docManyToMany = "N:N "
	docManyToOne  = "N:1 "
)

func sortedOneToMany(rs []*metadata.OneToManyRelationship) []*metadata.OneToManyRelationship {
	out := append([]*metadata.OneToManyRelationship(nil), rs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SchemaName < out[j].SchemaName })
	return out
}

// oneToMany adds a collection property per relationship where e is the
// referenced entity. Calendar rules get a dedicated property.
func (g *generator) oneToMany(e *metadata.Entity, t *decl.Type) {
	calendar := false
	for _, r := range sortedOneToMany(e.OneToMany) {
		other := g.org.Entity(r.ReferencingEntity)
		if other != nil && other.LogicalName == calendarRule {
			if !calendar && g.s.Filter.GenerateEntity(other, g.s) {
				t.Add(g.calendarRules(other))
				calendar = true
			}
			continue
		}
		if !g.s.Filter.GenerateRelationship(r, other, g.s) {
			continue
		}
		role := metadata.RoleNone
		if r.IsReflexive() {
			role = metadata.RoleReferenced
		}
		t.Add(g.collectionRelationship(e, r, other, role, docOneToMany))
	}
}

func (g *generator) calendarRules(rule *metadata.Entity) *decl.Property {
	typ := decl.CollectionOf(g.s.Types.EntityType(rule, g.s))
	return &decl.Property{
		Name:        calendarRulesProperty,
		Type:        typ,
		Getter:      []*decl.Stmt{decl.S(decl.OpGetCollection, calendarRulesAttribute).Typed(typ)},
		Setter:      g.notifying(calendarRulesProperty, decl.S(decl.OpSetCollection, calendarRulesAttribute).Typed(typ)),
		Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationAttributeLogical, calendarRulesAttribute)},
	}
}

// manyToMany adds a collection property per N:N relationship. Reflexive
// relationships get one property per role.
func (g *generator) manyToMany(e *metadata.Entity, t *decl.Type) {
	rs := append([]*metadata.ManyToManyRelationship(nil), e.ManyToMany...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].SchemaName < rs[j].SchemaName })
	for _, r := range rs {
		other := g.org.Entity(r.Other(e.LogicalName))
		if !g.s.Filter.GenerateRelationship(r, other, g.s) {
			continue
		}
		if r.IsReflexive() {
			t.Add(
				g.collectionRelationship(e, r, other, metadata.RoleReferencing, docManyToMany),
				g.collectionRelationship(e, r, other, metadata.RoleReferenced, docManyToMany),
			)
			continue
		}
		t.Add(g.collectionRelationship(e, r, other, metadata.RoleNone, docManyToMany))
	}
}

func (g *generator) collectionRelationship(e *metadata.Entity, r metadata.Relationship, other *metadata.Entity, role metadata.Role, doc string) *decl.Property {
	name := g.s.Naming.RelationshipName(e, r, role, g.s)
	elem := g.s.Types.RelationshipType(r, other, g.s)
	typ := decl.CollectionOf(elem)
	return &decl.Property{
		Name:        name,
		Type:        typ,
		Getter:      []*decl.Stmt{decl.S(decl.OpGetRelatedMany, r.Name()).As(role.String()).Typed(elem)},
		Setter:      g.notifying(name, decl.S(decl.OpSetRelatedMany, r.Name()).As(role.String()).Typed(elem)),
		Annotations: []*decl.Annotation{relationshipAnnotation(r, role)},
		Doc:         doc + r.Name(),
	}
}

func relationshipAnnotation(r metadata.Relationship, role metadata.Role) *decl.Annotation {
	a := decl.Annotate(decl.AnnotationRelationshipSchema, r.Name())
	if role != metadata.RoleNone {
		a.Named("role", role.String())
	}
	return a
}

// manyToOne adds a single-valued property per relationship where e holds
// the lookup. The lookup attribute must exist on e, and the property is
// settable only when the lookup is.
func (g *generator) manyToOne(e *metadata.Entity, t *decl.Type) {
	for _, r := range sortedOneToMany(e.ManyToOne) {
		other := g.org.Entity(r.ReferencedEntity)
		if !g.s.Filter.GenerateRelationship(r, other, g.s) {
			continue
		}
		lookup := e.Attribute(r.ReferencingAttribute)
		if lookup == nil {
			continue
		}
		role := metadata.RoleNone
		if r.IsReflexive() {
			role = metadata.RoleReferencing
		}
		name := g.s.Naming.RelationshipName(e, r, role, g.s)
		typ := g.s.Types.RelationshipType(r, other, g.s)
		p := &decl.Property{
			Name:   name,
			Type:   typ,
			Getter: []*decl.Stmt{decl.S(decl.OpGetRelated, r.SchemaName).As(role.String()).Typed(typ)},
			Annotations: []*decl.Annotation{
				decl.Annotate(decl.AnnotationAttributeLogical, r.ReferencingAttribute),
				relationshipAnnotation(r, role),
			},
			Doc: docManyToOne + r.SchemaName,
		}
		if lookup.IsValidForCreate || lookup.IsValidForUpdate {
			p.Setter = g.notifying(name, decl.S(decl.OpSetRelated, r.SchemaName).As(role.String()).Typed(typ))
		}
		t.Add(p)
	}
}
