package gen

import (
	"sort"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// Entity class constants.
const (
	constLogicalName           = "EntityLogicalName"
	constLogicalCollectionName = "EntityLogicalCollectionName"
	constSetName               = "EntitySetName"
	constTypeCode              = "EntityTypeCode"
	idProperty                 = "Id"
	calendarRulesProperty      = "CalendarRules"
	calendarRulesAttribute     = "calendarrules"
	onPropertyChanged          = "OnPropertyChanged"
	onPropertyChanging         = "OnPropertyChanging"
)

// entity builds the class of e followed by the enums of its local option
// sets.
func (g *generator) entity(e *metadata.Entity) []*decl.Type {
	cfg := g.s.Config
	t := g.annotateType(&decl.Type{
		Name: g.s.Naming.EntityName(e, g.s),
		Kind: decl.Class,
		Base: decl.Builtin(decl.Entity),
		Annotations: []*decl.Annotation{
			decl.Annotate(decl.AnnotationDataContract),
			decl.Annotate(decl.AnnotationEntityLogicalName, e.LogicalName),
		},
		Doc: labelText(e.Description, g.s),
	})
	if g.notify() {
		t.Implements = []*decl.TypeRef{decl.Builtin(decl.PropertyChanging), decl.Builtin(decl.PropertyChanged)}
	}
	t.Add(&decl.Constructor{BaseArgs: []string{constLogicalName}, Doc: "Default Constructor."})
	t.Add(
		stringConst(constLogicalName, e.LogicalName),
		stringConst(constLogicalCollectionName, e.LogicalCollectionName),
		stringConst(constSetName, e.EntitySetName),
	)
	if cfg.EmitEntityTypeCode && !cfg.LegacyMode && e.ObjectTypeCode != nil {
		t.Add(&decl.Field{Name: constTypeCode, Type: decl.Builtin(decl.Int32), Const: true, Value: *e.ObjectTypeCode})
	}
	if g.notify() {
		t.Add(
			&decl.Event{Name: decl.PropertyChanged, Interface: decl.PropertyChanged},
			&decl.Event{Name: decl.PropertyChanging, Interface: decl.PropertyChanging},
			raiser(onPropertyChanged, decl.PropertyChanged),
			raiser(onPropertyChanging, decl.PropertyChanging),
		)
	}
	enums := g.attributes(e, t)
	g.oneToMany(e, t)
	g.manyToMany(e, t)
	g.manyToOne(e, t)
	if cfg.EmitFieldsClasses {
		if fields := fieldsClass(t); fields != nil {
			t.Nest(fields)
		}
	}
	return append([]*decl.Type{t}, enums...)
}

// raiser returns the method raising a change notification event.
func raiser(name, event string) *decl.Method {
	return &decl.Method{
		Name:   name,
		Params: []*decl.Param{{Name: "propertyName", Type: decl.Builtin(decl.String)}},
		Body:   []*decl.Stmt{decl.S(decl.OpRaise, event)},
	}
}

func stringConst(name, value string) *decl.Field {
	return &decl.Field{Name: name, Type: decl.Builtin(decl.String), Const: true, Value: value}
}

// attributes adds the attribute properties of e to t and returns the enums
// of its local option sets. Option sets are visited for every enum-valued
// attribute, generated or not.
func (g *generator) attributes(e *metadata.Entity, t *decl.Type) []*decl.Type {
	attrs := append([]*metadata.Attribute(nil), e.Attributes...)
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].LogicalName < attrs[j].LogicalName })
	var enums []*decl.Type
	for _, a := range attrs {
		var prop *decl.Property
		if g.s.Filter.GenerateAttribute(a, g.s) {
			prop = g.attribute(e, a)
			t.Add(prop)
			if e.PrimaryIDAttribute == a.LogicalName && a.IsPrimaryID {
				t.Add(g.idProperty(a, prop))
			}
		}
		os := enumOptionSet(a)
		if os == nil {
			continue
		}
		g.containsEnums = true
		if a.Type == metadata.TypeMultiSelectPicklist {
			g.multiEnums = true
		}
		if !g.s.Filter.GenerateOptionSet(os, g.s) {
			continue
		}
		if enum := g.optionSet(e, os); enum != nil {
			enums = append(enums, enum)
		}
		if prop == nil {
			continue
		}
		switch {
		case g.s.Config.LegacyMode:
			g.legacyEnumAccessors(a, prop)
		case a.Type != metadata.TypeBoolean:
			*prop = *g.enumProperty(e, a, os, prop)
		}
	}
	return enums
}

// enumOptionSet returns the option set of an attribute whose values are
// option set values, including two-option booleans.
func enumOptionSet(a *metadata.Attribute) *metadata.OptionSet {
	if a.Type == metadata.TypeBoolean {
		return a.OptionSet
	}
	return attributeOptionSet(a)
}

// attribute builds the property of an attribute.
func (g *generator) attribute(e *metadata.Entity, a *metadata.Attribute) *decl.Property {
	typ := g.s.Types.AttributeType(e, a, g.s)
	p := &decl.Property{
		Name:        g.s.Naming.AttributeName(e, a, g.s),
		Type:        typ,
		Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationAttributeLogical, a.LogicalName)},
		Doc:         labelText(a.Description, g.s),
	}
	if a.DeprecatedVersion != "" {
		p.Annotations = append(p.Annotations, decl.Annotate(decl.AnnotationObsolete))
	}
	party := a.Type == metadata.TypePartyList && typ.IsCollection()
	hasSet := a.IsValidForCreate || a.IsValidForUpdate
	if a.IsValidForRead || hasSet {
		switch {
		case party:
			p.Getter = []*decl.Stmt{decl.S(decl.OpGetCollection, a.LogicalName).Typed(typ)}
		case readsFormattedValue(g.s.Config, a):
			p.Getter = []*decl.Stmt{decl.S(decl.OpGetFormatted, a.AttributeOf).Typed(typ)}
		default:
			p.Getter = []*decl.Stmt{decl.S(decl.OpGetAttribute, a.LogicalName).Typed(typ)}
		}
	}
	if hasSet {
		op := decl.OpSetAttribute
		if party {
			op = decl.OpSetCollection
		}
		body := []*decl.Stmt{decl.S(op, a.LogicalName).Typed(typ)}
		if a.IsPrimaryID && e.PrimaryIDAttribute == a.LogicalName {
			body = append(body, decl.S(decl.OpSyncID, a.LogicalName).Typed(typ))
		}
		p.Setter = g.notifying(p.Name, body...)
	}
	return p
}

// notifying wraps a setter body in change notifications.
func (g *generator) notifying(prop string, body ...*decl.Stmt) []*decl.Stmt {
	if !g.notify() {
		return body
	}
	stmts := make([]*decl.Stmt, 0, len(body)+2)
	stmts = append(stmts, decl.S(decl.OpNotifyChanging, prop))
	stmts = append(stmts, body...)
	return append(stmts, decl.S(decl.OpNotifyChanged, prop))
}

// idProperty overrides the record id with the primary id attribute.
func (g *generator) idProperty(a *metadata.Attribute, attr *decl.Property) *decl.Property {
	p := &decl.Property{
		Name:        idProperty,
		Type:        decl.Builtin(decl.Guid),
		Override:    true,
		Getter:      []*decl.Stmt{decl.S(decl.OpGetID, "")},
		Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationAttributeLogical, a.LogicalName)},
	}
	if attr.HasSet() {
		p.Setter = []*decl.Stmt{decl.S(decl.OpSetProperty, attr.Name)}
	} else {
		p.Setter = []*decl.Stmt{decl.S(decl.OpSetID, "")}
	}
	return p
}

// legacyEnumAccessors reads and writes the raw option set value of an
// attribute typed as an enum.
func (g *generator) legacyEnumAccessors(a *metadata.Attribute, p *decl.Property) {
	if p.Type.IsCollection() || p.Type.Builtin {
		return
	}
	if p.HasGet() {
		p.Getter = []*decl.Stmt{decl.S(decl.OpGetEnum, a.LogicalName).Typed(p.Type)}
	}
	if p.HasSet() {
		p.Setter = g.notifying(p.Name, decl.S(decl.OpSetEnum, a.LogicalName).Typed(p.Type))
	}
}

// enumProperty replaces the property of an option set attribute with one
// typed as the generated enum.
func (g *generator) enumProperty(e *metadata.Entity, a *metadata.Attribute, os *metadata.OptionSet, p *decl.Property) *decl.Property {
	enum := decl.Ref(g.s.Naming.OptionSetName(e, os, g.s))
	multi := a.Type == metadata.TypeMultiSelectPicklist
	typ := decl.NullableOf(enum)
	get, set := decl.OpGetEnum, decl.OpSetEnum
	if multi {
		typ = decl.CollectionOf(enum)
		get, set = decl.OpGetMultiEnum, decl.OpSetMultiEnum
	}
	out := &decl.Property{
		Name:        p.Name,
		Type:        typ,
		Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationAttributeLogical, a.LogicalName)},
		Doc:         p.Doc,
		Getter:      []*decl.Stmt{decl.S(get, a.LogicalName).Typed(enum)},
	}
	if p.HasSet() {
		out.Setter = g.notifying(p.Name, decl.S(set, a.LogicalName).Typed(enum))
	}
	return out
}
