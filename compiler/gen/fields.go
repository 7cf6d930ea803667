package gen

import (
	"strings"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// FieldsClassName is the nested class holding the field name constants.
const FieldsClassName = "Fields"

// fieldsClass returns a static class with one string constant per property
// of t, or nil when t has none. Attribute properties map to their logical
// name, N:1 and N:N properties to their relationship schema name. Both
// roles of a reflexive N:N relationship share one constant.
func fieldsClass(t *decl.Type) *decl.Type {
	fields := &decl.Type{Name: FieldsClassName, Kind: decl.Class, Static: true}
	seen := make(map[string]bool)
	for _, p := range t.Properties() {
		name, value, ok := fieldConst(p)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		fields.Add(stringConst(name, value))
	}
	if len(fields.Members) == 0 {
		return nil
	}
	return fields
}

func fieldConst(p *decl.Property) (name, value string, ok bool) {
	rel := p.Annotation(decl.AnnotationRelationshipSchema)
	attr := p.Annotation(decl.AnnotationAttributeLogical)
	switch {
	case rel != nil && strings.HasPrefix(p.Doc, docManyToMany):
		name = p.Name
		for _, role := range []metadata.Role{metadata.RoleReferencing, metadata.RoleReferenced} {
			if trimmed, found := strings.CutPrefix(name, role.String()); found {
				name = trimmed
				break
			}
		}
		return name, rel.Value(""), true
	case rel != nil && attr != nil:
		return p.Name, rel.Value(""), true
	case attr != nil:
		return p.Name, attr.Value(""), true
	case rel != nil:
		return p.Name, p.Name, true
	}
	return "", "", false
}
