package gen

import "github.com/syssam/modelbuilder/compiler/decl"

// Helper method names.
const (
	helperGetEnum      = "GetEnum"
	helperGetMultiEnum = "GetMultiEnum"
	helperSetMultiEnum = "SetMultiEnum"
)

// helper builds the static class that reads option set attributes as enum
// values. Its method bodies delegate to the runtime, so each holds a single
// statement with an empty key. The multi-select accessors are only emitted
// when some multi-select attribute was seen.
func (g *generator) helper() *decl.Type {
	entity := &decl.Param{Name: "entity", Type: decl.Builtin(decl.Entity)}
	logical := &decl.Param{Name: "attributeLogicalName", Type: decl.Builtin(decl.String)}
	t := g.annotateType(&decl.Type{Name: HelperName, Kind: decl.Class, Static: true})
	t.Add(&decl.Method{
		Name:    helperGetEnum,
		Static:  true,
		Params:  []*decl.Param{entity, logical},
		Returns: decl.NullableOf(decl.Builtin(decl.Int32)),
		Body:    []*decl.Stmt{decl.S(decl.OpGetEnum, "")},
		Doc:     "Returns the integer value of an option set attribute, or null.",
	})
	if !g.multiEnums {
		return t
	}
	elem := decl.ParamRef(GenericParam)
	tp := []*decl.TypeParam{{Name: GenericParam}}
	t.Add(
		&decl.Method{
			Name:       helperGetMultiEnum,
			Static:     true,
			TypeParams: tp,
			Params:     []*decl.Param{entity, logical},
			Returns:    decl.CollectionOf(elem),
			Body:       []*decl.Stmt{decl.S(decl.OpGetMultiEnum, "").Typed(elem)},
			Doc:        "Returns the values of a multi-select attribute as enum values.",
		},
		&decl.Method{
			Name:       helperSetMultiEnum,
			Static:     true,
			TypeParams: tp,
			Params:     []*decl.Param{entity, logical, {Name: "values", Type: decl.CollectionOf(elem)}},
			Returns:    decl.Builtin(decl.OptionSetValueList),
			Body:       []*decl.Stmt{decl.S(decl.OpSetMultiEnum, "").Typed(elem)},
			Doc:        "Converts enum values into the value of a multi-select attribute.",
		},
	)
	return t
}
