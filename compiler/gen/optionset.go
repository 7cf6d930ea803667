package gen

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// globalOptionSets builds the enums of the organization's global option sets.
func (g *generator) globalOptionSets() []*decl.Type {
	var types []*decl.Type
	for _, os := range g.org.OptionSets() {
		if t := g.globalOptionSet(os); t != nil {
			types = append(types, t)
		}
	}
	return types
}

func (g *generator) globalOptionSet(os *metadata.OptionSet) *decl.Type {
	if !os.IsGlobal || !g.s.Filter.GenerateOptionSet(os, g.s) {
		return nil
	}
	return g.optionSet(nil, os)
}

// drainDeferred builds the global option sets entities added to the
// organization, in the order they were first referenced.
func (g *generator) drainDeferred(emit func(*metadata.OptionSet, *decl.Type)) {
	for len(g.deferred) > 0 {
		os := g.deferred[0]
		g.deferred = g.deferred[1:]
		if t := g.optionSet(nil, os); t != nil {
			emit(os, t)
		}
	}
}

// optionSet builds the enum of an option set. A global set reached through
// an entity attribute is not built in place: it is added to the
// organization and built once after all entities.
func (g *generator) optionSet(e *metadata.Entity, os *metadata.OptionSet) *decl.Type {
	if len(os.Options) == 0 {
		g.log.Warn("option set has no options, enum skipped", zap.String("optionSet", os.Name))
		return nil
	}
	if os.IsGlobal && e != nil {
		if g.org.AddOptionSet(os) {
			g.deferred = append(g.deferred, os)
			g.log.Debug("global option set deferred",
				zap.String("optionSet", os.Name), zap.String("entity", e.LogicalName))
		}
		return nil
	}
	t := g.annotateType(&decl.Type{
		Name:        g.s.Naming.OptionSetName(e, os, g.s),
		Kind:        decl.Enum,
		Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationDataContract)},
		Doc:         labelText(os.Description, g.s),
	})
	var used []string
	for _, o := range os.Options {
		if !g.s.Filter.GenerateOption(o, g.s) {
			continue
		}
		var name string
		name, used = uniqueOptionName(used, g.s.Naming.OptionName(os, o, g.s))
		t.Add(&decl.EnumValue{
			Name:        name,
			Value:       o.Value,
			Annotations: []*decl.Annotation{decl.Annotate(decl.AnnotationEnumMember)},
			Doc:         labelText(o.Description, g.s),
		})
	}
	g.stats.OptionSets++
	return t
}

// uniqueOptionName returns name, or name with a numeric suffix when an
// earlier option of the set already took it, and the updated list of used
// names. The suffix is one more than the highest single digit following
// name among the used names; a bare repeat gets "1".
func uniqueOptionName(used []string, name string) (string, []string) {
	result := name
	if slices.Contains(used, name) {
		var prefixed []string
		for _, u := range used {
			if strings.HasPrefix(u, name) {
				prefixed = append(prefixed, u)
			}
		}
		sort.Sort(sort.Reverse(sort.StringSlice(prefixed)))
		for _, u := range prefixed {
			if len(u) == len(name) {
				result = name + "1"
				break
			}
			if d := u[len(name)]; d >= '0' && d <= '9' {
				result = name + strconv.Itoa(int(d-'0')+1)
				break
			}
		}
	}
	return result, append(used, result)
}

func labelText(l metadata.Label, s *Services) string {
	return l.Text(labelLanguage(s))
}
