package gen

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/metadata"
)

// UnitKind is the kind of an output unit.
type UnitKind uint8

// Unit kinds.
const (
	UnitFile UnitKind = iota
	UnitOptionSet
	UnitEntity
	UnitMessage
	UnitContext
	UnitHelper
)

var unitKinds = [...]string{"file", "optionset", "entity", "message", "context", "helper"}

func (k UnitKind) String() string {
	if int(k) < len(unitKinds) {
		return unitKinds[k]
	}
	return "unknown"
}

// HelperName is the name of the static helper class of enum accessors.
const HelperName = "EntityOptionSetEnum"

// Unit is one output file: a namespace and where it goes.
type Unit struct {
	Kind UnitKind
	// Name is the logical name of the node the unit was built for.
	Name string
	// Dir is the folder below the output directory, empty for the root.
	Dir string
	// Base is the file name without extension.
	Base string
	// File is the full output path of a single-file run.
	File      string
	Namespace *decl.Namespace
}

// Path returns the output path of the unit for the extension ext, relative
// to the output directory unless the unit names its own file.
func (u *Unit) Path(ext string) string {
	if u.File != "" {
		return u.File
	}
	return filepath.Join(u.Dir, u.Base+"."+ext)
}

// Stats counts what a run produced.
type Stats struct {
	OptionSets    int
	Entities      int
	Messages      int
	Pairs         int
	SkippedPairs  int
	ContainsEnums bool
}

// Result is the output of Generate.
type Result struct {
	Units []*Unit
	Stats Stats
}

// Namespaces returns the namespaces of all units, in order.
func (r *Result) Namespaces() []*decl.Namespace {
	nss := make([]*decl.Namespace, 0, len(r.Units))
	for _, u := range r.Units {
		nss = append(nss, u.Namespace)
	}
	return nss
}

// Generate walks org and produces the declaration units of a run. Naming
// depends on visit order, so nodes are visited sequentially: option sets,
// entities with the global option sets they reference, the service context,
// messages and finally the enum helper class.
func Generate(ctx context.Context, org *metadata.Organization, s *Services) (*Result, error) {
	g := &generator{s: s, org: org, log: s.Log}
	start := time.Now()
	var (
		units []*Unit
		err   error
	)
	if s.Config.SplitFiles {
		units, err = g.split(ctx)
	} else {
		units, err = g.single(ctx)
	}
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if err := s.Customizer.Customize(u.Namespace, s); err != nil {
			return nil, NewGenerationError("customize", u.Base, "customizer failed", err)
		}
	}
	g.stats.ContainsEnums = g.containsEnums
	g.log.Info("generation complete",
		zap.Int("units", len(units)),
		zap.Int("entities", g.stats.Entities),
		zap.Int("optionSets", g.stats.OptionSets),
		zap.Int("messages", g.stats.Messages),
		zap.Int("skippedPairs", g.stats.SkippedPairs),
		zap.Duration("elapsed", time.Since(start)))
	return &Result{Units: units, Stats: g.stats}, nil
}

// generator carries the state of one run.
type generator struct {
	s   *Services
	org *metadata.Organization
	log *zap.Logger

	stats         Stats
	containsEnums bool
	multiEnums    bool
	// deferred holds global option sets first referenced by an entity.
	deferred []*metadata.OptionSet
}

func (g *generator) namespace(types ...*decl.Type) *decl.Namespace {
	ns := &decl.Namespace{Name: g.s.Config.Namespace}
	ns.Add(types...)
	return ns
}

func (g *generator) single(ctx context.Context) ([]*Unit, error) {
	ns := g.namespace()
	ns.Add(g.globalOptionSets()...)
	for _, e := range g.entities() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns.Add(g.entity(e)...)
	}
	g.drainDeferred(func(_ *metadata.OptionSet, t *decl.Type) { ns.Add(t) })
	ns.Add(g.serviceContext())
	for _, m := range g.messages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns.Add(g.message(m)...)
	}
	if g.wantsHelper() {
		ns.Add(g.helper())
	}
	out := g.s.Config.OutFile
	base := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	return []*Unit{{Kind: UnitFile, Name: base, Base: base, File: out, Namespace: ns}}, nil
}

func (g *generator) split(ctx context.Context) ([]*Unit, error) {
	cfg := g.s.Config
	var units []*Unit
	add := func(u *Unit) {
		if u.Namespace.Len() > 0 {
			units = append(units, u)
		}
	}
	optionSetUnit := func(t *decl.Type, name string) {
		add(&Unit{Kind: UnitOptionSet, Name: name, Dir: cfg.OptionSetFolder, Base: name, Namespace: g.namespace(t)})
	}
	for _, os := range g.org.OptionSets() {
		if t := g.globalOptionSet(os); t != nil {
			optionSetUnit(t, os.Name)
		}
	}
	for _, e := range g.entities() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		add(&Unit{Kind: UnitEntity, Name: e.LogicalName, Dir: cfg.EntityFolder, Base: e.LogicalName, Namespace: g.namespace(g.entity(e)...)})
	}
	g.drainDeferred(func(os *metadata.OptionSet, t *decl.Type) {
		optionSetUnit(t, os.Name)
	})
	if t := g.serviceContext(); t != nil {
		add(&Unit{Kind: UnitContext, Name: t.Name, Base: t.Name, Namespace: g.namespace(t)})
	}
	for _, m := range g.messages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		add(&Unit{Kind: UnitMessage, Name: m.Name, Dir: cfg.MessageFolder, Base: m.Name, Namespace: g.namespace(g.message(m)...)})
	}
	if g.wantsHelper() {
		add(&Unit{Kind: UnitHelper, Name: HelperName, Base: HelperName, Namespace: g.namespace(g.helper())})
	}
	return units, nil
}

func (g *generator) sortedEntities() []*metadata.Entity {
	out := append([]*metadata.Entity(nil), g.org.Entities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LogicalName < out[j].LogicalName })
	return out
}

// entities returns the generated entities ordered by logical name.
func (g *generator) entities() []*metadata.Entity {
	var out []*metadata.Entity
	for _, e := range g.sortedEntities() {
		if g.s.Filter.GenerateEntity(e, g.s) {
			out = append(out, e)
			continue
		}
		g.log.Debug("entity skipped", zap.String("entity", e.LogicalName))
	}
	g.stats.Entities = len(out)
	return out
}

// messages returns the generated messages in graph order.
func (g *generator) messages() []*metadata.Message {
	if g.org.Messages == nil {
		return nil
	}
	var out []*metadata.Message
	for _, m := range g.org.Messages.All() {
		if g.s.Filter.GenerateMessage(m, g.s) {
			out = append(out, m)
			continue
		}
		g.log.Debug("message skipped", zap.String("message", m.Name))
	}
	g.stats.Messages = len(out)
	return out
}

func (g *generator) annotateType(t *decl.Type) *decl.Type {
	if !g.s.Config.SuppressGeneratedCodeAttribute {
		t.Annotations = append(t.Annotations, decl.Annotate(decl.AnnotationGeneratedCode, "modelbuilder", reserved(g.s).SDKVersion))
	}
	return t
}

// wantsHelper reports whether the enum helper class is emitted. Legacy
// declarations read option sets without it.
func (g *generator) wantsHelper() bool {
	return !g.s.Config.LegacyMode && g.containsEnums
}

func (g *generator) notify() bool { return !g.s.Config.SuppressINotifyPattern }
