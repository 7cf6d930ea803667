package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/tools/imports"

	"github.com/syssam/modelbuilder/compiler/decl"
	"github.com/syssam/modelbuilder/compiler/gen"
)

const (
	xrmPkg  = "github.com/syssam/modelbuilder/xrm"
	uuidPkg = "github.com/google/uuid"

	// recv is the receiver name of generated methods.
	recv       = "_r"
	valueParam = "value"
)

// Go renders units as Go source built on the xrm runtime package.
// Properties become getter and setter methods, class constants become
// package constants prefixed with the class name, and static classes
// become package functions and variables.
type Go struct {
	pkg string
	// kinds indexes the types declared across the run.
	kinds map[string]decl.Kind
}

// NewGo returns a Go renderer writing package pkg. Types referenced across
// units are resolved through res, which may be nil.
func NewGo(pkg string, res *gen.Result) *Go {
	g := &Go{pkg: pkg, kinds: make(map[string]decl.Kind)}
	if res != nil {
		for _, u := range res.Units {
			g.index(u.Namespace.Types)
		}
	}
	return g
}

func (g *Go) index(types []*decl.Type) {
	for _, t := range types {
		g.kinds[t.Name] = t.Kind
		g.index(t.Nested)
	}
}

// Name implements Renderer.
func (*Go) Name() string { return gen.LanguageGo }

// Path implements Renderer. Split units are flattened into one package
// directory as <folder>_<base>.go.
func (*Go) Path(u *gen.Unit) string {
	if u.File != "" {
		return u.File
	}
	name := u.Base
	if u.Dir != "" {
		name = u.Dir + "_" + name
	}
	return goFileName(name) + ".go"
}

// Render implements Renderer.
func (g *Go) Render(u *gen.Unit) ([]byte, error) {
	f, err := g.File(u)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", u.Base, err)
	}
	return buf.Bytes(), nil
}

// Format implements Formatter.
func (*Go) Format(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, nil)
}

// File builds the jennifer file of u.
func (g *Go) File(u *gen.Unit) (*jen.File, error) {
	f := jen.NewFile(g.pkg)
	f.ImportName(xrmPkg, "xrm")
	f.ImportName(uuidPkg, "uuid")
	if h := header(u.Namespace); h != "" {
		f.HeaderComment(h)
	}
	for _, t := range u.Namespace.Types {
		if err := g.typeDecl(f, t, ""); err != nil {
			return nil, fmt.Errorf("render %s: %w", t.Name, err)
		}
	}
	return f, nil
}

func header(ns *decl.Namespace) string {
	for _, t := range ns.Types {
		a := t.Annotation(decl.AnnotationGeneratedCode)
		if a == nil || len(a.Args) == 0 {
			continue
		}
		tool := a.Args[0].Value
		if len(a.Args) > 1 && a.Args[1].Value != "" {
			return fmt.Sprintf("Code generated by %s (SDK %s). DO NOT EDIT.", tool, a.Args[1].Value)
		}
		return fmt.Sprintf("Code generated by %s. DO NOT EDIT.", tool)
	}
	return ""
}

func (g *Go) typeDecl(f *jen.File, t *decl.Type, prefix string) error {
	s := g.scope(t, prefix+exported(t.Name))
	switch {
	case t.Kind == decl.Enum:
		s.enum(f)
	case t.Static:
		s.static(f, prefix)
	default:
		s.class(f)
	}
	if s.err != nil {
		return s.err
	}
	for _, n := range t.Nested {
		if err := g.typeDecl(f, n, s.name); err != nil {
			return err
		}
	}
	return nil
}

// scope is the rendering state of one type.
type scope struct {
	*Go
	t    *decl.Type
	name string
	// base is the name of the embedded runtime record, empty for none.
	base string
	// records holds the type parameters constrained to records.
	records map[string]bool
	decls   []jen.Code
	uses    []jen.Code
	// params are the parameters of the body being rendered.
	params []*decl.Param
	err    error
}

func (g *Go) scope(t *decl.Type, name string) *scope {
	s := &scope{Go: g, t: t, name: name, records: make(map[string]bool)}
	if t.Base != nil {
		s.base = embeddedName(t.Base)
	}
	s.decls, s.uses = s.typeParams(t.TypeParams)
	return s
}

func embeddedName(base *decl.TypeRef) string {
	if base.Is(decl.ServiceContext) {
		return "ServiceContext"
	}
	return exported(base.Name)
}

// typeParams returns the declaration and the use of tps. A parameter
// constrained to records gets a pointer companion P<Name>; others must be
// enums.
func (s *scope) typeParams(tps []*decl.TypeParam) (decls, uses []jen.Code) {
	for _, tp := range tps {
		if tp.New || tp.Constraint != nil {
			s.records[tp.Name] = true
			decls = append(decls,
				jen.Id(tp.Name).Any(),
				jen.Id("P"+tp.Name).Qual(xrmPkg, "RecordPtr").Types(jen.Id(tp.Name)))
			uses = append(uses, jen.Id(tp.Name), jen.Id("P"+tp.Name))
			continue
		}
		decls = append(decls, jen.Id(tp.Name).Qual(xrmPkg, "Enum"))
		uses = append(uses, jen.Id(tp.Name))
	}
	return decls, uses
}

// self returns the type name instantiated with its own type parameters.
func (s *scope) self() *jen.Statement {
	if len(s.uses) == 0 {
		return jen.Id(s.name)
	}
	return jen.Id(s.name).Types(s.uses...)
}

func (s *scope) receiver() *jen.Statement {
	return jen.Id(recv).Op("*").Add(s.self())
}

// record returns the embedded runtime record of the receiver.
func (s *scope) record() *jen.Statement {
	return jen.Id(recv).Dot(s.base)
}

func (s *scope) constName(name string) string { return s.name + exported(name) }

func (s *scope) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf(format, args...)
	}
}

func (s *scope) class(f *jen.File) {
	comments(f, s.name, s.t.Doc, s.t.Annotations)
	var fields []jen.Code
	if s.t.Base != nil {
		fields = append(fields, s.goType(s.t.Base))
	}
	for _, m := range s.t.Members {
		switch m := m.(type) {
		case *decl.Event:
			fields = append(fields, jen.Id(exported(m.Name)).Add(handlerType(m.Interface)))
		case *decl.Field:
			if !m.Const {
				fields = append(fields, jen.Id(exported(m.Name)).Add(s.goType(m.Type)))
			}
		}
	}
	typ := f.Type().Id(s.name)
	if len(s.decls) > 0 {
		typ.Types(s.decls...)
	}
	typ.Struct(fields...)
	s.assertions(f)
	s.consts(f)
	s.constructors(f)
	if s.t.Base.Is(decl.Entity) {
		s.bind(f)
	}
	for _, m := range s.t.Members {
		switch m := m.(type) {
		case *decl.Property:
			s.property(f, m)
		case *decl.Method:
			s.method(f, m, "")
		}
	}
}

func handlerType(iface string) jen.Code {
	switch iface {
	case decl.PropertyChanged, decl.PropertyChanging:
		return jen.Qual(xrmPkg, iface+"Handler")
	default:
		return jen.Func().Params(jen.Id("sender").Any(), jen.Id("propertyName").String())
	}
}

// assertions checks at compile time that the type implements its
// interfaces. Generic types are skipped.
func (s *scope) assertions(f *jen.File) {
	if len(s.t.Implements) == 0 || len(s.decls) > 0 {
		return
	}
	defs := make([]jen.Code, 0, len(s.t.Implements))
	for _, iface := range s.t.Implements {
		defs = append(defs, jen.Id("_").Add(s.goType(iface)).Op("=").Parens(jen.Op("*").Id(s.name)).Call(jen.Nil()))
	}
	f.Var().Defs(defs...)
}

func (s *scope) consts(f *jen.File) {
	var defs []jen.Code
	for _, m := range s.t.Members {
		c, ok := m.(*decl.Field)
		if !ok || !c.Const || c.Value == nil {
			continue
		}
		def := jen.Id(s.constName(c.Name))
		if !c.Type.Is(decl.String) {
			def.Add(s.goType(c.Type))
		}
		defs = append(defs, def.Op("=").Lit(c.Value))
	}
	if len(defs) > 0 {
		f.Const().Defs(defs...)
	}
}

func (s *scope) constructors(f *jen.File) {
	var ctors []*decl.Constructor
	plain := false
	for _, m := range s.t.Members {
		if c, ok := m.(*decl.Constructor); ok {
			ctors = append(ctors, c)
			plain = plain || len(c.Params) == 0
		}
	}
	for _, c := range ctors {
		name := "New" + s.name
		if plain && len(c.Params) > 0 {
			name += "With"
			for _, p := range c.Params {
				name += exported(p.Name)
			}
		}
		s.constructor(f, name, c)
	}
}

func (s *scope) constructor(f *jen.File, name string, c *decl.Constructor) {
	s.params = c.Params
	defer func() { s.params = nil }()
	var init []jen.Code
	if s.base != "" {
		init = append(init, jen.Id(s.base).Op(":").Add(s.baseInit(c)))
	}
	lit := jen.Op("&").Add(s.self()).Values(init...)
	var body []jen.Code
	if len(c.Body) == 0 {
		body = append(body, jen.Return(lit))
	} else {
		body = append(body, jen.Id(recv).Op(":=").Add(lit))
		body = append(body, s.stmts(c.Body, nil)...)
		body = append(body, jen.Return(jen.Id(recv)))
	}
	f.Commentf("%s returns a new %s.", name, s.name)
	fn := f.Func().Id(name)
	if len(s.decls) > 0 {
		fn.Types(s.decls...)
	}
	fn.Params(s.paramList(c.Params)...).Op("*").Add(s.self()).Block(body...)
}

// baseInit returns the construction of the embedded record. A base
// argument names a constructor parameter or a constant of the type, or is
// passed as a string literal.
func (s *scope) baseInit(c *decl.Constructor) jen.Code {
	args := make([]jen.Code, 0, len(c.BaseArgs))
	for _, a := range c.BaseArgs {
		switch {
		case s.isParam(a):
			args = append(args, jen.Id(a))
		case isConst(s.t.Member(a)):
			args = append(args, jen.Id(s.constName(a)))
		default:
			args = append(args, jen.Lit(a))
		}
	}
	if s.t.Base.Builtin {
		return jen.Qual(xrmPkg, "New"+s.base).Call(args...)
	}
	return jen.Id("New" + s.base).Call(args...)
}

func isConst(m decl.Member) bool {
	c, ok := m.(*decl.Field)
	return ok && c.Const
}

func (s *scope) isParam(name string) bool {
	for _, p := range s.params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (s *scope) paramList(ps []*decl.Param) []jen.Code {
	out := make([]jen.Code, 0, len(ps))
	for _, p := range ps {
		out = append(out, jen.Id(p.Name).Add(s.goType(p.Type)))
	}
	return out
}

// bind lets the runtime wrap loosely typed records in the type.
func (s *scope) bind(f *jen.File) {
	logical := jen.Lit(s.logicalName())
	if isConst(s.t.Member("EntityLogicalName")) {
		logical = jen.Id(s.constName("EntityLogicalName"))
	}
	f.Commentf("Bind makes %s a view of base.", s.name)
	f.Func().Params(s.receiver()).Id("Bind").Params(jen.Id("base").Op("*").Qual(xrmPkg, "Entity")).Block(
		jen.If(jen.Id("base").Dot("LogicalName").Op("==").Lit("")).Block(
			jen.Id("base").Dot("LogicalName").Op("=").Add(logical),
		),
		jen.Id(recv).Dot(s.base).Op("=").Id("base"),
	)
}

func (s *scope) logicalName() string {
	if a := s.t.Annotation(decl.AnnotationEntityLogicalName); a != nil {
		return a.Value("")
	}
	return ""
}

func (s *scope) property(f *jen.File, p *decl.Property) {
	name := exported(p.Name)
	if p.HasGet() {
		comments(f, name, p.Doc, p.Annotations)
		f.Func().Params(s.receiver()).Id(name).Params().Add(s.goType(p.Type)).Block(s.stmts(p.Getter, p)...)
	}
	if p.HasSet() {
		if !p.HasGet() {
			comments(f, "Set"+name, p.Doc, p.Annotations)
		}
		s.params = []*decl.Param{{Name: valueParam, Type: p.Type}}
		f.Func().Params(s.receiver()).Id("Set"+name).Params(jen.Id(valueParam).Add(s.goType(p.Type))).Block(s.stmts(p.Setter, p)...)
		s.params = nil
	}
}

// method renders m as a method, or as a package function named
// prefix+Name when it is static.
func (s *scope) method(f *jen.File, m *decl.Method, prefix string) {
	saved := s.records
	s.records = make(map[string]bool, len(saved))
	for k, v := range saved {
		s.records[k] = v
	}
	decls, _ := s.typeParams(m.TypeParams)
	s.params = m.Params
	defer func() { s.records, s.params = saved, nil }()

	name := prefix + exported(m.Name)
	if m.Doc != "" {
		f.Comment(name + " " + lowerFirst(oneLine(m.Doc)))
	}
	fn := f.Func()
	if !m.Static && !s.t.Static {
		fn.Params(s.receiver())
	}
	fn.Id(name)
	if len(decls) > 0 {
		fn.Types(decls...)
	}
	fn.Params(s.paramList(m.Params)...)
	if m.Returns != nil {
		fn.Add(s.goType(m.Returns))
	}
	fn.Block(s.stmts(m.Body, nil)...)
}

// static renders a static class: constants become the fields of a struct
// variable and methods become package functions.
func (s *scope) static(f *jen.File, prefix string) {
	var fields []jen.Code
	values := jen.Dict{}
	for _, m := range s.t.Members {
		c, ok := m.(*decl.Field)
		if !ok || !c.Const {
			continue
		}
		fields = append(fields, jen.Id(exported(c.Name)).Add(s.goType(c.Type)))
		values[jen.Id(exported(c.Name))] = jen.Lit(c.Value)
	}
	if len(fields) > 0 {
		switch {
		case s.t.Doc != "":
			comments(f, s.name, s.t.Doc, nil)
		case prefix != "":
			f.Commentf("%s holds the field names of %s.", s.name, prefix)
		}
		f.Var().Id(s.name).Op("=").Struct(fields...).Values(values)
	}
	for _, m := range s.t.Members {
		if m, ok := m.(*decl.Method); ok {
			s.method(f, m, prefix)
		}
	}
}

func (s *scope) enum(f *jen.File) {
	comments(f, s.name, s.t.Doc, s.t.Annotations)
	f.Type().Id(s.name).Int32()
	var (
		defs  []jen.Code
		cases []jen.Code
		seen  = make(map[int]bool)
	)
	for _, m := range s.t.Members {
		v, ok := m.(*decl.EnumValue)
		if !ok {
			continue
		}
		name := s.name + "_" + v.Name
		if v.Doc != "" {
			defs = append(defs, jen.Comment(name+": "+oneLine(v.Doc)))
		}
		defs = append(defs, jen.Id(name).Id(s.name).Op("=").Lit(v.Value))
		if !seen[v.Value] {
			seen[v.Value] = true
			cases = append(cases, jen.Case(jen.Id(name)).Block(jen.Return(jen.Lit(v.Name))))
		}
	}
	if len(defs) > 0 {
		f.Const().Defs(defs...)
	}
	body := []jen.Code{jen.Return(jen.Qual("strconv", "Itoa").Call(jen.Int().Parens(jen.Id("v"))))}
	if len(cases) > 0 {
		body = append([]jen.Code{jen.Switch(jen.Id("v")).Block(cases...)}, body...)
	}
	f.Func().Params(jen.Id("v").Id(s.name)).Id("String").Params().String().Block(body...)
}

// goType spells a type reference. Declared classes and nullable value
// types are pointers, collections are slices and record type parameters
// are spelled through their pointer companion.
func (s *scope) goType(t *decl.TypeRef) *jen.Statement {
	switch {
	case t == nil:
		return jen.Null()
	case t.IsCollection():
		return jen.Index().Add(s.goType(t.Elem))
	case t.Param:
		if s.records[t.Name] {
			return jen.Id("P" + t.Name)
		}
		return jen.Id(t.Name)
	case t.Builtin:
		b := s.builtin(t)
		if t.Nullable && t.IsValueType() {
			return jen.Op("*").Add(b)
		}
		return b
	}
	if s.kinds[t.Name] == decl.Enum {
		if t.Nullable {
			return jen.Op("*").Id(exported(t.Name))
		}
		return jen.Id(exported(t.Name))
	}
	return jen.Op("*").Id(exported(t.Name))
}

func (s *scope) builtin(t *decl.TypeRef) *jen.Statement {
	switch t.Name {
	case decl.Bool:
		return jen.Bool()
	case decl.Int32:
		return jen.Int32()
	case decl.Int64:
		return jen.Int64()
	case decl.Decimal, decl.Double:
		return jen.Float64()
	case decl.String:
		return jen.String()
	case decl.DateTime:
		return jen.Qual("time", "Time")
	case decl.Guid:
		return jen.Qual(uuidPkg, "UUID")
	case decl.Bytes:
		return jen.Index().Byte()
	case decl.Object:
		return jen.Any()
	case decl.Queryable:
		if len(t.Args) != 1 {
			s.fail("queryable takes one type argument, got %d", len(t.Args))
			return jen.Null()
		}
		return jen.Op("*").Qual(xrmPkg, "Query").Types(s.recordType(t.Args[0]), s.goType(t.Args[0]))
	case decl.OptionSetValueList, decl.EntityReferenceList, decl.QueryBase:
		return jen.Qual(xrmPkg, t.Name)
	case decl.Service:
		return jen.Qual(xrmPkg, "OrganizationService")
	case decl.ServiceContext:
		return jen.Op("*").Qual(xrmPkg, "ServiceContext")
	case decl.PropertyChanged, decl.PropertyChanging:
		return jen.Qual(xrmPkg, t.Name+"Notifier")
	default:
		return jen.Op("*").Qual(xrmPkg, t.Name)
	}
}

// recordType spells the struct type of a record reference, the first type
// argument of the runtime record helpers.
func (s *scope) recordType(t *decl.TypeRef) *jen.Statement {
	switch {
	case t.Param:
		return jen.Id(t.Name)
	case t.Is(decl.Entity):
		return jen.Qual(xrmPkg, "Entity")
	default:
		return jen.Id(exported(t.Name))
	}
}

// enumType spells the enum type argument of the runtime enum helpers.
func (s *scope) enumType(t *decl.TypeRef) *jen.Statement {
	if t.Param {
		return jen.Id(t.Name)
	}
	return jen.Id(exported(t.Name))
}

func (s *scope) zero(t *decl.TypeRef) jen.Code {
	switch {
	case t == nil, t.IsCollection(), t.Param, t.Nullable:
		return jen.Nil()
	case t.Builtin:
		switch t.Name {
		case decl.Bool:
			return jen.False()
		case decl.Int32, decl.Int64, decl.Decimal, decl.Double:
			return jen.Lit(0)
		case decl.String:
			return jen.Lit("")
		case decl.DateTime:
			return jen.Qual("time", "Time").Values()
		case decl.Guid:
			return jen.Qual(uuidPkg, "Nil")
		}
		return jen.Nil()
	case s.kinds[t.Name] == decl.Enum:
		return jen.Lit(0)
	}
	return jen.Nil()
}

func (s *scope) stmts(body []*decl.Stmt, p *decl.Property) []jen.Code {
	out := make([]jen.Code, 0, len(body))
	for _, st := range body {
		out = append(out, s.stmt(st, p))
	}
	return out
}

// param returns the i-th parameter of the body being rendered.
func (s *scope) param(i int) *jen.Statement {
	if i >= len(s.params) {
		s.fail("statement needs parameter %d, body has %d", i, len(s.params))
		return jen.Null()
	}
	return jen.Id(s.params[i].Name)
}

func role(r string) jen.Code {
	switch r {
	case "Referencing", "Referenced":
		return jen.Qual(xrmPkg, r)
	}
	return jen.Qual(xrmPkg, "RoleNone")
}

func (s *scope) stmt(st *decl.Stmt, p *decl.Property) jen.Code {
	key := jen.Lit(st.Key)
	value := jen.Id(valueParam)
	switch st.Op {
	case decl.OpGetAttribute:
		return jen.Return(jen.Qual(xrmPkg, "GetAttributeValue").Types(s.goType(st.Type)).Call(s.record(), key))
	case decl.OpSetAttribute:
		return jen.Id(recv).Dot("SetAttributeValue").Call(key, value)
	case decl.OpGetFormatted:
		return jen.Return(jen.Id(recv).Dot("FormattedValue").Call(key))
	case decl.OpGetCollection:
		return jen.Return(jen.Qual(xrmPkg, "GetEntityCollection").Types(s.recordType(st.Type.Elem)).Call(s.record(), key))
	case decl.OpSetCollection:
		return jen.Qual(xrmPkg, "SetEntityCollection").Call(s.record(), key, value)
	case decl.OpGetEnum:
		if st.Key == "" {
			return jen.Return(jen.Qual(xrmPkg, "OptionValue").Call(s.param(0), s.param(1)))
		}
		return jen.Return(jen.Qual(xrmPkg, "GetEnum").Types(s.enumType(st.Type)).Call(s.record(), key))
	case decl.OpSetEnum:
		return jen.Qual(xrmPkg, "SetEnum").Call(s.record(), key, value)
	case decl.OpGetMultiEnum:
		if st.Key == "" {
			return jen.Return(jen.Qual(xrmPkg, "GetMultiEnum").Types(s.enumType(st.Type)).Call(s.param(0), s.param(1)))
		}
		return jen.Return(jen.Qual(xrmPkg, "GetMultiEnum").Types(s.enumType(st.Type)).Call(s.record(), key))
	case decl.OpSetMultiEnum:
		if st.Key == "" {
			return jen.Return(jen.Qual(xrmPkg, "MultiEnumValue").Call(s.param(2)))
		}
		return jen.Qual(xrmPkg, "SetMultiEnum").Call(s.record(), key, value)
	case decl.OpSyncID:
		id := jen.Id(recv).Dot("Entity").Dot("ID")
		if st.Type == nil || !st.Type.Nullable {
			return id.Op("=").Add(value)
		}
		return jen.If(value.Clone().Op("!=").Nil()).Block(
			id.Clone().Op("=").Op("*").Id(valueParam),
		).Else().Block(
			id.Clone().Op("=").Qual(uuidPkg, "Nil"),
		)
	case decl.OpGetID:
		return jen.Return(jen.Id(recv).Dot("Entity").Dot("ID"))
	case decl.OpSetID:
		return jen.Id(recv).Dot("Entity").Dot("ID").Op("=").Add(value)
	case decl.OpSetProperty:
		arg := value
		if target, ok := s.t.Member(st.Key).(*decl.Property); ok && target.Type.Nullable && p != nil && !p.Type.Nullable {
			arg = jen.Op("&").Id(valueParam)
		}
		return jen.Id(recv).Dot("Set" + exported(st.Key)).Call(arg)
	case decl.OpGetRelated:
		return jen.Return(jen.Qual(xrmPkg, "GetRelatedEntity").Types(s.recordType(st.Type)).Call(s.record(), key, role(st.Role)))
	case decl.OpSetRelated:
		return jen.Qual(xrmPkg, "SetRelatedEntity").Call(s.record(), key, role(st.Role), value)
	case decl.OpGetRelatedMany:
		return jen.Return(jen.Qual(xrmPkg, "GetRelatedEntities").Types(s.recordType(st.Type)).Call(s.record(), key, role(st.Role)))
	case decl.OpSetRelatedMany:
		return jen.Qual(xrmPkg, "SetRelatedEntities").Call(s.record(), key, role(st.Role), value)
	case decl.OpNotifyChanging:
		return jen.Id(recv).Dot("OnPropertyChanging").Call(key)
	case decl.OpNotifyChanged:
		return jen.Id(recv).Dot("OnPropertyChanged").Call(key)
	case decl.OpGetParameter:
		return jen.Return(jen.Qual(xrmPkg, "GetParameter").Types(s.goType(st.Type)).Call(s.record(), key))
	case decl.OpSetParameter:
		return jen.Id(recv).Dot("SetParameter").Call(key, value)
	case decl.OpGetResult:
		return jen.Return(jen.Qual(xrmPkg, "GetResult").Types(s.goType(st.Type)).Call(s.record(), key))
	case decl.OpCreateQuery:
		return jen.Return(jen.Qual(xrmPkg, "CreateQuery").Types(s.recordType(st.Type)).Call(s.record(), key))
	case decl.OpAssign:
		return s.assign(st.Key, s.literal(st))
	case decl.OpAssignNew:
		return s.assign(st.Key, s.fresh(st.Type))
	case decl.OpRaise:
		event := jen.Id(recv).Dot(exported(st.Key))
		return jen.If(event.Clone().Op("!=").Nil()).Block(
			event.Clone().Call(jen.Id(recv), s.param(0)),
		)
	}
	s.fail("unsupported statement %s", st.Op)
	return jen.Null()
}

// assign sets the property named key through its setter, or the field of
// that name.
func (s *scope) assign(key string, v jen.Code) jen.Code {
	if p, ok := s.t.Member(key).(*decl.Property); ok && p.HasSet() {
		return jen.Id(recv).Dot("Set" + exported(key)).Call(v)
	}
	return jen.Id(recv).Dot(exported(key)).Op("=").Add(v)
}

func (s *scope) literal(st *decl.Stmt) jen.Code {
	switch v := st.Value.(type) {
	case nil:
		return s.zero(st.Type)
	case decl.ParamValue:
		return jen.Id(string(v))
	default:
		return jen.Lit(v)
	}
}

// fresh returns a new empty value of t.
func (s *scope) fresh(t *decl.TypeRef) jen.Code {
	switch {
	case t.Param && s.records[t.Name]:
		return jen.Qual(xrmPkg, "NewRecord").Types(jen.Id(t.Name), jen.Id("P"+t.Name)).Call()
	case t.Is(decl.Entity), !t.Builtin && !t.Param && s.kinds[t.Name] == decl.Class:
		return jen.Qual(xrmPkg, "NewRecord").Types(s.recordType(t)).Call()
	}
	return s.zero(t)
}

// comments writes the doc comment of a declaration followed by its
// annotations as //xrm: directives.
func comments(f *jen.File, name, doc string, as []*decl.Annotation) {
	if doc != "" {
		f.Comment(name + ": " + oneLine(doc))
	}
	for _, a := range as {
		if a.Name == decl.AnnotationObsolete {
			f.Comment("Deprecated: " + name + " maps a deprecated attribute.")
		}
		if d := directive(a); d != "" {
			f.Comment(d)
		}
	}
}

// directive spells an annotation as a //xrm: comment. The name is
// lowercased so gofmt keeps the line as a directive. Generated code
// markers are rendered in the file header instead.
func directive(a *decl.Annotation) string {
	if a.Name == decl.AnnotationGeneratedCode || a.Name == decl.AnnotationEnumMember {
		return ""
	}
	var b strings.Builder
	b.WriteString("//xrm:")
	b.WriteString(strings.ToLower(a.Name))
	for _, arg := range a.Args {
		b.WriteByte(' ')
		if arg.Key != "" {
			b.WriteString(arg.Key)
			b.WriteByte('=')
		}
		v := arg.Value
		if v == "" || strings.ContainsAny(v, " \t\"=") {
			v = strconv.Quote(v)
		}
		b.WriteString(v)
	}
	return b.String()
}

func exported(name string) string {
	if name == "" {
		return name
	}
	return inflect.Capitalize(name)
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// goFileName turns name into a file name the go tool builds
// unconditionally.
func goFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || s[0] == '_' {
		s = "x" + s
	}
	if constrained(s) {
		s += "_gen"
	}
	return s
}

// constrained reports whether the go tool reads a build constraint or a
// test marker from the file name s.
func constrained(s string) bool {
	parts := strings.Split(s, "_")
	n := len(parts)
	if n < 2 {
		return false
	}
	last := parts[n-1]
	return last == "test" || knownOS[last] || knownArch[last]
}

var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true,
	"nacl": true, "netbsd": true, "openbsd": true, "plan9": true, "solaris": true,
	"wasip1": true, "windows": true, "zos": true,
}

var knownArch = map[string]bool{
	"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true,
	"arm64": true, "arm64be": true, "loong64": true, "mips": true, "mipsle": true,
	"mips64": true, "mips64le": true, "mips64p32": true, "mips64p32le": true, "ppc": true,
	"ppc64": true, "ppc64le": true, "riscv": true, "riscv64": true, "s390": true,
	"s390x": true, "sparc": true, "sparc64": true, "wasm": true,
}
