// Package render turns the declaration units of a generation run into
// source files. A Renderer spells out one language; the Writer renders
// units in parallel and writes them below the output directory.
package render

import (
	"path/filepath"
	"strings"

	"github.com/syssam/modelbuilder/compiler/gen"
)

// Renderer renders declaration units in one output language.
type Renderer interface {
	// Name returns the language name.
	Name() string
	// Path returns the output path of u, relative to the output directory
	// unless u names its own file.
	Path(u *gen.Unit) string
	// Render returns the source of u.
	Render(u *gen.Unit) ([]byte, error)
}

// Formatter is implemented by renderers that post-process rendered source.
type Formatter interface {
	Format(path string, src []byte) ([]byte, error)
}

// New returns the renderer of the configured language. The Go renderer
// indexes the types of res to resolve references across units.
func New(cfg *gen.Config, res *gen.Result) (Renderer, error) {
	switch strings.ToLower(cfg.Language) {
	case "", gen.LanguageGo:
		return NewGo(PackageName(cfg), res), nil
	case gen.LanguageYAML:
		return NewYAML(), nil
	default:
		return nil, gen.NewConfigError("Language", cfg.Language, "supported languages are go and yaml")
	}
}

// PackageName derives the Go package name of a run from the namespace,
// falling back to the output location.
func PackageName(cfg *gen.Config) string {
	candidates := []string{cfg.Namespace}
	if cfg.SplitFiles {
		candidates = append(candidates, filepath.Base(cfg.OutDirectory))
	} else if cfg.OutFile != "" {
		candidates = append(candidates, filepath.Base(filepath.Dir(cfg.OutFile)))
	}
	for _, c := range candidates {
		if name := sanitizePackage(c); name != "" {
			return name
		}
	}
	return "model"
}

// sanitizePackage keeps the last dotted segment of name, lower-cased and
// stripped to letters, digits and underscores.
func sanitizePackage(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "_" || goKeywords[s] {
		return ""
	}
	return s
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}
