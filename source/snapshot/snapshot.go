// Package snapshot reads and writes organization metadata snapshots, and
// serves them to the loader as a metadata source.
//
// A snapshot is a metadata.Document stored as msgpack, YAML or JSON; the
// format follows the file extension.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelbuilder/compiler/load"
	"github.com/syssam/modelbuilder/metadata"
)

// Format is the encoding of a snapshot file.
type Format string

// Snapshot formats.
const (
	Msgpack Format = "msgpack"
	YAML    Format = "yaml"
	JSON    Format = "json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk", ".mp":
		return Msgpack, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("snapshot: unknown format for %q (want .msgpack, .yaml or .json)", path)
}

// Encode encodes doc in format f.
func Encode(doc *metadata.Document, f Format) ([]byte, error) {
	switch f {
	case Msgpack:
		return load.EncodeDocument(doc)
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("snapshot: unknown format %q", f)
}

// Decode decodes a document encoded in format f.
func Decode(data []byte, f Format) (*metadata.Document, error) {
	var err error
	doc := &metadata.Document{}
	switch f {
	case Msgpack:
		doc, err = load.DecodeDocument(data)
	case YAML:
		err = yaml.Unmarshal(data, doc)
	case JSON:
		err = json.Unmarshal(data, doc)
	default:
		err = fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", f, err)
	}
	return doc, nil
}

// Read reads the snapshot at path.
func Read(path string) (*metadata.Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Decode(data, f)
}

// Write writes doc to path, creating parent directories. The file is
// replaced atomically.
func Write(path string, doc *metadata.Document) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, f)
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", f, err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
