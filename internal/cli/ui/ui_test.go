package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/compiler/render"
)

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	err := Summary(&buf, gen.Stats{Entities: 12, OptionSets: 3, SkippedPairs: 1}, render.Metrics{FilesWritten: 16, TotalBytes: 4096}, 1500*time.Millisecond)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Entities")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "Skipped pairs")
	assert.Contains(t, out, "4096")
	assert.Contains(t, out, "generated in 1.5s")
}

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "wrote %d files", 2)
	Step(&buf, "reading %s", "metadata")
	Error(&buf, errors.New("boom"))
	out := buf.String()
	assert.Contains(t, out, "wrote 2 files")
	assert.Contains(t, out, "reading metadata")
	assert.Contains(t, out, "Error: boom")
}
