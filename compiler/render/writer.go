package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/modelbuilder/compiler/gen"
)

// Writer renders units in parallel and writes them to disk.
type Writer struct {
	r       Renderer
	outDir  string
	workers int
	log     *zap.Logger

	mu      sync.Mutex
	metrics Metrics
}

// Metrics tracks what a Writer produced.
type Metrics struct {
	FilesWritten int
	TotalBytes   int64
	RenderTime   time.Duration
	FormatTime   time.Duration
	WriteTime    time.Duration
}

// NewWriter returns a writer placing relative unit paths below outDir.
func NewWriter(r Renderer, outDir string) *Writer {
	return &Writer{
		r:       r,
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		log:     zap.NewNop(),
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithLogger sets the logger.
func (w *Writer) WithLogger(l *zap.Logger) *Writer {
	if l != nil {
		w.log = l
	}
	return w
}

// Metrics returns a snapshot of the writer metrics.
func (w *Writer) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write renders and writes units. Two units resolving to the same path
// are rejected before anything is written.
func (w *Writer) Write(ctx context.Context, units []*gen.Unit) error {
	paths := make(map[string]string, len(units))
	tasks := make([]writeTask, 0, len(units))
	for _, u := range units {
		path := w.path(u)
		if other, ok := paths[path]; ok {
			return gen.NewGenerationError("write", u.Base, fmt.Sprintf("output path %s already written by %s", path, other), nil)
		}
		paths[path] = u.Base
		tasks = append(tasks, writeTask{unit: u, path: path})
	}
	if w.outDir != "" {
		if err := os.MkdirAll(w.outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, t := range tasks {
		t := t
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.write(t)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	m := w.Metrics()
	w.log.Info("files written",
		zap.String("language", w.r.Name()),
		zap.Int("files", m.FilesWritten),
		zap.Int64("bytes", m.TotalBytes))
	return nil
}

type writeTask struct {
	unit *gen.Unit
	path string
}

func (w *Writer) path(u *gen.Unit) string {
	p := w.r.Path(u)
	if u.File != "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.outDir, p)
}

func (w *Writer) write(t writeTask) error {
	start := time.Now()
	src, err := w.r.Render(t.unit)
	if err != nil {
		return gen.NewGenerationError("render", t.unit.Base, "render failed", err)
	}
	rendered := time.Now()

	if f, ok := w.r.(Formatter); ok {
		formatted, err := f.Format(t.path, src)
		if err != nil {
			// Keep the unformatted source around for debugging.
			debugPath := t.path + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, src, 0o644)
			return gen.NewGenerationError("format", t.unit.Base, "unformatted source written to "+debugPath, err)
		}
		src = formatted
	}
	formatted := time.Now()

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", t.path, err)
	}
	if err := os.WriteFile(t.path, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	w.log.Debug("file written", zap.String("path", t.path), zap.Int("bytes", len(src)))

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(src))
	w.metrics.RenderTime += rendered.Sub(start)
	w.metrics.FormatTime += formatted.Sub(rendered)
	w.metrics.WriteTime += time.Since(formatted)
	w.mu.Unlock()
	return nil
}

// Write renders the units of res in the configured language. Split runs
// write below the output directory, single-file runs to the output file.
func Write(ctx context.Context, cfg *gen.Config, res *gen.Result, log *zap.Logger) (Metrics, error) {
	r, err := New(cfg, res)
	if err != nil {
		return Metrics{}, err
	}
	outDir := ""
	if cfg.SplitFiles {
		outDir = cfg.OutDirectory
	}
	w := NewWriter(r, outDir).WithWorkers(cfg.Workers).WithLogger(log)
	if err := w.Write(ctx, res.Units); err != nil {
		return w.Metrics(), err
	}
	return w.Metrics(), nil
}
