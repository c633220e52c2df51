// Package render implements the render walker: the part of the engine that
// turns a parsed source fragment into an output document by walking it
// depth-first, evaluating control attributes, and dispatching custom tags
// and namespaces to the registry.
package render

import (
	"io"
	"log/slog"
	"os"
)

// Tracer observes node entry, exit, and failure as the walker descends the
// source tree. line is always the source element's line, including for the
// siblings an outer repeat adds to the output.
type Tracer interface {
	Enter(uri, name string, line int)
	Leave(uri, name string, line int)
	Error(uri, name string, line int, err error)
}

// NoopTracer discards every event.
func NoopTracer() Tracer {
	return discardTracer{}
}

type discardTracer struct{}

func (discardTracer) Enter(string, string, int)        {}
func (discardTracer) Leave(string, string, int)        {}
func (discardTracer) Error(string, string, int, error) {}

type stdioTracer struct {
	logger *slog.Logger
}

// Stdout returns a Tracer that logs to os.Stdout.
func Stdout() Tracer {
	return stdioTracer{logger: stdioLogger(os.Stdout)}
}

// Stderr returns a Tracer that logs to os.Stderr.
func Stderr() Tracer {
	return stdioTracer{logger: stdioLogger(os.Stderr)}
}

func stdioLogger(w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{Level: slog.LevelDebug}
	return slog.New(slog.NewTextHandler(w, &opts))
}

func (t stdioTracer) Enter(uri, name string, line int) {
	t.logger.Debug("enter node", "uri", uri, "name", name, "line", line)
}

func (t stdioTracer) Leave(uri, name string, line int) {
	t.logger.Debug("leave node", "uri", uri, "name", name, "line", line)
}

func (t stdioTracer) Error(uri, name string, line int, err error) {
	t.logger.Error("node failed", "uri", uri, "name", name, "line", line, "err", err.Error())
}
