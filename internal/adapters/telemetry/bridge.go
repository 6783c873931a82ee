package telemetry

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor by writing one line per ended
// span: "trace <name> <duration> key=value ...", with the status message
// appended for failed spans. Lines are batched so concurrent compilations
// do not interleave partial output.
type Bridge struct {
	batcher *LineBatcher
}

// NewBridge returns a Bridge writing to w.
func NewBridge(w io.Writer) *Bridge {
	var mu sync.Mutex
	return &Bridge{
		batcher: NewLineBatcher(DefaultSizeLimit, DefaultTimeLimit, func(data []byte) {
			mu.Lock()
			defer mu.Unlock()
			_, _ = w.Write(data)
		}),
	}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd renders the ended span.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}
	_, _ = io.WriteString(b.batcher, FormatSpan(s)+"\n")
}

// Shutdown flushes pending lines and stops the batcher.
func (b *Bridge) Shutdown(context.Context) error {
	return b.batcher.Close()
}

// ForceFlush writes pending lines.
func (b *Bridge) ForceFlush(context.Context) error {
	b.batcher.Flush()
	return nil
}

// FormatSpan renders a span as a single trace line. Attributes are sorted by key.
func FormatSpan(s sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "trace %s %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond))

	attrs := slices.Clone(s.Attributes())
	slices.SortFunc(attrs, func(x, y attribute.KeyValue) int {
		return strings.Compare(string(x.Key), string(y.Key))
	})
	for _, kv := range attrs {
		value := kv.Value.Emit()
		if strings.ContainsAny(value, " \t\n") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %s=%s", kv.Key, value)
	}

	if status := s.Status(); status.Code == codes.Error {
		fmt.Fprintf(&b, " error=%q", status.Description)
	}
	return b.String()
}

// Setup installs a global tracer provider that writes ended spans to w.
// The returned function flushes pending lines and shuts the provider down.
func Setup(w io.Writer) func(context.Context) error {
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(w)))
	otel.SetTracerProvider(provider)
	return provider.Shutdown
}
