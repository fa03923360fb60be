package diagnostic

import (
	"context"

	"github.com/lumenlang/lumen/pkg/filebuffer"
)

// WithSources attaches sources to ctx for Sources to return. Color-mode
// context (the teacher's WithColor/Color) is dropped along with colored
// rendering.
func WithSources(ctx context.Context, sources *filebuffer.BufferLookup) context.Context {
	return filebuffer.WithBuffers(ctx, sources)
}

// Sources returns the FileBuffers attached to ctx (by WithSources), the set
// SpanError.Pretty quotes source lines from.
func Sources(ctx context.Context) *filebuffer.BufferLookup {
	return filebuffer.Buffers(ctx)
}
