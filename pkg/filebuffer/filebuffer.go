// Package filebuffer tracks a source file's bytes alongside its line
// offsets, so a diagnostic can recover the text around a span without
// re-reading or re-scanning the file. Adapted from the teacher's own
// filebuffer package; the buildkit solver source-map caching it originally
// supported has no counterpart here and is dropped.
package filebuffer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/lumenlang/lumen/ast"
)

type buffersKey struct{}

func WithBuffers(ctx context.Context, buffers *BufferLookup) context.Context {
	return context.WithValue(ctx, buffersKey{}, buffers)
}

func Buffers(ctx context.Context) *BufferLookup {
	buffers, ok := ctx.Value(buffersKey{}).(*BufferLookup)
	if !ok {
		return NewBuffers()
	}
	return buffers
}

// BufferLookup is a concurrency-safe registry of FileBuffers by filename.
type BufferLookup struct {
	fbs map[string]*FileBuffer
	mu  sync.Mutex
}

func NewBuffers() *BufferLookup {
	return &BufferLookup{
		fbs: make(map[string]*FileBuffer),
	}
}

func (b *BufferLookup) Get(filename string) *FileBuffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fbs[filename]
}

func (b *BufferLookup) Set(filename string, fb *FileBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fbs[filename] = fb
}

func (b *BufferLookup) All() []*FileBuffer {
	var filenames []string
	for filename := range b.fbs {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)
	var fbs []*FileBuffer
	for _, filename := range filenames {
		fbs = append(fbs, b.Get(filename))
	}
	return fbs
}

// FileBuffer accumulates one source file's bytes as they're written (e.g.
// while loading a workspace file or REPL draft) and records the byte offset
// of each newline, so Position/Segment/Line can translate between offsets
// and line/column without rescanning from the start each time.
type FileBuffer struct {
	filename string
	buf      bytes.Buffer
	offset   int
	offsets  []int
	mu       sync.Mutex
}

func New(filename string) *FileBuffer {
	return &FileBuffer{filename: filename}
}

func (fb *FileBuffer) Filename() string {
	return fb.filename
}

func (fb *FileBuffer) Len() int {
	return len(fb.offsets)
}

func (fb *FileBuffer) Bytes() []byte {
	return fb.buf.Bytes()
}

func (fb *FileBuffer) Write(p []byte) (n int, err error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	n, err = fb.buf.Write(p)

	start := 0
	index := bytes.IndexByte(p[:n], byte('\n'))
	for index >= 0 {
		fb.offsets = append(fb.offsets, fb.offset+start+index)
		start += index + 1
		index = bytes.IndexByte(p[start:n], byte('\n'))
	}
	fb.offset += n

	return n, err
}

// Position translates a 1-based line/column into an ast.Position with the
// matching byte offset.
func (fb *FileBuffer) Position(line, column int) ast.Position {
	var offset int
	if line-2 < 0 {
		offset = column - 1
	} else {
		offset = fb.offsets[line-2] + column
	}
	return ast.Position{
		Filename: fb.filename,
		Offset:   offset,
		Line:     line,
		Column:   column,
	}
}

// Segment returns the full line containing offset.
func (fb *FileBuffer) Segment(offset int) ([]byte, error) {
	if len(fb.offsets) == 0 {
		return fb.buf.Bytes(), nil
	}

	index := fb.findNearestLineIndex(offset)
	start := 0
	if index >= 0 {
		start = fb.offsets[index] + 1
	}

	if start > fb.buf.Len()-1 {
		return nil, io.EOF
	}

	var end int
	if offset < fb.offsets[len(fb.offsets)-1] {
		end = fb.offsets[index+1]
	} else {
		end = fb.buf.Len()
	}

	return fb.read(start, end)
}

// Line returns the 0-indexed ln-th line.
func (fb *FileBuffer) Line(ln int) ([]byte, error) {
	if ln > len(fb.offsets) {
		return nil, fmt.Errorf("line %d outside of offsets", ln)
	}

	start := 0
	if ln > 0 {
		start = fb.offsets[ln-1] + 1
	}

	end := fb.buf.Len()
	if ln < len(fb.offsets) {
		end = fb.offsets[ln]
	}

	return fb.read(start, end)
}

func (fb *FileBuffer) findNearestLineIndex(offset int) int {
	index := sort.Search(len(fb.offsets), func(i int) bool {
		return fb.offsets[i] >= offset
	})

	if index < len(fb.offsets) {
		if fb.offsets[index] < offset {
			return index
		}
		return index - 1
	}
	// Offset is further than any newline; the last newline is nearest.
	return index - 1
}

func (fb *FileBuffer) read(start, end int) ([]byte, error) {
	r := bytes.NewReader(fb.buf.Bytes())

	_, err := r.Seek(int64(start), io.SeekStart)
	if err != nil {
		return nil, err
	}

	line := make([]byte, end-start)
	n, err := r.Read(line)
	if err != nil && err != io.EOF {
		return nil, err
	}

	return line[:n], nil
}
