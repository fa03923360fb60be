// Package persistence implements the on-disk snapshot format of §4.9: a
// 25-byte header followed by an optionally gzip-compressed payload of
// data ‖ index ‖ metadata sections.
package persistence

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumenlang/lumen/codebase"
	"github.com/lumenlang/lumen/hash"
)

const (
	magic      = "VBIN"
	version    = 1
	headerSize = 25
)

const (
	compressionNone byte = 0
	compressionGzip byte = 1
)

// IndexEntry describes one stored definition's location within data.
type IndexEntry struct {
	Kind    string   `json:"kind"` // "term" or "type"
	Offset  int64    `json:"offset"`
	Size    int64    `json:"size"`
	DepHash []string `json:"dep_hash"`
}

// Metadata records snapshot-wide bookkeeping, including the namespace
// rollups supplemented per SPEC_FULL.md's persistence section.
type Metadata struct {
	TermCount  int            `json:"term_count"`
	SavedAt    time.Time      `json:"saved_at"`
	Namespaces map[string]int `json:"namespaces"` // namespace prefix -> definition count
	Names      map[string]string `json:"names"`  // name -> hash hex, since hash payloads carry no name
}

// encodedDef is one definition's encoded payload, produced concurrently by
// Save's encode pass and then assembled in a fixed order.
type encodedDef struct {
	hash    string
	payload []byte
	deps    []string
}

// Save writes a snapshot of cb to w, gzip-compressed, per §4.9. Encoding
// each definition's term/type payload is independent work, so it runs
// concurrently via errgroup before the (inherently sequential) offset
// bookkeeping that assembles the data section.
func Save(w io.Writer, cb *codebase.Codebase) error {
	defs := cb.Definitions()
	encoded := make([]encodedDef, len(defs))

	var g errgroup.Group
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			payload := hash.EncodeExpr(def.Content)
			typePayload := hash.EncodeType(def.Type)

			var deps []string
			for d := range def.Dependencies {
				deps = append(deps, d.String())
			}
			encoded[i] = encodedDef{
				hash:    def.Hash.String(),
				payload: append(payload, typePayload...),
				deps:    deps,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("persistence: encode: %w", err)
	}

	var data bytes.Buffer
	index := map[string]IndexEntry{}
	for _, e := range encoded {
		offset := int64(data.Len())
		data.Write(e.payload)
		index[e.hash] = IndexEntry{
			Kind:    "term",
			Offset:  offset,
			Size:    int64(len(e.payload)),
			DepHash: e.deps,
		}
	}

	indexBytes, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("persistence: marshal index: %w", err)
	}

	names := cb.Names()
	namesByHash := map[string]string{}
	namespaces := map[string]int{}
	for _, name := range names {
		def, ok := cb.Resolve(name)
		if !ok {
			continue
		}
		namesByHash[name] = def.Hash.String()
		namespaces[namespacePrefix(name)]++
	}
	meta := Metadata{TermCount: len(index), Names: namesByHash, Namespaces: namespaces}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("persistence: marshal metadata: %w", err)
	}

	indexOffset := int64(headerSize) + int64(data.Len())
	metadataOffset := indexOffset + int64(len(indexBytes))

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], version)
	binary.LittleEndian.PutUint64(header[8:16], uint64(indexOffset))
	binary.LittleEndian.PutUint64(header[16:24], uint64(metadataOffset))
	header[24] = compressionGzip

	if _, err := w.Write(header); err != nil {
		return err
	}

	gw := gzip.NewWriter(w)
	if _, err := gw.Write(data.Bytes()); err != nil {
		return err
	}
	if _, err := gw.Write(indexBytes); err != nil {
		return err
	}
	if _, err := gw.Write(metaBytes); err != nil {
		return err
	}
	return gw.Close()
}

// Load reads a snapshot from r and reconstructs its codebase.
func Load(r io.Reader) (*codebase.Codebase, *Metadata, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("persistence: read header: %w", err)
	}
	if string(header[0:4]) != magic {
		return nil, nil, fmt.Errorf("persistence: bad magic %q", header[0:4])
	}
	ver := binary.LittleEndian.Uint32(header[4:8])
	if ver != version {
		return nil, nil, fmt.Errorf("persistence: unsupported version %d", ver)
	}
	indexOffset := int64(binary.LittleEndian.Uint64(header[8:16]))
	metadataOffset := int64(binary.LittleEndian.Uint64(header[16:24]))
	compression := header[24]

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var inflated []byte
	switch compression {
	case compressionNone:
		inflated = rest
	case compressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(rest))
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: gzip: %w", err)
		}
		inflated, err = io.ReadAll(gr)
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: inflate: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("persistence: unknown compression flag %d", compression)
	}

	// Offsets are absolute as if header+payload were laid out contiguously;
	// adjust by subtracting headerSize before indexing the inflated buffer.
	indexStart := indexOffset - headerSize
	metadataStart := metadataOffset - headerSize
	if indexStart < 0 || metadataStart < int64(indexStart) || metadataStart > int64(len(inflated)) {
		return nil, nil, fmt.Errorf("persistence: corrupt offsets")
	}

	data := inflated[:indexStart]
	indexBytes := inflated[indexStart:metadataStart]
	metaBytes := inflated[metadataStart:]

	var index map[string]IndexEntry
	if err := json.Unmarshal(indexBytes, &index); err != nil {
		return nil, nil, fmt.Errorf("persistence: unmarshal index: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, fmt.Errorf("persistence: unmarshal metadata: %w", err)
	}

	cb := codebase.New()
	hashToName := map[string]string{}
	for name, h := range meta.Names {
		hashToName[h] = name
	}

	for h, entry := range index {
		if entry.Offset < 0 || entry.Offset+entry.Size > int64(len(data)) {
			return nil, nil, fmt.Errorf("persistence: entry out of range")
		}
		payload := data[entry.Offset : entry.Offset+entry.Size]
		expr, consumed, err := hash.DecodeExprPrefix(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: decode expr: %w", err)
		}
		ty, err := hash.DecodeType(payload[consumed:])
		if err != nil {
			return nil, nil, fmt.Errorf("persistence: decode type: %w", err)
		}
		cb.AddTerm(hashToName[h], expr, ty)
	}

	return cb, &meta, nil
}

func namespacePrefix(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}
