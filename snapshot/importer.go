package snapshot

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/vxengine/vxengine/vxerr"
)

// ChunkSource yields snapshot chunks in order. Next reports ok=false
// once the source is exhausted; a non-nil error aborts the import
// immediately, before any atomic restore has been attempted.
type ChunkSource interface {
	Next() (chunk Chunk, ok bool, err error)
}

// sliceChunkSource adapts a pre-collected []Chunk (as produced by
// Exporter.ExportToMemory) to ChunkSource.
type sliceChunkSource struct {
	chunks []Chunk
	idx    int
}

func (s *sliceChunkSource) Next() (Chunk, bool, error) {
	if s.idx >= len(s.chunks) {
		return Chunk{}, false, nil
	}
	c := s.chunks[s.idx]
	s.idx++
	return c, true, nil
}

// Importer restores a snapshot produced by Exporter, validating
// per-file checksums before swapping anything into place.
type Importer struct {
	db             *sql.DB
	config         SnapshotConfig
	indexFilePaths []string
}

func NewImporter(db *sql.DB, config SnapshotConfig) *Importer {
	return &Importer{db: db, config: config}
}

func NewImporterWithDefaults(db *sql.DB) *Importer {
	return NewImporter(db, DefaultSnapshotConfig())
}

// WithIndexPaths sets the destination paths ANN index files are
// restored to, in the same order metadata lists them.
func (imp *Importer) WithIndexPaths(paths []string) *Importer {
	imp.indexFilePaths = paths
	return imp
}

// Import drains src, validates the reassembled snapshot, and
// atomically restores the database and any ANN index files.
func (imp *Importer) Import(ctx context.Context, src ChunkSource) (*ImportResult, error) {
	recv, err := newChunkReceiver(imp.config.TempDir)
	if err != nil {
		return nil, err
	}
	defer recv.cleanup()

	for {
		chunk, ok, err := src.Next()
		if err != nil {
			return nil, vxerr.Wrap(vxerr.Io, err, "reading snapshot chunk stream")
		}
		if !ok {
			break
		}
		if err := recv.receive(chunk); err != nil {
			return nil, err
		}
	}

	data, err := recv.finalize()
	if err != nil {
		return nil, err
	}

	if err := imp.atomicRestore(ctx, data); err != nil {
		return nil, err
	}

	return &ImportResult{
		Success:       true,
		SnapshotID:    data.metadata.SnapshotID,
		BytesRestored: data.metadata.TotalSize,
		FilesRestored: uint32(len(data.metadata.Files)),
	}, nil
}

// ImportFromSlice is the non-streaming counterpart to
// Exporter.ExportToMemory.
func (imp *Importer) ImportFromSlice(ctx context.Context, chunks []Chunk) (*ImportResult, error) {
	return imp.Import(ctx, &sliceChunkSource{chunks: chunks})
}

// atomicRestore swaps the database via the backup API (atomic by
// virtue of SQLite's backup primitive) and renames each ANN index
// temp file onto its destination (atomic within one filesystem,
// falling back to copy+unlink across filesystems). This gives
// per-file atomicity, not a single cross-file transaction — see the
// design notes on snapshot file-level atomicity.
func (imp *Importer) atomicRestore(ctx context.Context, data *importData) error {
	if dbPath, ok := data.files["database.db"]; ok {
		if err := restoreDatabase(ctx, dbPath, imp.db); err != nil {
			return err
		}
	}

	idx := 0
	for _, f := range data.metadata.Files {
		if f.FileType != AnnIndex {
			continue
		}
		tempPath, ok := data.files[f.FileName]
		if !ok {
			continue
		}
		if idx < len(imp.indexFilePaths) {
			if err := atomicFileReplace(tempPath, imp.indexFilePaths[idx]); err != nil {
				return err
			}
		}
		idx++
	}
	return nil
}

// importData holds a fully validated, not-yet-restored snapshot: a
// completed temp file per declared file, checksums verified.
type importData struct {
	metadata *Metadata
	files    map[string]string
	tempDir  string
}

// chunkReceiver assembles arriving chunks into temp files and tracks
// the bookkeeping needed to validate the stream once it ends.
type chunkReceiver struct {
	tempDir   string
	metadata  *Metadata
	writers   map[string]*os.File
	offsets   map[string]uint64
	completed map[string]string
	sawFinal  bool
}

func newChunkReceiver(baseTempDir string) (*chunkReceiver, error) {
	dir := filepath.Join(baseTempDir, generateID("import"))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, vxerr.Wrap(vxerr.Io, err, "creating import temp directory %s", dir)
	}
	return &chunkReceiver{
		tempDir:   dir,
		writers:   map[string]*os.File{},
		offsets:   map[string]uint64{},
		completed: map[string]string{},
	}, nil
}

func (r *chunkReceiver) receive(chunk Chunk) error {
	if r.sawFinal {
		return vxerr.New(vxerr.Other, "chunk with sequence %d arrived after the final chunk", chunk.Sequence)
	}
	if chunk.Metadata != nil {
		if r.metadata != nil {
			return vxerr.New(vxerr.Other, "duplicate metadata in chunk with sequence %d", chunk.Sequence)
		}
		r.metadata = chunk.Metadata
	}
	if chunk.FileChunk != nil {
		if err := r.writeFileChunk(*chunk.FileChunk); err != nil {
			return err
		}
	}
	if chunk.IsFinal {
		r.sawFinal = true
	}
	return nil
}

func (r *chunkReceiver) writeFileChunk(fc FileChunk) error {
	w, ok := r.writers[fc.FileName]
	if !ok {
		path := filepath.Join(r.tempDir, fc.FileName)
		f, err := os.Create(path)
		if err != nil {
			return vxerr.Wrap(vxerr.Io, err, "creating import file %s", fc.FileName)
		}
		w = f
		r.writers[fc.FileName] = w
		r.offsets[fc.FileName] = 0
	}

	if r.offsets[fc.FileName] != fc.Offset {
		return vxerr.New(vxerr.Other, "out-of-order chunk for file %s: expected offset %d, got %d",
			fc.FileName, r.offsets[fc.FileName], fc.Offset)
	}
	if _, err := w.Write(fc.Data); err != nil {
		return vxerr.Wrap(vxerr.Io, err, "writing import file %s", fc.FileName)
	}
	r.offsets[fc.FileName] += uint64(len(fc.Data))

	if fc.IsLastChunk {
		if err := w.Close(); err != nil {
			return vxerr.Wrap(vxerr.Io, err, "closing import file %s", fc.FileName)
		}
		r.completed[fc.FileName] = filepath.Join(r.tempDir, fc.FileName)
		delete(r.writers, fc.FileName)
	}
	return nil
}

// finalize validates the assembled snapshot: metadata must have
// arrived, every file metadata names must have a completed temp file,
// and every file's streamed checksum must match metadata exactly.
func (r *chunkReceiver) finalize() (*importData, error) {
	for name, w := range r.writers {
		if err := w.Close(); err != nil {
			return nil, vxerr.Wrap(vxerr.Io, err, "closing import file %s", name)
		}
		r.completed[name] = filepath.Join(r.tempDir, name)
	}
	r.writers = map[string]*os.File{}

	if r.metadata == nil {
		return nil, vxerr.New(vxerr.Other, "no metadata received in snapshot")
	}

	for _, f := range r.metadata.Files {
		if _, ok := r.completed[f.FileName]; !ok {
			return nil, vxerr.New(vxerr.Other, "missing file in snapshot: %s", f.FileName)
		}
	}

	for _, f := range r.metadata.Files {
		actual, err := computeFileChecksum(r.completed[f.FileName])
		if err != nil {
			return nil, err
		}
		if actual != f.Checksum {
			return nil, vxerr.New(vxerr.Other, "checksum mismatch for file %s: expected %s, got %s",
				f.FileName, f.Checksum, actual)
		}
	}

	return &importData{metadata: r.metadata, files: r.completed, tempDir: r.tempDir}, nil
}

func (r *chunkReceiver) cleanup() {
	for _, w := range r.writers {
		_ = w.Close()
	}
	_ = os.RemoveAll(r.tempDir)
}

// atomicFileReplace renames src onto dest, creating dest's parent
// directory if needed. Rename is atomic within one filesystem; across
// filesystems it falls back to copy-then-unlink.
func atomicFileReplace(src, dest string) error {
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return vxerr.Wrap(vxerr.Io, err, "creating destination directory for %s", dest)
		}
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}
