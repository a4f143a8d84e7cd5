package snapshot

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/vxengine/vxengine/vxerr"
)

// Exporter produces a consistent, checksummed snapshot of db (and,
// when configured, its ANN index files) and hands back a ChunkIterator
// that streams it in the order the spec fixes: metadata first, then
// each file's bytes in metadata order, then a bare final marker.
type Exporter struct {
	db     *sql.DB
	config SnapshotConfig
}

func NewExporter(db *sql.DB, config SnapshotConfig) *Exporter {
	return &Exporter{db: db, config: config}
}

func NewExporterWithDefaults(db *sql.DB) *Exporter {
	return NewExporter(db, DefaultSnapshotConfig())
}

// Export backs up the live database, optionally copies discovered ANN
// index files, computes checksums, and returns a ChunkIterator. The
// caller owns the returned iterator and must Close it (directly or by
// draining it to exhaustion, which closes it automatically) so its
// working directory is removed.
func (e *Exporter) Export(ctx context.Context) (*ChunkIterator, error) {
	id := generateID("snap")
	exportDir := filepath.Join(e.config.TempDir, id)
	if err := os.MkdirAll(exportDir, 0o700); err != nil {
		return nil, vxerr.Wrap(vxerr.Io, err, "creating export directory %s", exportDir)
	}

	files, filePaths, err := e.collectFiles(ctx, exportDir)
	if err != nil {
		_ = os.RemoveAll(exportDir)
		return nil, err
	}

	var totalSize uint64
	for _, f := range files {
		totalSize += f.FileSize
	}

	metadata := &Metadata{
		SnapshotID:  id,
		CreatedAtMs: time.Now().UnixMilli(),
		TotalSize:   totalSize,
		Files:       files,
		Version:     Version,
		Checksum:    computeSnapshotChecksum(files),
	}

	return newChunkIterator(metadata, filePaths, e.config.ChunkSize, exportDir), nil
}

// ExportToMemory is a convenience, non-streaming variant that collects
// every chunk into a slice; useful for in-memory databases and tests,
// not for snapshots large enough to need streaming.
func (e *Exporter) ExportToMemory(ctx context.Context) ([]Chunk, error) {
	it, err := e.Export(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var chunks []Chunk
	for {
		chunk, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return chunks, nil
		}
		chunks = append(chunks, chunk)
	}
}

func (e *Exporter) collectFiles(ctx context.Context, exportDir string) ([]FileInfo, map[string]string, error) {
	dbPath := filepath.Join(exportDir, "database.db")
	dbSize, err := backupDatabase(ctx, e.db, dbPath)
	if err != nil {
		return nil, nil, err
	}
	dbChecksum, err := computeFileChecksum(dbPath)
	if err != nil {
		return nil, nil, err
	}

	files := []FileInfo{{
		FileName: "database.db",
		FileType: RelationalDb,
		FileSize: uint64(dbSize),
		Checksum: dbChecksum,
	}}
	filePaths := map[string]string{"database.db": dbPath}

	if !e.config.IncludeIndexFiles {
		return files, filePaths, nil
	}

	indexPaths, err := getIndexFiles(ctx, e.db)
	if err != nil {
		return nil, nil, err
	}

	for i, src := range indexPaths {
		if _, err := os.Stat(src); err != nil {
			continue
		}
		name := fmt.Sprintf("index_%d.idx", i)
		dest := filepath.Join(exportDir, name)
		if err := copyFile(src, dest); err != nil {
			return nil, nil, err
		}
		info, err := os.Stat(dest)
		if err != nil {
			return nil, nil, vxerr.Wrap(vxerr.Io, err, "stating copied index file %s", dest)
		}
		checksum, err := computeFileChecksum(dest)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, FileInfo{
			FileName: name,
			FileType: AnnIndex,
			FileSize: uint64(info.Size()),
			Checksum: checksum,
		})
		filePaths[name] = dest
	}

	return files, filePaths, nil
}

// ChunkIterator walks a completed export directory file-by-file,
// yielding Chunks in the sequence the spec fixes. It owns exportDir
// and removes it on Close; a finalizer backstops callers that forget
// to Close after abnormal termination, but callers should not rely on
// GC timing for cleanup.
type ChunkIterator struct {
	metadata       *Metadata
	fileOrder      []string
	filePaths      map[string]string
	chunkSize      int
	exportDir      string
	currentFileIdx int
	currentFile    *os.File
	currentReader  *bufio.Reader
	currentOffset  uint64
	sequence       uint64
	done           bool
	closed         bool
}

func newChunkIterator(metadata *Metadata, filePaths map[string]string, chunkSize int, exportDir string) *ChunkIterator {
	order := make([]string, len(metadata.Files))
	for i, f := range metadata.Files {
		order[i] = f.FileName
	}
	it := &ChunkIterator{
		metadata:  metadata,
		fileOrder: order,
		filePaths: filePaths,
		chunkSize: chunkSize,
		exportDir: exportDir,
	}
	runtime.SetFinalizer(it, func(it *ChunkIterator) { _ = it.Close() })
	return it
}

// Next returns the next chunk. ok is false only once the iterator is
// exhausted (after the final chunk has already been returned); a
// non-nil error aborts the export and closes the iterator.
func (it *ChunkIterator) Next() (Chunk, bool, error) {
	if it.done {
		return Chunk{}, false, nil
	}

	seq := it.sequence
	it.sequence++

	if seq == 0 {
		return Chunk{Metadata: it.metadata, Sequence: seq}, true, nil
	}

	for {
		if it.currentFile == nil {
			if it.currentFileIdx >= len(it.fileOrder) {
				it.done = true
				_ = it.Close()
				return Chunk{Sequence: seq, IsFinal: true}, true, nil
			}
			name := it.fileOrder[it.currentFileIdx]
			f, err := os.Open(it.filePaths[name])
			if err != nil {
				it.done = true
				_ = it.Close()
				return Chunk{}, false, vxerr.Wrap(vxerr.Io, err, "opening snapshot file %s", name)
			}
			it.currentFile = f
			it.currentReader = bufio.NewReaderSize(f, it.chunkSize)
			it.currentOffset = 0
		}

		data, atEOF, err := readChunk(it.currentReader, it.chunkSize)
		if err != nil {
			it.done = true
			_ = it.Close()
			return Chunk{}, false, vxerr.Wrap(vxerr.Io, err, "reading snapshot file %s", it.fileOrder[it.currentFileIdx])
		}

		if len(data) == 0 {
			_ = it.currentFile.Close()
			it.currentFile = nil
			it.currentReader = nil
			it.currentFileIdx++
			continue
		}

		name := it.fileOrder[it.currentFileIdx]
		offset := it.currentOffset
		it.currentOffset += uint64(len(data))

		if atEOF {
			_ = it.currentFile.Close()
			it.currentFile = nil
			it.currentReader = nil
			it.currentFileIdx++
		}

		return Chunk{
			FileChunk: &FileChunk{FileName: name, Offset: offset, Data: data, IsLastChunk: atEOF},
			Sequence:  seq,
		}, true, nil
	}
}

// readChunk fills buf up to size bytes from r and reports whether r is
// at EOF afterward, using Peek so the check doesn't consume bytes a
// subsequent read would need.
func readChunk(r *bufio.Reader, size int) ([]byte, bool, error) {
	buf := make([]byte, size)
	total := 0
	for total < size {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, false, err
		}
		if n == 0 {
			break
		}
	}
	if total == 0 {
		return nil, true, nil
	}
	_, peekErr := r.Peek(1)
	return buf[:total], peekErr != nil, nil
}

// Close removes the export's working directory. Safe to call more
// than once and safe to call after the iterator has already closed
// itself on reaching the final chunk.
func (it *ChunkIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	runtime.SetFinalizer(it, nil)
	if it.currentFile != nil {
		_ = it.currentFile.Close()
	}
	return vxerr.FromIO(os.RemoveAll(it.exportDir))
}
