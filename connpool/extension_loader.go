package connpool

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/vxengine/vxengine/vxerr"
)

// extLoadMu serializes the write-then-load critical section across
// every connection this process opens, mirroring the Rust loader's
// process-wide Mutex<()>.
var extLoadMu sync.Mutex

const maxCreateAttempts = 5

// loadVectorExtension writes the embedded native library to a
// uniquely-named temporary file and loads it into conn via the
// driver's extension hook. On POSIX the file is unlinked immediately
// after load (the loader keeps the mapping); on Windows it is left in
// place since the OS holds the file open while mapped.
func loadVectorExtension(conn *sqlite3.SQLiteConn) error {
	extLoadMu.Lock()
	defer extLoadMu.Unlock()

	path, file, err := createUniqueTempFile()
	if err != nil {
		return vxerr.Wrap(vxerr.ExtensionLoad, err, "creating temp file for native extension")
	}

	if _, err := file.Write(embeddedLibraryBytes); err != nil {
		file.Close()
		os.Remove(path)
		return vxerr.Wrap(vxerr.ExtensionLoad, err, "writing native extension bytes")
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return vxerr.Wrap(vxerr.ExtensionLoad, err, "syncing native extension file")
	}
	file.Close()

	if err := conn.LoadExtension(path, ""); err != nil {
		os.Remove(path)
		return vxerr.Wrap(vxerr.ExtensionLoad, err, "loading vectorlite extension")
	}

	if runtime.GOOS != "windows" {
		_ = os.Remove(path)
	}

	return nil
}

// createUniqueTempFile picks a PID + nanosecond-timestamp + attempt
// counter name and opens it exclusively, retrying on collision.
func createUniqueTempFile() (string, *os.File, error) {
	pid := os.Getpid()

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name := fmt.Sprintf("vectorlite_%d_%d_%d.%s", pid, time.Now().UnixNano(), attempt, nativeLibExtension)
		path := filepath.Join(os.TempDir(), name)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return path, file, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
		lastErr = err
	}

	return "", nil, lastErr
}
