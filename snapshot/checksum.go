package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/vxengine/vxengine/vxerr"
)

const checksumBufferSize = 8 * 1024

// computeFileChecksum streams path through SHA-256 in fixed-size
// reads rather than loading it whole, so checksumming a multi-GB
// database backup doesn't require a matching amount of memory.
func computeFileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", vxerr.Wrap(vxerr.Io, err, "opening %s for checksum", path)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumBufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", vxerr.Wrap(vxerr.Io, err, "reading %s for checksum", path)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// computeSnapshotChecksum aggregates the per-file checksums into one
// snapshot-level checksum, folding in each file's name so that a
// checksum collision would also require matching names.
func computeSnapshotChecksum(files []FileInfo) string {
	h := sha256.New()
	for _, f := range files {
		h.Write([]byte(f.FileName))
		h.Write([]byte(f.Checksum))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return vxerr.Wrap(vxerr.Io, err, "opening %s to copy", src)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return vxerr.Wrap(vxerr.Io, err, "creating %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return vxerr.Wrap(vxerr.Io, err, "copying %s to %s", src, dest)
	}
	return vxerr.FromIO(out.Sync())
}
