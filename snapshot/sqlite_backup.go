package snapshot

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/vxengine/vxengine/vxerr"
)

// pagesPerStep and stepDelay match the reference design's backoff
// policy: copy a bounded number of pages per step and yield to
// writers between steps rather than holding the source locked for the
// whole backup.
const (
	pagesPerStep  = 100
	stepDelay     = 10 * time.Millisecond
	busyStepDelay = stepDelay * 10
)

// backupDatabase drives SQLite's online backup API to stream srcDB
// into a fresh file at destPath, returning the resulting file size.
func backupDatabase(ctx context.Context, srcDB *sql.DB, destPath string) (int64, error) {
	destDB, err := sql.Open("sqlite3", destPath)
	if err != nil {
		return 0, vxerr.Wrap(vxerr.Sql, err, "opening backup destination %s", destPath)
	}
	defer destDB.Close()

	if err := runBackup(ctx, srcDB, destDB); err != nil {
		return 0, err
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, vxerr.Wrap(vxerr.Io, err, "stating backup file %s", destPath)
	}
	return info.Size(), nil
}

// restoreDatabase drives the same backup API in reverse: backupPath
// becomes the source, destDB (the live pool) becomes the destination.
func restoreDatabase(ctx context.Context, backupPath string, destDB *sql.DB) error {
	srcDB, err := sql.Open("sqlite3", backupPath)
	if err != nil {
		return vxerr.Wrap(vxerr.Sql, err, "opening backup file %s", backupPath)
	}
	defer srcDB.Close()

	return runBackup(ctx, srcDB, destDB)
}

// runBackup initializes a sqlite3_backup from srcDB to destDB and
// steps it to completion, distinguishing transient Busy/Locked
// outcomes (retried with a longer backoff) from hard failures.
func runBackup(ctx context.Context, srcDB, destDB *sql.DB) error {
	srcConn, err := srcDB.Conn(ctx)
	if err != nil {
		return vxerr.FromPool(err)
	}
	defer srcConn.Close()

	destConn, err := destDB.Conn(ctx)
	if err != nil {
		return vxerr.FromPool(err)
	}
	defer destConn.Close()

	var backup *sqlite3.SQLiteBackup
	err = destConn.Raw(func(destDriverConn any) error {
		dconn, ok := destDriverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return vxerr.New(vxerr.Other, "destination connection is not a sqlite3 connection")
		}
		return srcConn.Raw(func(srcDriverConn any) error {
			sconn, ok := srcDriverConn.(*sqlite3.SQLiteConn)
			if !ok {
				return vxerr.New(vxerr.Other, "source connection is not a sqlite3 connection")
			}
			b, err := dconn.Backup("main", sconn, "main")
			if err != nil {
				return err
			}
			backup = b
			return nil
		})
	})
	if err != nil {
		return vxerr.Wrap(vxerr.Sql, err, "initializing backup")
	}

	for {
		done, stepErr := backup.Step(pagesPerStep)
		if done {
			break
		}
		if stepErr != nil {
			if sqliteErr, ok := stepErr.(sqlite3.Error); ok {
				switch sqliteErr.Code {
				case sqlite3.ErrBusy, sqlite3.ErrLocked:
					time.Sleep(busyStepDelay)
					continue
				}
			}
			_ = backup.Close()
			return vxerr.Wrap(vxerr.Sql, stepErr, "backup step failed")
		}
		time.Sleep(stepDelay)
	}

	return vxerr.FromSQL(backup.Close())
}
