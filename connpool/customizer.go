// Package connpool registers a database/sql driver that customizes
// every connection the pool opens: a busy-wait timeout and the
// vectorlite extension load. database/sql has no acquire-hook concept
// of its own, so sql.Register plus mattn/go-sqlite3's ConnectHook is
// the idiomatic Go substitute for the Rust design's
// r2d2::CustomizeConnection::on_acquire.
package connpool

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

const DefaultBusyTimeout = 15 * time.Second

// driverCounter lets tests register multiple independently-configured
// drivers within one process without colliding on name.
var driverCounter int
var driverCounterMu sync.Mutex

// RegisterDriver registers (once per returned name) a sqlite3 driver
// whose ConnectHook sets busyTimeout and loads the vectorlite
// extension on every new connection, and returns the driver name to
// pass to sql.Open.
func RegisterDriver(busyTimeout time.Duration) string {
	driverCounterMu.Lock()
	driverCounter++
	name := fmt.Sprintf("vxengine-sqlite3-%d", driverCounter)
	driverCounterMu.Unlock()

	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()), nil); err != nil {
				return err
			}
			return loadVectorExtension(conn)
		},
	})

	return name
}
