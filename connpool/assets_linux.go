//go:build linux

package connpool

import _ "embed"

//go:embed assets/vectorlite_linux.so
var embeddedLibraryBytes []byte

const nativeLibExtension = "so"
