//go:build windows

package connpool

import _ "embed"

//go:embed assets/vectorlite_windows.dll
var embeddedLibraryBytes []byte

const nativeLibExtension = "dll"
