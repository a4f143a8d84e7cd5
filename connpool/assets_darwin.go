//go:build darwin

package connpool

import _ "embed"

//go:embed assets/vectorlite_darwin.dylib
var embeddedLibraryBytes []byte

const nativeLibExtension = "dylib"
