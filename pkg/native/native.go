/*
Package native loads the MetaWear board library (libmetawear) at run time and adapts it to the
[board.Library] and [board.Board] interfaces.

The library is located through the METAWEAR_LIB_SO_NAME environment variable. When the variable is
unset, a libmetawear.so stored next to the running executable is preferred over the dynamic
loader's search path:

	lib, err := native.Open(native.LibraryPath())
	if err != nil {
		panic(err)
	}
	client, err := metawear.NewClient(ctx, transport, lib, nil)

Go callbacks are registered with the library as C function pointers. The library invokes them
synchronously from within its own calls, and every buffer it passes is copied into Go memory
before the callback returns.
*/
package native

import (
	"os"
	"path/filepath"
)

// EnvLibraryPath names the environment variable holding an alternate path to the library.
const EnvLibraryPath = "METAWEAR_LIB_SO_NAME"

// DefaultLibraryName is the file name of the board library.
const DefaultLibraryName = "libmetawear.so"

// LibraryPath returns the path Open should load.
func LibraryPath() string {
	if path := os.Getenv(EnvLibraryPath); path != "" {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), DefaultLibraryName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultLibraryName
}
