//go:build !linux && !darwin

package native

import (
	"fmt"
	"runtime"

	"github.com/metawear-go/metawear/pkg/board"
	"github.com/metawear-go/metawear/pkg/protocol"
)

// Library is unavailable on this platform.
type Library struct{}

func Open(_ string) (*Library, error) {
	return nil, fmt.Errorf("%w: not supported on %s", protocol.ErrLibraryUnavailable, runtime.GOOS)
}

func (l *Library) Create(_ board.Bridge) (board.Board, error) {
	return nil, protocol.ErrLibraryUnavailable
}
