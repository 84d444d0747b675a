//go:build unix

package digest

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// openNoFollow opens path read-only, refusing to traverse a final symlink.
// O_NONBLOCK keeps a FIFO swapped in after discovery from blocking the open;
// it has no effect on regular files.
func openNoFollow(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}

// isSymlinkRefusal reports whether err is the ELOOP that O_NOFOLLOW yields
// for a symlink.
func isSymlinkRefusal(err error) bool {
	return errors.Is(err, unix.ELOOP)
}
