//go:build !unix

package digest

import (
	"os"
)

// openNoFollow rejects symlinks with an Lstat before opening. There is a
// window between the check and the open on these platforms.
func openNoFollow(path string) (*os.File, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, &os.PathError{Op: "open", Path: path, Err: ErrNotRegular}
	}
	return os.Open(path)
}

func isSymlinkRefusal(error) bool {
	return false
}
