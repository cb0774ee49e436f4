//go:build unix

package watch

import (
	"golang.org/x/sys/unix"
)

// statPath returns the identity and size of the file at path without
// following symlinks.
func statPath(path string) (fileStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fileStat{}, err
	}
	return fileStat{
		ino:   st.Ino,
		size:  st.Size,
		isDir: st.Mode&unix.S_IFMT == unix.S_IFDIR,
	}, nil
}
