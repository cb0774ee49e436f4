//go:build !unix

package watch

import (
	"hash/fnv"
	"os"
)

// statPath returns the identity and size of the file at path. Without inode
// numbers the identity is a hash of the path.
func statPath(path string) (fileStat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return fileStat{}, err
	}
	h := fnv.New64a()
	h.Write([]byte(path)) //nolint:errcheck // hash writes never fail
	return fileStat{ino: h.Sum64(), size: info.Size(), isDir: info.IsDir()}, nil
}
