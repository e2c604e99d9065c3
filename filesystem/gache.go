package filesystem

import (
	"io"
	"os"
)

// GacheFs bridges gache's FileSystem interface onto the shared backend,
// so cached history and version checks respect SetMemMapFs in tests.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
