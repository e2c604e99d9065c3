// Package filesystem holds the afero backend shared by every package that
// touches disk, so tests can swap the whole program onto an in-memory fs.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the current filesystem backend.
func API() afero.Afero {
	return backend
}

// SetOsFs points the backend at the real operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs swaps in a fresh in-memory filesystem. Meant for tests.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}
