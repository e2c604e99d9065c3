// Package history provides the implementation for tracking and persisting playback resume state.
package history

import (
	"github.com/duocast-cli/duocast/filesystem"
	"github.com/duocast-cli/duocast/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for playback resume records.
var cacher = gache.New[map[string]*SavedAsset](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of resume records from the persistent store.
func Get() (map[string]*SavedAsset, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedAsset), nil
	}
	return cached, nil
}

// Find returns the resume record for a specific asset URI, or nil when none exists.
func Find(uri string) (*SavedAsset, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}
	return saved[uri], nil
}

// Save persists the playback position of a specific asset to the resume history.
func Save(record *SavedAsset) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if record.Duration > 0 {
		record.WatchedPercentage = record.Position / record.Duration * 100
	}

	// Idempotency: Maintain the maximum observed watched percentage to prevent regressions on re-watch.
	if existing, exists := saved[record.encode()]; exists {
		if record.WatchedPercentage < existing.WatchedPercentage {
			record.WatchedPercentage = existing.WatchedPercentage
		}
	}

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific resume record from the history.
func Remove(record *SavedAsset) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}
