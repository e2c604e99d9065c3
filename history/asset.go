package history

import (
	"fmt"

	"github.com/duocast-cli/duocast/util"
)

// SavedAsset represents a single playback entry preserved in the user's resume history.
type SavedAsset struct {
	URI               string  `json:"uri"`
	Title             string  `json:"title"`
	Position          float64 `json:"position"`
	Duration          float64 `json:"duration"`
	WatchedPercentage float64 `json:"watched_percentage"`
	LastMode          string  `json:"last_mode"`
}

func (s *SavedAsset) encode() string {
	return s.URI
}

func (s *SavedAsset) String() string {
	if s.Title != "" {
		return fmt.Sprintf("%s : %s / %s", s.Title, util.FormatClock(s.Position), util.FormatClock(s.Duration))
	}
	return fmt.Sprintf("%s : %s / %s", s.URI, util.FormatClock(s.Position), util.FormatClock(s.Duration))
}
