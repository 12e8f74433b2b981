// Package rule decides which feed items are worth a notification
// and renders them into messages.
package rule

import (
	"errors"
	"fmt"

	"github.com/Semior001/hnbot/app/feed"
)

// Threshold is the exclusive lower bound of score or comment count
// for an item to be notable.
const Threshold = 200

// ErrNotStory is returned when formatting an item which is not a story.
var ErrNotStory = errors.New("not a story")

// Notable reports whether the item has more than Threshold points
// or more than Threshold comments.
func Notable(item feed.Item) bool {
	return item.Descendants > Threshold || item.Score > Threshold
}

// Format renders a one-line notification message for the story.
func Format(item feed.Item) (string, error) {
	if item.Type != feed.TypeStory {
		return "", fmt.Errorf("format item %d of type %q: %w", item.ID, item.Type, ErrNotStory)
	}

	return fmt.Sprintf("%s %s (%d votes, %d comments)",
		item.Title, item.TargetURL(), item.Score, item.Descendants), nil
}
