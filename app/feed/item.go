package feed

import "strconv"

// TypeStory is the only item kind eligible for notifications.
const TypeStory = "story"

// PermalinkBase is the prefix of an item's discussion page.
const PermalinkBase = "https://news.ycombinator.com/item?id="

// Item is a single feed entry. Fields absent in the API payload
// keep their zero values.
type Item struct {
	ID          uint64 `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// Permalink returns the item's discussion page.
func (i Item) Permalink() string {
	return PermalinkBase + strconv.FormatUint(i.ID, 10)
}

// TargetURL returns the link the item points to, or its permalink
// when the feed supplied none (e.g. Ask HN posts).
func (i Item) TargetURL() string {
	if i.URL != "" {
		return i.URL
	}
	return i.Permalink()
}
