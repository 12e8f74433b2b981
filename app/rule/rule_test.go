package rule

import (
	"testing"

	"github.com/Semior001/hnbot/app/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotable(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		comments int
		want     bool
	}{
		{name: "zero", want: false},
		{name: "exactly threshold on both axes", score: 200, comments: 200, want: false},
		{name: "score above threshold", score: 201, comments: 0, want: true},
		{name: "comments above threshold", score: 0, comments: 201, want: true},
		{name: "both above threshold", score: 500, comments: 900, want: true},
		{name: "below threshold", score: 150, comments: 199, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notable(feed.Item{ID: 1, Score: tt.score, Descendants: tt.comments}))
		})
	}
}

func TestFormat(t *testing.T) {
	t.Run("story with url", func(t *testing.T) {
		msg, err := Format(feed.Item{
			ID:          8863,
			Type:        feed.TypeStory,
			Title:       "My YC app: Dropbox",
			URL:         "http://www.getdropbox.com/u/2/screencast.html",
			Score:       250,
			Descendants: 71,
		})
		require.NoError(t, err)
		assert.Equal(t, "My YC app: Dropbox http://www.getdropbox.com/u/2/screencast.html (250 votes, 71 comments)", msg)
	})

	t.Run("story without url and title", func(t *testing.T) {
		msg, err := Format(feed.Item{ID: 42, Type: feed.TypeStory})
		require.NoError(t, err)
		assert.Equal(t, " https://news.ycombinator.com/item?id=42 (0 votes, 0 comments)", msg)
	})

	t.Run("not a story", func(t *testing.T) {
		for _, typ := range []string{"", "job", "poll", "comment"} {
			_, err := Format(feed.Item{ID: 7, Type: typ, Score: 1000})
			assert.ErrorIs(t, err, ErrNotStory, typ)
		}
	})
}
