package sampler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PantengZhao/Master-Thesis/internal/config"
	"github.com/PantengZhao/Master-Thesis/internal/table"
	"github.com/PantengZhao/Master-Thesis/internal/youtube"
)

type fakeSearcher struct {
	results map[string][]youtube.SearchResult
	details []youtube.VideoDetails
}

func (f *fakeSearcher) Search(ctx context.Context, query string, window youtube.SearchWindow, maxResults int) ([]youtube.SearchResult, error) {
	return f.results[query], nil
}

func (f *fakeSearcher) VideoDetails(ctx context.Context, ids []string, batchSize int, progress func(int)) ([]youtube.VideoDetails, error) {
	if progress != nil {
		progress(len(ids))
	}
	return f.details, nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(l)
}

func TestDedupeFirstQueryWins(t *testing.T) {
	rows := []youtube.SearchResult{
		{VideoID: "abc123", Query: "first query"},
		{VideoID: "other", Query: "first query"},
		{VideoID: "abc123", Query: "second query"},
	}

	out := dedupe(rows)

	require.Len(t, out, 2)
	assert.Equal(t, "abc123", out[0].VideoID)
	assert.Equal(t, "first query", out[0].Query)
	assert.Equal(t, "other", out[1].VideoID)
}

func TestReconcileCoalescesFieldByField(t *testing.T) {
	candidates := []youtube.SearchResult{
		{VideoID: "a", Title: "short title", Description: "short desc", PublishDate: "2025-09-01T00:00:00Z"},
		{VideoID: "b", Title: "kept title", Description: "kept desc", PublishDate: "kept date"},
	}
	details := []youtube.VideoDetails{
		{
			VideoID:         "a",
			ViewCount:       100,
			LikeCount:       5,
			FullTitle:       "the full title",
			FullDescription: "", // empty detail field must not clobber
			FullPublishDate: "2025-09-01T12:00:00Z",
		},
		// no detail row for "b" at all (deleted/private)
	}

	out := reconcile(candidates, details)
	require.Len(t, out, 2)

	assert.Equal(t, "the full title", out[0].Title)
	assert.Equal(t, "short desc", out[0].Description)
	assert.Equal(t, "2025-09-01T12:00:00Z", out[0].PublishDate)
	assert.Equal(t, int64(100), out[0].ViewCount)

	assert.Equal(t, "kept title", out[1].Title)
	assert.Equal(t, "kept desc", out[1].Description)
	assert.Equal(t, "kept date", out[1].PublishDate)
	assert.Equal(t, int64(0), out[1].ViewCount)
}

func TestMonthBucket(t *testing.T) {
	assert.Equal(t, "2025-09", monthBucket("2025-09-10T12:00:00Z"))
	assert.Equal(t, "2025-09", monthBucket("2025-09"))
	assert.Equal(t, "2025", monthBucket("2025"))
	assert.Equal(t, "", monthBucket(""))
	// malformed dates pass through unvalidated
	assert.Equal(t, "garbage", monthBucket("garbage"))
}

func testConfig(output string) *config.Config {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.Output = output
	cfg.Queries = []string{"first query", "second query"}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "candidates.csv")
	client := &fakeSearcher{
		results: map[string][]youtube.SearchResult{
			"first query": {
				{VideoID: "abc123", ChannelID: "UC1", ChannelTitle: "Chan", PublishDate: "2025-09-10T12:00:00Z", Title: "t", Description: "d", Query: "first query"},
			},
			"second query": {
				{VideoID: "abc123", ChannelID: "UC1", ChannelTitle: "Chan", PublishDate: "2025-09-10T12:00:00Z", Title: "t", Description: "d", Query: "second query"},
				{VideoID: "xyz789", ChannelID: "UC2", ChannelTitle: "Other", PublishDate: "2025-10-01T00:00:00Z", Title: "t2", Description: "d2", Query: "second query"},
			},
		},
		details: []youtube.VideoDetails{
			{VideoID: "abc123", ViewCount: 10, LikeCount: 1, CommentCount: 2, FullTitle: "full t", FullDescription: "full d", FullPublishDate: "2025-09-10T12:00:00Z"},
		},
	}

	require.NoError(t, Run(context.Background(), testConfig(out), client, testLog()))

	tab, err := table.Load(out)
	require.NoError(t, err)
	require.Len(t, tab.Rows, 2)

	// cross-query duplicate collapsed, attributed to the first query
	assert.Equal(t, "abc123", tab.Rows[0]["video_id"])
	assert.Equal(t, "first query", tab.Rows[0]["query"])
	assert.Equal(t, "full t", tab.Rows[0]["title"])
	assert.Equal(t, "10", tab.Rows[0]["view_count"])
	assert.Equal(t, "2025-09", tab.Rows[0]["month_bucket"])

	assert.Equal(t, "xyz789", tab.Rows[1]["video_id"])
	assert.Equal(t, "0", tab.Rows[1]["view_count"])
	assert.Equal(t, "2025-10", tab.Rows[1]["month_bucket"])
}

func TestRunNoResultsWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "candidates.csv")
	client := &fakeSearcher{results: map[string][]youtube.SearchResult{}}

	require.NoError(t, Run(context.Background(), testConfig(out), client, testLog()))

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output file may be written for an empty result set")
}
