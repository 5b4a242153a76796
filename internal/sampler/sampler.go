// Package sampler builds the candidate list: keyword searches over a date
// window, deduplication across queries, statistics enrichment, field
// reconciliation, and month bucketing, exported as one CSV for manual
// screening.
package sampler

import (
	"context"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/PantengZhao/Master-Thesis/internal/config"
	"github.com/PantengZhao/Master-Thesis/internal/table"
	"github.com/PantengZhao/Master-Thesis/internal/youtube"
)

// Candidate is one fully reconciled output row.
type Candidate struct {
	VideoID      string
	ChannelID    string
	ChannelTitle string
	PublishDate  string
	Title        string
	Description  string
	Query        string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	MonthBucket  string
}

// Searcher is the slice of the Data API client the pipeline uses.
type Searcher interface {
	Search(ctx context.Context, query string, window youtube.SearchWindow, maxResults int) ([]youtube.SearchResult, error)
	VideoDetails(ctx context.Context, ids []string, batchSize int, progress func(done int)) ([]youtube.VideoDetails, error)
}

// Run executes the whole sampling pass. Search and enrichment errors are
// fatal for the run; an empty candidate set is a logged early exit with no
// file written.
func Run(ctx context.Context, cfg *config.Config, client Searcher, log *logrus.Entry) error {
	window := youtube.SearchWindow{After: cfg.PublishedAfter(), Before: cfg.PublishedBefore()}

	var raw []youtube.SearchResult
	for _, q := range cfg.Queries {
		log.WithField("query", q).Info("searching")
		rows, err := client.Search(ctx, q, window, cfg.MaxResults)
		if err != nil {
			return err
		}
		raw = append(raw, rows...)
	}
	log.WithField("raw_candidates", len(raw)).Info("search complete")

	candidates := dedupe(raw)
	log.WithField("after_dedupe", len(candidates)).Info("deduplicated")
	if len(candidates) == 0 {
		log.Info("no videos found in the configured window/queries")
		return nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.VideoID
	}

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetDescription("Fetching details"),
		progressbar.OptionSetWriter(os.Stderr),
	)
	details, err := client.VideoDetails(ctx, ids, cfg.BatchSize, func(done int) {
		_ = bar.Add(done)
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	enriched := reconcile(candidates, details)
	for i := range enriched {
		enriched[i].MonthBucket = monthBucket(enriched[i].PublishDate)
	}

	for bucket, n := range bucketCounts(enriched) {
		log.WithFields(logrus.Fields{"month_bucket": bucket, "videos": n}).Debug("bucket size")
	}

	out := toTable(enriched)
	if err := out.WriteCSV(cfg.Output); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": cfg.Output, "rows": len(enriched)}).Info("saved candidates")
	return nil
}

// dedupe collapses to one row per video id; the first occurrence wins, so a
// video found by several queries stays attributed to the earliest query.
// Survivor order is preserved.
func dedupe(rows []youtube.SearchResult) []youtube.SearchResult {
	seen := make(map[string]bool, len(rows))
	out := make([]youtube.SearchResult, 0, len(rows))
	for _, r := range rows {
		if seen[r.VideoID] {
			continue
		}
		seen[r.VideoID] = true
		out = append(out, r)
	}
	return out
}

// reconcile left-joins candidates to details and coalesces title,
// description, and publish date field by field: the detail value wins when
// non-empty, else the search-result value stands. Ids the details API never
// returned keep their search-result fields and zero counts.
func reconcile(candidates []youtube.SearchResult, details []youtube.VideoDetails) []Candidate {
	byID := make(map[string]youtube.VideoDetails, len(details))
	for _, d := range details {
		byID[d.VideoID] = d
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		row := Candidate{
			VideoID:      c.VideoID,
			ChannelID:    c.ChannelID,
			ChannelTitle: c.ChannelTitle,
			PublishDate:  c.PublishDate,
			Title:        c.Title,
			Description:  c.Description,
			Query:        c.Query,
		}
		if d, ok := byID[c.VideoID]; ok {
			row.ViewCount = d.ViewCount
			row.LikeCount = d.LikeCount
			row.CommentCount = d.CommentCount
			row.Title = coalesce(d.FullTitle, c.Title)
			row.Description = coalesce(d.FullDescription, c.Description)
			row.PublishDate = coalesce(d.FullPublishDate, c.PublishDate)
		}
		out = append(out, row)
	}
	return out
}

func coalesce(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

// monthBucket is the YYYY-MM prefix of the publish date. No validation:
// malformed dates yield malformed buckets, which manual review tolerates.
func monthBucket(publishDate string) string {
	if len(publishDate) < 7 {
		return publishDate
	}
	return publishDate[:7]
}

func bucketCounts(rows []Candidate) map[string]int {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.MonthBucket]++
	}
	return counts
}

func toTable(rows []Candidate) *table.Table {
	t := &table.Table{
		Columns: []string{
			"video_id", "channel_id", "channel_title", "publish_date",
			"title", "description", "query",
			"view_count", "like_count", "comment_count", "month_bucket",
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, map[string]string{
			"video_id":      r.VideoID,
			"channel_id":    r.ChannelID,
			"channel_title": r.ChannelTitle,
			"publish_date":  r.PublishDate,
			"title":         r.Title,
			"description":   r.Description,
			"query":         r.Query,
			"view_count":    strconv.FormatInt(r.ViewCount, 10),
			"like_count":    strconv.FormatInt(r.LikeCount, 10),
			"comment_count": strconv.FormatInt(r.CommentCount, 10),
			"month_bucket":  r.MonthBucket,
		})
	}
	return t
}
