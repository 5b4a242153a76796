// Package fetcher collects transcripts for the manually flagged core videos
// and merges them back onto the full review sheet.
package fetcher

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/PantengZhao/Master-Thesis/internal/table"
)

// Column names the input sheet must carry.
const (
	ColumnVideoID = "video_id"
	ColumnFlag    = "Core_video"
	ColumnOutput  = "transcript"
)

// Resolver turns a video id into transcript text; "" means attempted but
// nothing obtainable.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) string
}

// Options name the input and output files.
type Options struct {
	Input  string
	Output string
}

// Run loads the sheet, resolves a transcript for every row flagged
// Core_video = "1", and writes the full sheet back with a transcript column
// appended. Rows that were never flagged keep a null transcript cell, which
// is how "not attempted" stays distinguishable from "attempted and empty".
// An input without flagged rows is a logged early exit with no file written.
func Run(ctx context.Context, opts Options, resolver Resolver, log *logrus.Entry) error {
	t, err := table.Load(opts.Input)
	if err != nil {
		return err
	}
	if err := t.RequireColumns(ColumnVideoID, ColumnFlag); err != nil {
		return fmt.Errorf("input %s: %w", opts.Input, err)
	}

	var flagged []string
	for _, row := range t.Rows {
		if row[ColumnFlag] == "1" {
			flagged = append(flagged, row[ColumnVideoID])
		}
	}
	log.WithFields(logrus.Fields{"rows": len(t.Rows), "flagged": len(flagged)}).Info("sheet loaded")
	if len(flagged) == 0 {
		log.Info("no rows with Core_video = 1 found")
		return nil
	}

	bar := progressbar.NewOptions(len(flagged),
		progressbar.OptionSetDescription("Fetching transcripts"),
		progressbar.OptionSetWriter(os.Stderr),
	)
	transcripts := make(map[string]string, len(flagged))
	for _, id := range flagged {
		transcripts[id] = resolver.Resolve(ctx, id)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	t.MergeColumn(ColumnVideoID, ColumnOutput, transcripts)

	if err := t.WriteCSV(opts.Output); err != nil {
		return err
	}
	log.WithField("path", opts.Output).Info("saved with transcripts")
	return nil
}
