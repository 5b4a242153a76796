package transcript

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Resolver turns a video id into transcript text, preferring a manually
// created track and falling back to an auto-generated one. It never returns
// an error: every failure mode collapses to the empty string so one bad
// video cannot abort a batch.
type Resolver struct {
	source Source
	langs  []string
	log    *logrus.Entry
}

// NewResolver builds a resolver over source with langs in preference order.
// log may be nil.
func NewResolver(source Source, langs []string, log *logrus.Entry) *Resolver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{source: source, langs: langs, log: log}
}

type outcome int

const (
	outcomeResolved outcome = iota
	outcomeDisabled
	outcomeNotFound
	outcomeUnavailable
	outcomeFailed
)

type tierResult struct {
	outcome outcome
	text    string
}

// Resolve returns the transcript text for videoID, or "" when none is
// obtainable. Expected absence conditions at the primary tier (disabled, not
// found, unavailable) trigger the generated-track fallback; any other
// failure, at either tier, yields "".
func (r *Resolver) Resolve(ctx context.Context, videoID string) string {
	log := r.log.WithField("video_id", videoID)

	res := r.primary(ctx, videoID)
	switch res.outcome {
	case outcomeResolved:
		return res.text
	case outcomeFailed:
		log.Debug("primary tier failed, giving up")
		return ""
	}

	// disabled / not found / unavailable: try the generated track
	log.Debug("primary tier absent, trying generated track")
	return r.fallback(ctx, videoID)
}

// primary attempts the manually created track in the first matching
// language. The discriminated outcome keeps the three expected absence
// conditions apart from everything else.
func (r *Resolver) primary(ctx context.Context, videoID string) tierResult {
	tracks, err := r.source.ListTracks(ctx, videoID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTranscriptsDisabled):
			return tierResult{outcome: outcomeDisabled}
		case errors.Is(err, ErrNoTranscriptFound):
			return tierResult{outcome: outcomeNotFound}
		case errors.Is(err, ErrVideoUnavailable):
			return tierResult{outcome: outcomeUnavailable}
		default:
			return tierResult{outcome: outcomeFailed}
		}
	}

	track, ok := findTrack(tracks, r.langs, false)
	if !ok {
		return tierResult{outcome: outcomeNotFound}
	}
	fragments, err := r.source.FetchTrack(ctx, track)
	if err != nil {
		return tierResult{outcome: outcomeFailed}
	}
	return tierResult{outcome: outcomeResolved, text: joinFragments(fragments)}
}

// fallback locates the best auto-generated track in the same language order.
// Any failure here means the video simply has no obtainable transcript.
func (r *Resolver) fallback(ctx context.Context, videoID string) string {
	tracks, err := r.source.ListTracks(ctx, videoID)
	if err != nil {
		return ""
	}
	track, ok := findTrack(tracks, r.langs, true)
	if !ok {
		return ""
	}
	fragments, err := r.source.FetchTrack(ctx, track)
	if err != nil {
		return ""
	}
	return joinFragments(fragments)
}

// findTrack picks the first track whose language matches langs in preference
// order, restricted to generated or manually created tracks.
func findTrack(tracks []Track, langs []string, generated bool) (Track, bool) {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Generated() == generated {
				return t, true
			}
		}
	}
	return Track{}, false
}

func joinFragments(fragments []string) string {
	return strings.TrimSpace(strings.Join(fragments, " "))
}
