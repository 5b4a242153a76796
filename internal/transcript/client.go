// Package transcript resolves a plain-text transcript for a video: manually
// created caption track first, auto-generated track as fallback.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultPlayerURL = "https://www.youtube.com/youtubei/v1/player"

// Expected absence conditions. Anything else coming out of the client is an
// unexpected failure.
var (
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
	ErrVideoUnavailable    = errors.New("video unavailable")
)

// Track is one caption track advertised by the player. Kind "asr" marks an
// auto-generated track.
type Track struct {
	BaseURL      string
	LanguageCode string
	Kind         string
	Name         string
}

// Generated reports whether the track is auto-generated rather than
// manually authored.
func (t Track) Generated() bool {
	return t.Kind == "asr"
}

// Source is what the resolver needs from the transport; tests substitute
// their own.
type Source interface {
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchTrack(ctx context.Context, track Track) ([]string, error)
}

// Client talks to the Innertube player endpoint to discover caption tracks
// and fetches their timedtext payloads.
type Client struct {
	playerURL  string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		playerURL:  defaultPlayerURL,
		httpClient: &http.Client{Timeout: 12 * time.Second},
	}
}

// SetPlayerURL points the client at a different player endpoint (tests).
func (c *Client) SetPlayerURL(u string) {
	c.playerURL = u
}

type playerRequest struct {
	Context struct {
		Client struct {
			ClientName    string `json:"clientName"`
			ClientVersion string `json:"clientVersion"`
		} `json:"client"`
	} `json:"context"`
	VideoID string `json:"videoId"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL string `json:"baseUrl"`
				Name    struct {
					SimpleText string `json:"simpleText"`
				} `json:"name"`
				LanguageCode string `json:"languageCode"`
				Kind         string `json:"kind"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// ListTracks asks the player for the caption track list of videoID.
// An unplayable video maps to ErrVideoUnavailable; a playable video without
// any caption tracks maps to ErrTranscriptsDisabled.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	var reqBody playerRequest
	reqBody.Context.Client.ClientName = "WEB"
	reqBody.Context.Client.ClientVersion = "2.20250101.00.00"
	reqBody.VideoID = videoID

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pr playerResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("player decode error: %v", err)
	}
	if s := pr.PlayabilityStatus.Status; s != "" && s != "OK" {
		return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, pr.PlayabilityStatus.Reason)
	}
	raw := pr.Captions.Renderer.CaptionTracks
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptsDisabled, videoID)
	}

	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, Track{
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Kind:         t.Kind,
			Name:         t.Name.SimpleText,
		})
	}
	return tracks, nil
}

type timedtext struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTrack downloads one track's timedtext XML and returns its fragments
// in document order.
func (c *Client) FetchTrack(ctx context.Context, track Track) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext status %d", resp.StatusCode)
	}

	var tt timedtext
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("timedtext decode error: %v", err)
	}
	fragments := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		// fragments arrive with HTML entities still escaped
		fragments = append(fragments, html.UnescapeString(t.Value))
	}
	return fragments, nil
}
