// Package youtube is a thin client for the two Data API v3 endpoints the
// sampler needs: search.list and videos.list.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// SearchResult is one lightweight row from search.list, tagged with the
// query that produced it.
type SearchResult struct {
	VideoID      string
	ChannelID    string
	ChannelTitle string
	PublishDate  string
	Title        string
	Description  string
	Query        string
}

// VideoDetails is one row from videos.list: full snippet fields plus the
// engagement counts.
type VideoDetails struct {
	VideoID         string
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	FullTitle       string
	FullDescription string
	FullPublishDate string
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 12 * time.Second},
	}
}

// SetBaseURL points the client at a different API host (tests).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

type snippet struct {
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet snippet `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string  `json:"id"`
		Snippet    snippet `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchWindow bounds a search to [After, Before) in RFC3339 Z form.
type SearchWindow struct {
	After  string
	Before string
}

// Search runs one search.list call for query: type=video, order=relevance,
// capped at maxResults. Errors propagate; the caller treats them as fatal.
func (c *Client) Search(ctx context.Context, query string, window SearchWindow, maxResults int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("publishedAfter", window.After)
	q.Set("publishedBefore", window.Before)
	q.Set("order", "relevance")
	q.Set("key", c.apiKey)

	var resp searchResponse
	if err := c.getJSON(ctx, "/search", q, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	rows := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		rows = append(rows, SearchResult{
			VideoID:      item.ID.VideoID,
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishDate:  item.Snippet.PublishedAt,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Query:        query,
		})
	}
	return rows, nil
}

// VideoDetails fetches snippet+statistics for ids, batchSize ids per
// videos.list call (the API ceiling is 50). Missing counts come back as 0;
// ids the API does not return (deleted or private videos) are absent from
// the result.
func (c *Client) VideoDetails(ctx context.Context, ids []string, batchSize int, progress func(done int)) ([]VideoDetails, error) {
	var out []VideoDetails
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		q := url.Values{}
		q.Set("part", "snippet,statistics")
		q.Set("id", strings.Join(batch, ","))
		q.Set("key", c.apiKey)

		var resp videosResponse
		if err := c.getJSON(ctx, "/videos", q, &resp); err != nil {
			return nil, fmt.Errorf("video details batch %d: %w", i/batchSize, err)
		}
		for _, item := range resp.Items {
			out = append(out, VideoDetails{
				VideoID:         item.ID,
				ViewCount:       parseCount(item.Statistics.ViewCount),
				LikeCount:       parseCount(item.Statistics.LikeCount),
				CommentCount:    parseCount(item.Statistics.CommentCount),
				FullTitle:       item.Snippet.Title,
				FullDescription: item.Snippet.Description,
				FullPublishDate: item.Snippet.PublishedAt,
			})
		}
		if progress != nil {
			progress(len(batch))
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("json decode error: %v body=%s", err, string(body))
	}
	return nil
}

// The API serializes counts as strings; anything unparsable counts as zero.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
