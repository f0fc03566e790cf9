// Package ytvideodata fetches display metadata for a youtube video. The
// oembed endpoint is tried first; videos that disallow embedding fall
// back to scraping the watch page.
package ytvideodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func Fetch(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := fetchWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = fetchFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}

func fetchWithEmbed(ctx context.Context, videoId string) (*VideoData, error) {
	url := fmt.Sprintf("https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s", videoId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return nil, ErrVideoNotFound
		case http.StatusUnauthorized:
			return nil, ErrVideoNotEmbeddable
		default:
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	var result VideoData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
