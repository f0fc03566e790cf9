package ytvideodata

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/net/html"
)

func fetchFromPage(ctx context.Context, videoId string) (*VideoData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://youtu.be/"+videoId, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	return &VideoData{
		Title:        findTitle(doc),
		AuthorName:   findAuthorName(doc),
		ThumbnailUrl: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId),
	}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return n.FirstChild.Data
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}

	return ""
}

// findAuthorName picks the channel name out of the watch page's
// <link itemprop="name" content="..."> microdata.
func findAuthorName(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		isName := false
		content := ""
		for _, attr := range n.Attr {
			switch attr.Key {
			case "itemprop":
				isName = attr.Val == "name"
			case "content":
				content = attr.Val
			}
		}
		if isName {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name := findAuthorName(c); name != "" {
			return name
		}
	}

	return ""
}
