package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// mementoMaxAge bounds how old an archive snapshot may be before it is
// ignored in favor of a live fetch.
const mementoMaxAge = 10 * 365 * 24 * time.Hour

// waybackTimestampLayout is the archive index's timestamp format.
const waybackTimestampLayout = "20060102150405"

// waybackClient queries a historical web-archive availability index and
// replays mementos. Every failure here is non-fatal: the caller falls through
// to a live fetch.
type waybackClient struct {
	availabilityURL string
	httpClient      *http.Client
	now             func() time.Time
}

func newWaybackClient(availabilityURL string, timeout time.Duration) *waybackClient {
	return &waybackClient{
		availabilityURL: availabilityURL,
		httpClient:      &http.Client{Timeout: timeout},
		now:             time.Now,
	}
}

// availabilityResponse is the index's wire shape.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// lookup finds the memento URL for target, or "" when no usable memento
// exists.
func (w *waybackClient) lookup(ctx context.Context, target string) (string, error) {
	q := url.Values{}
	q.Set("url", target)
	q.Set("timestamp", w.now().UTC().Format(waybackTimestampLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.availabilityURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("availability index status %d", resp.StatusCode)
	}

	var avail availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&avail); err != nil {
		return "", err
	}

	closest := avail.ArchivedSnapshots.Closest
	if !closest.Available || closest.URL == "" {
		return "", nil
	}

	taken, err := time.Parse(waybackTimestampLayout, closest.Timestamp)
	if err != nil || w.now().Sub(taken) > mementoMaxAge {
		return "", nil
	}

	return closest.URL, nil
}

// replay fetches the memento body and synthesizes a response from it.
func (w *waybackClient) replay(ctx context.Context, mementoURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mementoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memento replay status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  http.StatusOK,
		Header:      resp.Header.Clone(),
		Body:        body,
		FromArchive: true,
	}, nil
}
