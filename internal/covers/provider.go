// Package covers downloads poster artwork for catalog titles into the
// cover cache.
package covers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNoPoster means the provider knows no artwork for the title.
	ErrNoPoster = errors.New("no poster found")
	// ErrNotImage means a download did not look like an image.
	ErrNotImage = errors.New("downloaded file is not an image")
	// ErrNoAPIKey is returned when the OMDb key is missing.
	ErrNoAPIKey = errors.New("omdb api key not configured")
)

// Provider finds the poster URL for a title.
type Provider interface {
	Lookup(ctx context.Context, title, year string) (string, error)
}

// DefaultEndpoint is the public OMDb API.
const DefaultEndpoint = "https://www.omdbapi.com/"

// OMDbProvider searches the OMDb API and returns the first hit's poster.
type OMDbProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewOMDbProvider creates a provider. An empty endpoint uses DefaultEndpoint.
func NewOMDbProvider(endpoint, apiKey string, timeout time.Duration) *OMDbProvider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OMDbProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type omdbSearch struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Lookup implements Provider.
func (p *OMDbProvider) Lookup(ctx context.Context, title, year string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("apikey", p.apiKey)
	q.Set("s", title)
	q.Set("type", "movie")
	if year != "" {
		q.Set("y", year)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	var body omdbSearch
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode omdb response: %w", err)
	}

	// OMDb answers 200 with Response=False for both misses and bad keys
	if body.Response == "False" {
		if body.Error == "" || strings.Contains(strings.ToLower(body.Error), "not found") {
			return "", ErrNoPoster
		}
		return "", fmt.Errorf("omdb: %s", body.Error)
	}
	if len(body.Search) == 0 {
		return "", ErrNoPoster
	}
	poster := body.Search[0].Poster
	if poster == "" || poster == "N/A" {
		return "", ErrNoPoster
	}
	return poster, nil
}
