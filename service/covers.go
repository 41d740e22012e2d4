package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	openLibrarySearchBase = "https://openlibrary.org"
	openLibraryCoversBase = "https://covers.openlibrary.org"
)

// ErrNoCover means Open Library has no cover for the title/author pair.
var ErrNoCover = errors.New("no cover found")

// CoverService resolves book cover image URLs via the Open Library
// search API. Results are cached in-process; covers for a given
// title/author pair effectively never change.
type CoverService struct {
	searchBase string
	coversBase string
	client     *http.Client

	mu    sync.Mutex
	cache map[string]string
}

func NewCoverService() *CoverService {
	return &CoverService{
		searchBase: openLibrarySearchBase,
		coversBase: openLibraryCoversBase,
		// short timeout so a slow upstream doesn't hold requests hostage
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  make(map[string]string),
	}
}

type openLibrarySearchResp struct {
	Docs []struct {
		CoverID int64 `json:"cover_i"`
	} `json:"docs"`
}

// CoverURL returns a direct cover image URL for the given title and
// author, or ErrNoCover.
func (s *CoverService) CoverURL(ctx context.Context, title, author string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(author))
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	q := url.Values{}
	q.Set("title", title)
	q.Set("author", author)
	q.Set("limit", "1")
	q.Set("fields", "cover_i")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchBase+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("open library returned %d", resp.StatusCode)
	}
	var data openLibrarySearchResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if len(data.Docs) == 0 || data.Docs[0].CoverID == 0 {
		return "", ErrNoCover
	}
	coverURL := fmt.Sprintf("%s/b/id/%d-L.jpg", s.coversBase, data.Docs[0].CoverID)

	s.mu.Lock()
	s.cache[key] = coverURL
	s.mu.Unlock()
	return coverURL, nil
}
