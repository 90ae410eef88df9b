// Package state keeps per-channel lists of image URLs the pipeline could not read.
package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store accumulates failed image URLs per channel until an editor drains them.
type Store interface {
	AppendFailed(ctx context.Context, channel string, urls ...string) error
	// DrainFailed returns and clears the channel's list in one step.
	DrainFailed(ctx context.Context, channel string) ([]string, error)
	Close() error
}

// Page is one screen of failed URLs.
type Page struct {
	URLs        []string `json:"urls"`
	Description string   `json:"description"`
	Footer      string   `json:"footer"`
}

// Pages splits urls into pages of perPage entries. An empty list yields one placeholder page.
func Pages(urls []string, perPage int) []Page {
	if len(urls) == 0 {
		return []Page{{URLs: []string{}, Description: "No new failed image so far.", Footer: "Page 1/1"}}
	}
	if perPage < 1 {
		perPage = 1
	}
	count := (len(urls) + perPage - 1) / perPage
	pages := make([]Page, 0, count)
	for i := 0; i < count; i++ {
		end := (i + 1) * perPage
		if end > len(urls) {
			end = len(urls)
		}
		chunk := append([]string(nil), urls[i*perPage:end]...)
		lines := make([]string, len(chunk))
		for j, u := range chunk {
			lines[j] = "<" + u + ">"
		}
		pages = append(pages, Page{
			URLs:        chunk,
			Description: strings.Join(lines, "\n"),
			Footer:      fmt.Sprintf("Displayed %d in %d URLs. Page %d/%d", len(chunk), len(urls), i+1, count),
		})
	}
	return pages
}

// MemoryStore is an in-process Store for tools and tests.
type MemoryStore struct {
	mu     sync.Mutex
	failed map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{failed: map[string][]string{}}
}

func (m *MemoryStore) AppendFailed(ctx context.Context, channel string, urls ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[channel] = append(m.failed[channel], urls...)
	return nil
}

func (m *MemoryStore) DrainFailed(ctx context.Context, channel string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.failed[channel]
	delete(m.failed, channel)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
