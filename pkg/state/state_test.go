package state

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"testing"
)

func TestPagesSplitsWithFooter(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e"}
	pages := Pages(urls, 2)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages got %d", len(pages))
	}
	if pages[0].Footer != "Displayed 2 in 5 URLs. Page 1/3" {
		t.Fatalf("unexpected footer %q", pages[0].Footer)
	}
	if pages[2].Footer != "Displayed 1 in 5 URLs. Page 3/3" || !reflect.DeepEqual(pages[2].URLs, []string{"e"}) {
		t.Fatalf("unexpected last page %+v", pages[2])
	}
	if pages[0].Description != "<a>\n<b>" {
		t.Fatalf("unexpected description %q", pages[0].Description)
	}
}

func TestPagesEmpty(t *testing.T) {
	pages := Pages(nil, 10)
	if len(pages) != 1 || pages[0].Description != "No new failed image so far." || pages[0].Footer != "Page 1/1" {
		t.Fatalf("unexpected placeholder %+v", pages)
	}
}

func exerciseStore(t *testing.T, s Store, channel string) {
	t.Helper()
	ctx := context.Background()
	if err := s.AppendFailed(ctx, channel, "u1", "u2"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendFailed(ctx, channel, "u3"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendFailed(ctx, channel+"-other", "x"); err != nil {
		t.Fatalf("append other: %v", err)
	}
	got, err := s.DrainFailed(ctx, channel)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"u1", "u2", "u3"}) {
		t.Fatalf("unexpected drained list %v", got)
	}
	again, err := s.DrainFailed(ctx, channel)
	if err != nil || len(again) != 0 {
		t.Fatalf("second drain should be empty: %v err=%v", again, err)
	}
	other, _ := s.DrainFailed(ctx, channel+"-other")
	if !reflect.DeepEqual(other, []string{"x"}) {
		t.Fatalf("channels must be independent: %v", other)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), "tips")
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL_TEST")
	if url == "" {
		t.Skip("redis tests are disabled; set REDIS_URL_TEST to enable")
	}
	s, err := NewRedisStore(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s, fmt.Sprintf("test-%d", os.Getpid()))
}
