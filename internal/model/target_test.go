package model

import (
	"errors"
	"testing"
)

// TestNewCrawlTarget tests URL validation at target construction.
func TestNewCrawlTarget(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     string
		wantErr bool
		want    string
	}{
		{"plain http", "http://example.com", false, "http://example.com/"},
		{"https with path", "https://example.com/blog", false, "https://example.com/blog"},
		{"fragment stripped", "https://example.com/post#top", false, "https://example.com/post"},
		{"surrounding whitespace", "  https://example.com  ", false, "https://example.com/"},
		{"empty", "", true, ""},
		{"no scheme", "example.com", true, ""},
		{"wrong scheme", "ftp://example.com", true, ""},
		{"scheme only", "https://", true, ""},
		{"garbage", "http://%zz", true, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target, err := NewCrawlTarget(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Fatalf("expected ErrInvalidTarget, got %v", err)
				}
				if !target.IsZero() {
					t.Error("expected zero target on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.String() != tc.want {
				t.Errorf("got %q, expected %q", target.String(), tc.want)
			}
		})
	}
}

// TestCrawlTargetHomepage tests that the homepage is always the site root.
func TestCrawlTargetHomepage(t *testing.T) {
	t.Parallel()

	target, err := NewCrawlTarget("https://example.com/2024/01/deep-post?ref=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := target.Homepage(); got != "https://example.com/" {
		t.Errorf("got %q, expected site root", got)
	}
	if got := target.Host(); got != "example.com" {
		t.Errorf("got host %q, expected example.com", got)
	}
}

// TestCrawlTargetURLCopy tests that URL() returns an independent copy.
func TestCrawlTargetURLCopy(t *testing.T) {
	t.Parallel()

	target, err := NewCrawlTarget("https://example.com/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u := target.URL()
	u.Path = "/mutated"

	if target.String() != "https://example.com/page" {
		t.Error("mutating the returned URL changed the target")
	}
}
