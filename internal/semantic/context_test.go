package semantic

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pubscan/pubscan/internal/analyze"
	"github.com/pubscan/pubscan/internal/config"
)

func parseDoc(t *testing.T, pageURL, markup string) *analyze.Document {
	t.Helper()
	doc, err := analyze.NewDocument(pageURL, markup)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}
	return doc
}

func TestBuildContext(t *testing.T) {
	t.Parallel()

	t.Run("collects title meta headings and body", func(t *testing.T) {
		t.Parallel()

		markup := `<html><head><title>Post Title</title><meta name="description" content="A description."></head>
			<body><article><h1>Post Title</h1><h2>Section</h2><p>` + strings.Repeat("body text ", 60) + `</p></article></body></html>`
		pc := BuildContext(parseDoc(t, "https://example.com/post", markup), markup, "content")

		if pc.Title != "Post Title" {
			t.Errorf("Title = %q, want %q", pc.Title, "Post Title")
		}
		if pc.MetaDescription != "A description." {
			t.Errorf("MetaDescription = %q, want %q", pc.MetaDescription, "A description.")
		}
		if len(pc.Headings) != 2 {
			t.Errorf("len(Headings) = %d, want 2", len(pc.Headings))
		}
		if !strings.Contains(pc.Body, "body text") {
			t.Errorf("Body = %q, want main text present", pc.Body)
		}
		if pc.Role != "content" {
			t.Errorf("Role = %q, want %q", pc.Role, "content")
		}
	})

	t.Run("body is truncated to the character budget", func(t *testing.T) {
		t.Parallel()

		huge := strings.Repeat("lorem ipsum dolor sit amet ", 2000)
		markup := fmt.Sprintf("<html><head><title>T</title></head><body><article><p>%s</p></article></body></html>", huge)
		pc := BuildContext(parseDoc(t, "https://example.com/long", markup), markup, "content")

		total := len(pc.URL) + len(pc.Role) + len(pc.Title) + len(pc.MetaDescription) + len(pc.Body)
		for _, h := range pc.Headings {
			total += len(h)
		}
		if total > config.SemanticContextBudget {
			t.Errorf("context size = %d, want <= %d", total, config.SemanticContextBudget)
		}
	})

	t.Run("truncation never splits a multi-byte rune", func(t *testing.T) {
		t.Parallel()

		// Every character is multi-byte, so a byte-index cut is almost
		// guaranteed to land mid-rune unless the boundary is respected.
		huge := strings.Repeat("日本語のとても長い本文テキスト ", 2000)
		markup := fmt.Sprintf("<html><head><title>T</title></head><body><article><p>%s</p></article></body></html>", huge)
		pc := BuildContext(parseDoc(t, "https://example.com/cjk", markup), markup, "content")

		if !utf8.ValidString(pc.Body) {
			t.Error("Body is not valid UTF-8 after truncation")
		}
		if len(pc.Body) > config.SemanticContextBudget {
			t.Errorf("Body size = %d, want <= %d", len(pc.Body), config.SemanticContextBudget)
		}
	})

	t.Run("falls back to container text when extraction fails", func(t *testing.T) {
		t.Parallel()

		// Too little content for readability; the container text covers it.
		markup := `<body><article>tiny but present</article></body>`
		pc := BuildContext(parseDoc(t, "https://example.com/tiny", markup), markup, "content")
		if pc.Body == "" {
			t.Error("Body = empty, want fallback container text")
		}
	})
}

func TestShouldClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pc   PageContext
		want bool
	}{
		{
			name: "tool keyword in path always classifies",
			pc:   PageContext{URL: "https://example.com/cracked-software-2024", Body: "a lovely recipe guide"},
			want: true,
		},
		{
			name: "danger keyword in text classifies",
			pc:   PageContext{URL: "https://example.com/post", Body: "visit our online casino today"},
			want: true,
		},
		{
			name: "safe keywords only skip classification",
			pc:   PageContext{URL: "https://example.com/post", Body: "a sourdough recipe and baking tutorial"},
			want: false,
		},
		{
			name: "danger beats safe when both present",
			pc:   PageContext{URL: "https://example.com/post", Body: "recipe for winning at the casino"},
			want: true,
		},
		{
			name: "unrecognizable text classifies",
			pc:   PageContext{URL: "https://example.com/post", Body: "quarterly widget market outlook"},
			want: true,
		},
		{
			name: "danger keyword in title counts",
			pc:   PageContext{URL: "https://example.com/post", Title: "Best torrent sites", Body: "some tutorial text"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ShouldClassify(tt.pc); got != tt.want {
				t.Errorf("ShouldClassify() = %v, want %v", got, tt.want)
			}
		})
	}
}
