package analyze

import (
	"fmt"
	"strings"
	"testing"
)

// longArticle builds markup whose content container holds n words.
func longArticle(n int, withHierarchy bool) string {
	words := strings.Repeat("word ", n)
	headings := ""
	if withHierarchy {
		headings = "<h1>Title</h1><h2>Section</h2>"
	}
	return fmt.Sprintf("<body><article>%s%s</article></body>", headings, words)
}

func TestAnalyzeQuality(t *testing.T) {
	t.Parallel()

	t.Run("substantial page with hierarchy has no issues", func(t *testing.T) {
		t.Parallel()

		doc, err := NewDocument("https://example.com/post", longArticle(400, true))
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		signal := AnalyzeQuality(doc)
		if len(signal.Issues) != 0 {
			t.Errorf("Issues = %v, want none", signal.Issues)
		}
		if !signal.HasHeadingHierarchy {
			t.Error("HasHeadingHierarchy = false, want true")
		}
		if signal.WordCount < 400 {
			t.Errorf("WordCount = %d, want >= 400", signal.WordCount)
		}
	})

	t.Run("thin content flagged under 300 words", func(t *testing.T) {
		t.Parallel()

		doc, err := NewDocument("https://example.com/post", longArticle(50, true))
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		signal := AnalyzeQuality(doc)
		if len(signal.Issues) != 1 {
			t.Fatalf("Issues = %v, want exactly one", signal.Issues)
		}
		if !strings.Contains(signal.Issues[0], "thin content") {
			t.Errorf("Issues[0] = %q, want thin-content issue", signal.Issues[0])
		}
	})

	t.Run("lone h1 is not a hierarchy", func(t *testing.T) {
		t.Parallel()

		markup := fmt.Sprintf("<body><article><h1>Only Title</h1>%s</article></body>", strings.Repeat("word ", 400))
		doc, err := NewDocument("https://example.com/post", markup)
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		signal := AnalyzeQuality(doc)
		if signal.HasHeadingHierarchy {
			t.Error("HasHeadingHierarchy = true, want false for lone h1")
		}
		if len(signal.Issues) != 1 || signal.Issues[0] != issueMissingHierarchy {
			t.Errorf("Issues = %v, want only the hierarchy issue", signal.Issues)
		}
	})

	t.Run("subheadings without h1 are not a hierarchy", func(t *testing.T) {
		t.Parallel()

		markup := fmt.Sprintf("<body><article><h2>A</h2><h3>B</h3>%s</article></body>", strings.Repeat("word ", 400))
		doc, err := NewDocument("https://example.com/post", markup)
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		if AnalyzeQuality(doc).HasHeadingHierarchy {
			t.Error("HasHeadingHierarchy = true, want false without h1")
		}
	})

	t.Run("thin page without headings gets both issues", func(t *testing.T) {
		t.Parallel()

		doc, err := NewDocument("https://example.com/", "<body><p>barely anything</p></body>")
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		if got := len(AnalyzeQuality(doc).Issues); got != 2 {
			t.Errorf("len(Issues) = %d, want 2", got)
		}
	})

	t.Run("word count comes from the content container", func(t *testing.T) {
		t.Parallel()

		// Chrome outside the container must not inflate the count.
		markup := fmt.Sprintf("<body><nav>%s</nav><article>one two three</article></body>", strings.Repeat("menu ", 500))
		doc, err := NewDocument("https://example.com/", markup)
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}

		if got := AnalyzeQuality(doc).WordCount; got != 3 {
			t.Errorf("WordCount = %d, want 3", got)
		}
	})
}
