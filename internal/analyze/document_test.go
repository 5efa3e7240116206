package analyze

import (
	"reflect"
	"testing"
)

func TestNewDocument(t *testing.T) {
	t.Parallel()

	t.Run("parses well-formed markup", func(t *testing.T) {
		t.Parallel()

		doc, err := NewDocument("https://example.com/post", `<html><head><title> My Post </title></head><body><p>hello</p></body></html>`)
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}
		if got, want := doc.Title(), "My Post"; got != want {
			t.Errorf("Title() = %q, want %q", got, want)
		}
	})

	t.Run("tolerates tag soup", func(t *testing.T) {
		t.Parallel()

		doc, err := NewDocument("https://example.com/", `<div><p>unclosed<div>nested`)
		if err != nil {
			t.Fatalf("NewDocument() unexpected error: %v", err)
		}
		if got := doc.BodyText(); got == "" {
			t.Error("BodyText() = empty, want recovered text")
		}
	})
}

func TestDocumentMetaDescription(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument("https://example.com/", `<html><head><meta name="description" content="  A fine site.  "></head><body></body></html>`)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}
	if got, want := doc.MetaDescription(), "A fine site."; got != want {
		t.Errorf("MetaDescription() = %q, want %q", got, want)
	}
}

func TestDocumentContentText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "prefers article over page chrome",
			markup: `<body><nav>Menu Items</nav><article>The real story.</article><footer>Legal</footer></body>`,
			want:   "The real story.",
		},
		{
			name:   "falls back through container selectors",
			markup: `<body><div class="entry-content">Entry text here.</div><div>other</div></body>`,
			want:   "Entry text here.",
		},
		{
			name:   "falls back to full body without containers",
			markup: `<body><div>Just  a   plain page.</div></body>`,
			want:   "Just a plain page.",
		},
		{
			name:   "skips empty container in favor of later match",
			markup: `<body><article></article><main>Main content.</main></body>`,
			want:   "Main content.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := NewDocument("https://example.com/", tt.markup)
			if err != nil {
				t.Fatalf("NewDocument() unexpected error: %v", err)
			}
			if got := doc.ContentText(); got != tt.want {
				t.Errorf("ContentText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentHeadings(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument("https://example.com/", `<body><h1>Top</h1><h2>First</h2><h3> Second </h3><h2></h2></body>`)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}

	if got, want := doc.Headings("h1"), []string{"Top"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Headings(h1) = %v, want %v", got, want)
	}
	if got, want := doc.Headings("h2", "h3"), []string{"First", "Second"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Headings(h2, h3) = %v, want %v", got, want)
	}
}

func TestDocumentAnchors(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument("https://example.com/", `<body><a href="/a"> One </a><a href="/b">Two</a><a>no href</a></body>`)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}

	type anchor struct{ href, text string }
	var visited []anchor
	doc.Anchors(func(href, text string) {
		visited = append(visited, anchor{href, text})
	})

	want := []anchor{{"/a", "One"}, {"/b", "Two"}}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Anchors() visited %v, want %v", visited, want)
	}
}

func TestDocumentCount(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument("https://example.com/", `<body><div class="ad-container"></div><div class="ad-container side"></div><div class="other"></div></body>`)
	if err != nil {
		t.Fatalf("NewDocument() unexpected error: %v", err)
	}
	if got, want := doc.Count(`div[class*='ad-container']`), 2; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
}
