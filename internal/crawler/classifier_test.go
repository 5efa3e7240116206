package crawler

import "testing"

// TestClassifyLegalPagesAreStructural tests that required-legal-page
// keywords always classify as structural.
func TestClassifyLegalPagesAreStructural(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://example.com/about",
		"https://example.com/about-us",
		"https://example.com/contact",
		"https://example.com/privacy-policy",
		"https://example.com/terms",
		"https://example.com/terms-of-service",
		"https://example.com/disclaimer",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			if IsLikelyContentURL(u) {
				t.Errorf("%s classified as content, expected structural", u)
			}
		})
	}
}

// TestClassifyToolKeywordWinsOverStructural tests rule precedence:
// download/tool keywords are analyzed even when the path also matches a
// structural pattern.
func TestClassifyToolKeywordWinsOverStructural(t *testing.T) {
	t.Parallel()

	testCases := []string{
		"https://example.com/download/",
		"https://example.com/category/cracked-software",
		"https://example.com/tag/torrent-sites",
		"https://example.com/search?q=keygen", // query, but path check only
		"https://example.com/best-video-downloader",
	}

	for _, u := range testCases {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			verdict, rule := Classify(u)
			if u == "https://example.com/search?q=keygen" {
				// Keyword is in the query, not the path: the structural
				// "search" segment wins.
				if verdict != VerdictStructural {
					t.Errorf("got %v, expected structural for query-only keyword", verdict)
				}
				return
			}
			if verdict != VerdictContent {
				t.Errorf("got %v via %s, expected content", verdict, rule)
			}
			if rule != "ToolKeyword" {
				t.Errorf("got rule %s, expected ToolKeyword", rule)
			}
		})
	}
}

// TestClassifyStructuralPatterns tests the structural exclusion rule.
func TestClassifyStructuralPatterns(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://example.com/category/recipes",
		"https://example.com/tag/travel",
		"https://example.com/author/jane",
		"https://example.com/page/3",
		"https://example.com/wp-admin/options.php",
		"https://example.com/cart",
		"https://example.com/feed",
		"https://example.com/archives/2023",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			verdict, rule := Classify(u)
			if verdict != VerdictStructural {
				t.Errorf("got %v via %s, expected structural", verdict, rule)
			}
		})
	}
}

// TestClassifyDatedPostPattern tests the /YYYY/MM/slug rule.
func TestClassifyDatedPostPattern(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url  string
		want Verdict
		rule string
	}{
		{"https://example.com/2024/01/my-first-post", VerdictContent, "DatedPostPattern"},
		{"https://example.com/2024/01/my-first-post.html", VerdictContent, "DatedPostPattern"},
		{"https://example.com/2024/01/my-first-post/", VerdictContent, "DatedPostPattern"},
		{"https://example.com/2024/no-month/post-title", VerdictContent, "DescriptiveSlug"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()
			verdict, rule := Classify(tc.url)
			if verdict != tc.want || rule != tc.rule {
				t.Errorf("got %v via %s, expected %v via %s", verdict, rule, tc.want, tc.rule)
			}
		})
	}
}

// TestClassifyDescriptiveSlug tests the multi-segment slug rule.
func TestClassifyDescriptiveSlug(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url  string
		want Verdict
	}{
		{"https://example.com/guides/installing-solar-panels", VerdictContent},
		{"https://example.com/reviews/tech/best-laptops-2024", VerdictContent},
		{"https://example.com/a/b", VerdictStructural},       // slug too short
		{"https://example.com/posts/12345", VerdictStructural}, // purely numeric
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()
			if verdict, rule := Classify(tc.url); verdict != tc.want {
				t.Errorf("got %v via %s, expected %v", verdict, rule, tc.want)
			}
		})
	}
}

// TestClassifySingleSegmentFallback tests the single-segment rule.
func TestClassifySingleSegmentFallback(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url  string
		want Verdict
	}{
		{"https://example.com/my-standalone-essay", VerdictContent},
		{"https://example.com/blog", VerdictStructural},  // obvious category
		{"https://example.com/news", VerdictStructural},  // obvious category
		{"https://example.com/aboutme", VerdictStructural}, // contains legal keyword
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()
			if verdict, rule := Classify(tc.url); verdict != tc.want {
				t.Errorf("got %v via %s, expected %v", verdict, rule, tc.want)
			}
		})
	}
}

// TestClassifyMalformedFailsClosed tests that unparseable URLs are
// rejected rather than analyzed.
func TestClassifyMalformedFailsClosed(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"http://%zz/path", "not-a-url", ""} {
		t.Run(u, func(t *testing.T) {
			t.Parallel()
			verdict, _ := Classify(u)
			if verdict != VerdictStructural {
				t.Errorf("malformed URL %q classified as content", u)
			}
		})
	}
}

// TestClassifyHomepageIsStructural tests that the bare root path never
// counts as a content page.
func TestClassifyHomepageIsStructural(t *testing.T) {
	t.Parallel()

	if IsLikelyContentURL("https://example.com/") {
		t.Error("root path classified as content")
	}
}
