// Package main provides the entry point for the pubscan CLI.
//
// Pubscan audits publisher websites for ad-network policy compliance.
// It crawls a site, classifies pages, checks content quality, detects
// policy violations, and produces a compliance score.
//
// Usage:
//
//	pubscan scan <site-url>
//	pubscan serve --addr :8080
//
// See --help for all available options.
package main

// main is the entry point for pubscan.
func main() {
	Execute()
}
