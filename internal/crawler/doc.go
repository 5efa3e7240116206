// Package crawler implements URL discovery for pubscan.
//
// It contains the link extractor (markup to same-host link set), the URL
// classifier (content vs. structural, as an ordered list of named rules),
// and the frontier manager that drives the bounded crawl: homepage fetch,
// required-page check, one-hop expansion, and classification into the
// final content-page set.
package crawler
