// Package fetch provides the HTTP fetcher used by the crawl pipeline.
//
// The fetcher has one deliberately blunt contract: a fetch either yields
// markup or an empty string. Timeouts, TLS problems, DNS failures, and
// non-2xx statuses all collapse to the empty result with a logged
// warning, so callers never branch on transport-specific errors. Empty
// means "unavailable", never "blank page".
package fetch
