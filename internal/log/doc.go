// Package log provides a sanitizing slog handler for pubscan.
//
// Scan logging routinely carries request metadata (headers, cookies, the
// classifier credential). The handler in this package masks anything that
// looks like a secret before it reaches the underlying handler, so no
// log sink ever sees the classifier API key or a site's auth cookie.
package log
