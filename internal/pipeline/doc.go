// Package pipeline orchestrates a site scan as an ordered sequence of
// steps: frontier discovery, homepage analysis, concurrent content-page
// analysis, and scoring. A BatchProcessor runs the whole sequence for
// several targets concurrently.
package pipeline
