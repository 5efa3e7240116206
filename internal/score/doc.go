// Package score turns a populated scan report into its final compliance
// score, aggregated suggestion list, and one-line summary.
package score
