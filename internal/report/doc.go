// Package report renders finished scan reports in the supported output
// formats: machine-readable JSON, shareable Markdown, spreadsheet XLSX,
// and a plain-text terminal format.
//
// Writers render a completed report; they never mutate it. Format
// selection happens at the CLI layer, and every writer targets an
// io.Writer so output can go to stdout, a file, or a network
// connection with the same API.
package report
