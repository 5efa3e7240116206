// Package analyze implements the per-page analysis stages of pubscan:
// content quality measurement, near-duplicate detection, and rule-based
// policy-violation detection.
//
// Everything in this package is synchronous and CPU-bound. Pages are
// parsed once into a Document and shared across the three analyzers, so
// a page is never re-parsed per check.
package analyze
