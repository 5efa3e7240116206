// Package model defines the core data structures shared across pubscan.
//
// This package contains the scan target, crawled page records, violations,
// quality signals, and the final site report. It has no dependencies on
// other internal packages, making it safe to import from anywhere.
package model
