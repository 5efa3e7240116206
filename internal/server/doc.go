// Package server exposes the scan pipeline over HTTP: a scan endpoint
// accepting scan-site and verify-script actions, and a health check.
// Errors cross the API boundary in one uniform {error, message} shape.
package server
