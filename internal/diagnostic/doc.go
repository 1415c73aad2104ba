// Package diagnostic collects structured errors, warnings and notes produced
// while binding metadata is validated.
//
// Key capabilities:
//   - Unknown types, attributes and converters
//   - Invalid or conflicting encoding policies
//   - Paths that cannot carry the requested encoding
package diagnostic
