// Package sanitizer normalizes free-text and identifier input before
// validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is handled by returning a cleaned string rather than an error;
// rejecting input is the validators' job.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces, drop control characters
//   - Identifiers: trim surrounding whitespace
package sanitizer
