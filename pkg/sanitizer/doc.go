// Package sanitizer normalizes customer input before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Invalid input is handled by returning an empty string rather
// than an error; callers validate the result.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number]) using a default region
//   - Names: Collapse whitespace, trim leading/trailing spaces
//   - Notes: Trim, collapse whitespace and drop control characters
package sanitizer
