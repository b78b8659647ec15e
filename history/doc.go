// Package history exports a snapshot history as a compact stream for
// external renderers and reads it back.
//
// # Format
//
//	┌──────────────┬──────────────────┬───────────────────────────────────┐
//	│ magic "LHST" │ compression (u8) │ (compressed) newline-delimited    │
//	│   4 bytes    │   0/1/2          │ JSON records, one per snapshot    │
//	└──────────────┴──────────────────┴───────────────────────────────────┘
//
// Records are written in snapshot order and Read yields them lazily in the
// same order.
package history
