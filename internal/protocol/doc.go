// Package protocol owns the Teleinfo wire contract primitives.
//
// Ownership boundary:
// - control bytes and group layout
// - group checksum
// - numeric key set and identification key
// - decode error taxonomy
//
// Frame assembly lives in protocol/frame.
package protocol
