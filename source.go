package partitionkey

import "fmt"

// Source identifies the derivation step that produced a key.
type Source int

const (
	// SourceTrivial means no candidate existed and TrivialKey was returned.
	SourceTrivial Source = iota
	// SourceExplicit means the event's string partitionKey was used as is.
	SourceExplicit
	// SourceEncoded means a non-string partitionKey was JSON-encoded.
	SourceEncoded
	// SourceEventDigest means the event had no usable partitionKey and its
	// canonical JSON was hashed.
	SourceEventDigest
	// SourceKeyDigest means the candidate exceeded MaxKeyLength and was hashed.
	SourceKeyDigest
)

// String returns the label used in logs and metrics.
func (s Source) String() string {
	switch s {
	case SourceTrivial:
		return "trivial"
	case SourceExplicit:
		return "explicit"
	case SourceEncoded:
		return "encoded"
	case SourceEventDigest:
		return "event_digest"
	case SourceKeyDigest:
		return "key_digest"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
