package partitionkey

import "github.com/mycelian/partitionkey/internal/canonical"

// Re-export serializer errors so callers match against a single package.
var ErrCycle = canonical.ErrCycle

type (
	CycleError           = canonical.CycleError
	UnsupportedTypeError = canonical.UnsupportedTypeError
	InvalidNumberError   = canonical.InvalidNumberError
	SyntaxError          = canonical.SyntaxError
)

// Object is an insertion-ordered JSON object. Build events with it when the
// event digest has to match one computed by a producer in another runtime.
type Object = canonical.Object

// NewObject returns an Object holding kv, which alternates keys and values.
func NewObject(kv ...any) *Object { return canonical.NewObject(kv...) }
