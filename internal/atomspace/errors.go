package atomspace

import "errors"

// ErrInvalidReference is returned when a Link's outgoing set references a
// UUID not owned by this store. The operation is rejected; state is
// unchanged.
var ErrInvalidReference = errors.New("atomspace: invalid reference")

// ErrEmptyOutgoing is returned when AddLink is called with no outgoing
// members — Links must have an outgoing set of length >= 1.
var ErrEmptyOutgoing = errors.New("atomspace: link outgoing set must be non-empty")
