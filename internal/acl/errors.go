package acl

import "errors"

// ErrPermissionDenied is returned by [Gate.AuthorizeOrFail] when the caller
// does not satisfy the resource's ACL. It carries no detail about the
// resource so that denial responses do not leak existence.
var ErrPermissionDenied = errors.New("permission denied")
