package dag

import "errors"

var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrCommitNotFound   = errors.New("commit not found")
	ErrAmbiguousID      = errors.New("ambiguous commit id")
	ErrRefNotFound      = errors.New("ref not found")
	ErrNoCommonAncestor = errors.New("no common ancestor")
	ErrInvalidRefName   = errors.New("invalid ref name")
)
