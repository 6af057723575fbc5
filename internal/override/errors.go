package override

import "errors"

var (
	// ErrAlreadyListed is returned by Add for a token already on the list.
	ErrAlreadyListed = errors.New("already listed")

	// ErrEmptyToken is returned by Add for a blank token.
	ErrEmptyToken = errors.New("empty token")

	// ErrUnknownList is returned for a list name other than blacklist or whitelist.
	ErrUnknownList = errors.New("unknown list: expected blacklist or whitelist")
)
