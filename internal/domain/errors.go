package domain

import "errors"

var (
	// ErrNoCreationDate is returned when a WHOIS record carries no creation date.
	ErrNoCreationDate = errors.New("whois record has no creation date")

	// ErrUnparseableDate is returned when the creation date matches no known layout.
	ErrUnparseableDate = errors.New("unparseable whois creation date")

	// ErrFutureCreationDate is returned when the creation date lies after now.
	ErrFutureCreationDate = errors.New("whois creation date is in the future")
)
