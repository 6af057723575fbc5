package lexical

import "errors"

// ErrNoHost is returned by collectors given a URL without a host.
var ErrNoHost = errors.New("url has no host")
