package engine

import "errors"

var (
	// ErrAnalysisFailed wraps every failure of Analyze that is not a
	// degraded collector. Collector failures never surface as errors.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrEmptyURL is returned, wrapped in ErrAnalysisFailed, for a blank URL.
	ErrEmptyURL = errors.New("url is empty")
)
