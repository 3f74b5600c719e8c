package pipeline

import "errors"

// ErrFallbackRequired is returned when the provider quota is exhausted and
// the run cannot proceed automatically. The caller should render the prompt
// for the operator and resume through the manual paste-in path.
var ErrFallbackRequired = errors.New("provider quota exhausted, manual fallback required")
