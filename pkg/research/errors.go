package research

import "errors"

var (
	ErrSessionNotFound = errors.New("research: session not found")
)
