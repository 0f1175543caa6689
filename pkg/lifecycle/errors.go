package lifecycle

import "errors"

// Error taxonomy for the browser lifecycle. Each sentinel is wrapped with
// fmt.Errorf("%w: detail", ErrX) at the call site so callers can both
// pattern-match via errors.Is and read a human message.
var (
	ErrExecutableNotFound  = errors.New("lifecycle: chrome/chromium executable not found")
	ErrLaunchFailed        = errors.New("lifecycle: browser launch failed")
	ErrProtocolError       = errors.New("lifecycle: debugging protocol error")
	ErrTimeout             = errors.New("lifecycle: operation timed out")
	ErrShutdownInProgress  = errors.New("lifecycle: shutdown already in progress")
	ErrConfigurationInvalid = errors.New("lifecycle: invalid configuration")
)
