package agentloop

import "errors"

var (
	ErrChannelClosed = errors.New("agentloop: command or response channel closed")
	ErrStopTimeout   = errors.New("agentloop: processor did not acknowledge stop in time")
	ErrStepFailed    = errors.New("agentloop: step failed")
	ErrStopped       = errors.New("agentloop: loop was stopped")
)
