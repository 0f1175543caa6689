package agentloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
)

const stopAckTimeout = 5 * time.Second

// StepResult is one completed step, returned to Run's caller.
type StepResult struct {
	Observation Observation
	Action      Action
}

// Loop is a single agent session's handle: a caller-facing command/
// response channel pair backed by a processor goroutine. A Loop is not
// safe for concurrent Step/Stop calls from multiple goroutines — callers
// serialize through Run or their own equivalent, matching the single-
// writer discipline the rest of this module uses for shared handles.
type Loop struct {
	task     string
	maxSteps int
	planner  Planner
	executor Executor

	cmdCh  chan command
	respCh chan response

	// stepCtx is the context passed to the planner/executor on every step.
	// Stop cancels it on a stop-ack timeout so an in-flight Plan/Execute
	// call can be interrupted rather than left to run to completion.
	stepCtx    context.Context
	cancelStep context.CancelFunc

	// forceStop is closed when Stop gives up waiting for an ack, letting
	// processor exit even if it never gets to send its Stopped response.
	forceStop chan struct{}
	stopOnce  sync.Once

	log *logging.Logger

	mu      sync.Mutex
	running bool
}

// New creates a Loop and starts its processor goroutine.
func New(task string, maxSteps int, planner Planner, executor Executor) *Loop {
	l, _ := logging.NewLogger("agentloop")

	stepCtx, cancelStep := context.WithCancel(context.Background())

	loop := &Loop{
		task:       task,
		maxSteps:   maxSteps,
		planner:    planner,
		executor:   executor,
		cmdCh:      make(chan command, 1),
		respCh:     make(chan response, 1),
		stepCtx:    stepCtx,
		cancelStep: cancelStep,
		forceStop:  make(chan struct{}),
		log:        l,
		running:    true,
	}
	go loop.processor()
	return loop
}

// IsRunning reports whether the processor goroutine is still accepting
// commands.
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Run drives the loop to completion: it sends Step repeatedly until the
// planner signals Done/Fail, the step budget is exhausted, or ctx is
// canceled, then returns the accumulated step history.
func (l *Loop) Run(ctx context.Context) ([]StepResult, string, error) {
	var history []StepResult

	for step := 0; step < l.maxSteps; step++ {
		select {
		case <-ctx.Done():
			return history, "", ctx.Err()
		default:
		}

		if !l.IsRunning() {
			return history, "", ErrStopped
		}

		result, done, finalResult, failReason, err := l.Step(ctx)
		if err != nil {
			return history, "", err
		}

		history = append(history, result)

		if done {
			_ = l.Stop()
			return history, finalResult, nil
		}
		if failReason != "" {
			_ = l.Stop()
			return history, "", fmt.Errorf("%w: %s", ErrStepFailed, failReason)
		}
	}

	_ = l.Stop()
	return history, "", nil
}

// Step advances the loop by exactly one iteration and blocks for its
// response. Returns (stepResult, done, finalResult, failReason, err).
func (l *Loop) Step(ctx context.Context) (StepResult, bool, string, string, error) {
	select {
	case l.cmdCh <- command{kind: cmdStep}:
	case <-ctx.Done():
		return StepResult{}, false, "", "", ctx.Err()
	}

	select {
	case resp, ok := <-l.respCh:
		if !ok {
			return StepResult{}, false, "", "", ErrChannelClosed
		}
		switch resp.kind {
		case respStepCompleted:
			return StepResult{Observation: resp.obs}, false, "", "", nil
		case respDone:
			return StepResult{Observation: resp.obs}, true, resp.result, "", nil
		case respFailed:
			return StepResult{Observation: resp.obs}, false, "", resp.reason, nil
		case respStopped:
			return StepResult{}, false, "", "", ErrStopped
		default:
			return StepResult{}, false, "", "", fmt.Errorf("agentloop: unexpected response kind %d", resp.kind)
		}
	case <-ctx.Done():
		return StepResult{}, false, "", "", ctx.Err()
	}
}

// Stop sends a Stop command and awaits the processor's Stopped
// acknowledgement with a bounded timeout. On timeout it calls
// forceStopProcessor (cancelling the in-flight step's context and
// signalling the processor goroutine to exit), marks the loop no longer
// running, and returns a typed error rather than blocking forever.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	select {
	case l.cmdCh <- command{kind: cmdStop}:
	case <-time.After(stopAckTimeout):
		l.forceStopProcessor()
		return ErrStopTimeout
	}

	select {
	case resp, ok := <-l.respCh:
		if !ok || resp.kind != respStopped {
			l.log.Warnf("expected Stopped response, got kind=%v ok=%v", resp.kind, ok)
		}
		l.markStopped()
		return nil
	case <-time.After(stopAckTimeout):
		l.log.Warnf("processor did not acknowledge stop within %s", stopAckTimeout)
		l.forceStopProcessor()
		return ErrStopTimeout
	}
}

func (l *Loop) markStopped() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

// forceStopProcessor cancels the in-flight step's context and signals the
// processor goroutine to exit, used when a stop-ack never arrives in
// time: the processor may be blocked inside runStep, so simply returning
// from Stop would otherwise leak it.
func (l *Loop) forceStopProcessor() {
	l.cancelStep()
	l.stopOnce.Do(func() { close(l.forceStop) })
	l.markStopped()
}

// processor is the single goroutine that owns the planner/executor and
// drains cmdCh until Stop, at which point it sends exactly one Stopped
// response before exiting — never an abort. It also watches forceStop so
// a stop-ack timeout can unblock it even mid-step.
func (l *Loop) processor() {
	var history []Action
	defer l.markStopped()

	for {
		select {
		case cmd, ok := <-l.cmdCh:
			if !ok {
				return
			}
			switch cmd.kind {
			case cmdStep:
				resp := l.runStep(&history)
				select {
				case l.respCh <- resp:
				case <-l.forceStop:
					return
				}
			case cmdStop:
				select {
				case l.respCh <- response{kind: respStopped}:
				case <-l.forceStop:
				}
				return
			}
		case <-l.forceStop:
			return
		}
	}
}

func (l *Loop) runStep(history *[]Action) response {
	ctx := l.stepCtx

	obs, err := l.executor.Observe(ctx)
	if err != nil {
		return response{kind: respFailed, reason: fmt.Sprintf("observe failed: %v", err)}
	}

	action, err := l.planner.Plan(ctx, l.task, obs, *history)
	if err != nil {
		return response{kind: respFailed, obs: obs, reason: fmt.Sprintf("plan failed: %v", err)}
	}

	switch action.Kind {
	case ActionDone:
		*history = append(*history, action)
		return response{kind: respDone, obs: obs, result: action.Reason}
	case ActionFail:
		*history = append(*history, action)
		return response{kind: respFailed, obs: obs, reason: action.Reason}
	}

	if err := l.executor.Execute(ctx, action); err != nil {
		obs.LastActionError = err.Error()
	}
	*history = append(*history, action)

	return response{kind: respStepCompleted, obs: obs}
}
