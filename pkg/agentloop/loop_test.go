package agentloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	observeCalls int
	executed     []Action
}

func (f *fakeExecutor) Observe(ctx context.Context) (Observation, error) {
	f.observeCalls++
	return Observation{URL: "https://example.com", Title: "Example"}, nil
}

func (f *fakeExecutor) Execute(ctx context.Context, action Action) error {
	f.executed = append(f.executed, action)
	return nil
}

type blockingExecutor struct {
	unblock chan struct{}
}

func (f *blockingExecutor) Observe(ctx context.Context) (Observation, error) {
	select {
	case <-f.unblock:
		return Observation{}, nil
	case <-ctx.Done():
		return Observation{}, ctx.Err()
	}
}

func (f *blockingExecutor) Execute(ctx context.Context, action Action) error {
	return nil
}

type scriptedPlanner struct {
	actions []Action
	calls   int
}

func (p *scriptedPlanner) Plan(ctx context.Context, task string, obs Observation, history []Action) (Action, error) {
	if p.calls >= len(p.actions) {
		return Action{Kind: ActionDone, Reason: "ran out of script"}, nil
	}
	a := p.actions[p.calls]
	p.calls++
	return a, nil
}

func TestLoopRunsStepsUntilDone(t *testing.T) {
	planner := &scriptedPlanner{actions: []Action{
		{Kind: ActionNavigate, URL: "https://example.com"},
		{Kind: ActionClick, Selector: "#next"},
		{Kind: ActionDone, Reason: "task complete"},
	}}
	executor := &fakeExecutor{}

	loop := New("find the pricing page", 10, planner, executor)

	history, result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "task complete", result)
	assert.Len(t, history, 3)
	assert.False(t, loop.IsRunning())
	assert.Len(t, executor.executed, 2)
}

func TestLoopStopsAtMaxSteps(t *testing.T) {
	planner := &scriptedPlanner{actions: []Action{
		{Kind: ActionClick, Selector: "#a"},
		{Kind: ActionClick, Selector: "#b"},
		{Kind: ActionClick, Selector: "#c"},
	}}
	executor := &fakeExecutor{}

	loop := New("click forever", 2, planner, executor)

	history, result, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", result)
	assert.Len(t, history, 2)
}

func TestLoopReportsFailure(t *testing.T) {
	planner := &scriptedPlanner{actions: []Action{
		{Kind: ActionFail, Reason: "selector never appeared"},
	}}
	executor := &fakeExecutor{}

	loop := New("impossible task", 5, planner, executor)

	_, _, err := loop.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepFailed)
}

func TestLoopStopTimeoutCancelsInFlightStep(t *testing.T) {
	executor := &blockingExecutor{unblock: make(chan struct{})}
	planner := &scriptedPlanner{}

	loop := New("task that never observes", 10, planner, executor)

	go func() {
		_, _, _, _, _ = loop.Step(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)

	err := loop.Stop()
	require.ErrorIs(t, err, ErrStopTimeout)
	assert.False(t, loop.IsRunning())

	select {
	case <-loop.forceStop:
	default:
		t.Fatal("forceStop should be closed after a stop timeout")
	}
}

func TestLoopStopHandshakeAcknowledgesBeforeExit(t *testing.T) {
	planner := &scriptedPlanner{actions: []Action{
		{Kind: ActionClick, Selector: "#a"},
	}}
	executor := &fakeExecutor{}

	loop := New("long running task", 1000, planner, executor)

	_, _, _, _, err := loop.Step(context.Background())
	require.NoError(t, err)

	err = loop.Stop()
	require.NoError(t, err)
	assert.False(t, loop.IsRunning())

	select {
	case <-loop.cmdCh:
		t.Fatal("command channel should have no pending sends after stop")
	case <-time.After(10 * time.Millisecond):
	}
}
