// Package agentloop runs a bounded, LLM-driven action loop against a
// browser page: each step captures a page observation, asks a Planner
// for a single structured action, executes it, and continues until the
// planner signals completion or failure, the step budget is exhausted,
// or the caller requests a stop.
package agentloop

import "context"

// ActionKind names the single action a Planner may choose per step.
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionClick    ActionKind = "click"
	ActionType     ActionKind = "type"
	ActionExtract  ActionKind = "extract"
	ActionDone     ActionKind = "done"
	ActionFail     ActionKind = "fail"
)

// Action is one planner decision: which operation to run and its
// arguments. Only the fields relevant to Kind are populated.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Selector string     `json:"selector,omitempty"`
	Text     string     `json:"text,omitempty"`
	URL      string     `json:"url,omitempty"`
	Reason   string     `json:"reason,omitempty"`
}

// Element is one interactable element surfaced to the planner.
type Element struct {
	Selector string `json:"selector"`
	Tag      string `json:"tag"`
	Text     string `json:"text,omitempty"`
}

// Observation is the concise page description handed to the planner at
// the start of each step.
type Observation struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	TextSnippet string    `json:"text_snippet"`
	Elements    []Element `json:"elements,omitempty"`

	// LastActionError carries a transient navigation/execution error from
	// the previous step forward as context, rather than failing the loop
	// outright on recoverable errors.
	LastActionError string `json:"last_action_error,omitempty"`
}

// Planner decides the next Action given the task, the current
// observation, and the action history so far.
type Planner interface {
	Plan(ctx context.Context, task string, obs Observation, history []Action) (Action, error)
}

// Executor performs an Action against the live page and returns the
// resulting observation for the next step.
type Executor interface {
	Observe(ctx context.Context) (Observation, error)
	Execute(ctx context.Context, action Action) error
}

type command struct {
	kind commandKind
}

type commandKind int

const (
	cmdStep commandKind = iota
	cmdStop
)

type response struct {
	kind   responseKind
	obs    Observation
	result string
	reason string
}

type responseKind int

const (
	respStepCompleted responseKind = iota
	respDone
	respFailed
	respStopped
)
