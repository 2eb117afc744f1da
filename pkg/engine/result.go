// Package engine implements the scenario/step execution and dispatch engine:
// the step registry and matching, placeholder substitution, background and
// outline control flow, short-circuit propagation, and the reduction of
// assertion outcomes into step verdicts.
package engine

// Status is the verdict of one step. The four strings are the wire contract
// downstream reporters key off of.
type Status string

const (
	StatusPassing   Status = "passing"
	StatusFailing   Status = "failing"
	StatusPending   Status = "pending"
	StatusUndefined Status = "undefined"
)

// Result is the outcome of dispatching one step. Immutable once constructed.
type Result struct {
	Status Status `json:"status"`
	Output string `json:"output"`
}
