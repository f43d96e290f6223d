package model

import "strings"

// TaskStatus classifies an aggregated task run.
type TaskStatus string

const (
	TaskSuccess        TaskStatus = "success"
	TaskPartialSuccess TaskStatus = "partial_success"
	TaskFailed         TaskStatus = "failed"
	TaskSkipped        TaskStatus = "skipped"
)

// LineSeparator joins per-account report lines in the aggregated message.
const LineSeparator = "\n----------------\n"

// TaskResult aggregates the outcome of running one task across accounts.
// Lines keep strict account order: account N's line always precedes N+1's.
type TaskResult struct {
	Name         string
	SuccessCount int
	FailureCount int
	Lines        []string
}

// AddSuccess appends a report line and counts the account as succeeded.
func (r *TaskResult) AddSuccess(line string) {
	r.SuccessCount++
	r.Lines = append(r.Lines, line)
}

// AddFailure appends a report line and counts the account as failed.
func (r *TaskResult) AddFailure(line string) {
	r.FailureCount++
	r.Lines = append(r.Lines, line)
}

// Status derives the overall status purely from the counters.
func (r *TaskResult) Status() TaskStatus {
	switch {
	case r.SuccessCount > 0 && r.FailureCount == 0:
		return TaskSuccess
	case r.SuccessCount > 0 && r.FailureCount > 0:
		return TaskPartialSuccess
	case r.FailureCount > 0:
		return TaskFailed
	default:
		return TaskSkipped
	}
}

// Message concatenates the ordered per-account lines.
func (r *TaskResult) Message() string {
	return strings.Join(r.Lines, LineSeparator)
}
