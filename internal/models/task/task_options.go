package task

import (
	"time"
)

// TaskOption is one field of a partial update. Constructors return nil when the
// value was not supplied, and callers skip nil options.
type TaskOption func(*Task)

func WithText(text *string) TaskOption {
	if text == nil {
		return nil
	}
	return func(task *Task) {
		task.Text = *text
	}
}

func WithDescription(description *string) TaskOption {
	if description == nil {
		return nil
	}
	return func(task *Task) {
		task.Description = *description
	}
}

// WithStatus also maintains the completed flag.
func WithStatus(status *Status) TaskOption {
	if status == nil || *status == "" {
		return nil
	}
	return func(task *Task) {
		task.SetStatus(*status)
	}
}

// WithCompleted is the legacy toggle; it is ignored when a status is sent alongside it.
func WithCompleted(completed *bool, status *Status) TaskOption {
	if completed == nil || status != nil {
		return nil
	}
	return func(task *Task) {
		if *completed {
			task.SetStatus(StatusDone)
		} else if task.Status == StatusDone {
			task.SetStatus(StatusTodo)
		}
	}
}

func WithPriority(priority *Priority) TaskOption {
	if priority == nil || *priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = *priority
	}
}

func WithColor(color *string) TaskOption {
	if color == nil {
		return nil
	}
	return func(task *Task) {
		task.Color = *color
	}
}

func WithScheduledDate(date *time.Time) TaskOption {
	if date == nil || date.IsZero() {
		return nil
	}
	return func(task *Task) {
		d := *date
		task.ScheduledDate = &d
	}
}

func WithStartDate(date *time.Time) TaskOption {
	if date == nil || date.IsZero() {
		return nil
	}
	return func(task *Task) {
		d := *date
		task.StartDate = &d
	}
}

func WithEndDate(date *time.Time) TaskOption {
	if date == nil || date.IsZero() {
		return nil
	}
	return func(task *Task) {
		d := *date
		task.EndDate = &d
	}
}

// WithWorkflow groups the task under a workflow header.
func WithWorkflow(id, name string) TaskOption {
	if id == "" {
		return nil
	}
	return func(task *Task) {
		task.WorkflowID = id
		task.WorkflowName = name
	}
}

// WithApproval clears the rejection reason unless the task is rejected.
func WithApproval(status ApprovalStatus, reason string) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.ApprovalStatus = status
		if status == ApprovalRejected {
			task.RejectionReason = reason
		} else {
			task.RejectionReason = ""
		}
	}
}

// Apply runs every non-nil option against t.
func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
