package task

import (
	"planboard/internal/dates"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID            uuid.UUID      `json:"id" db:"uuid"`
	UserID          string         `json:"user_id,omitempty" db:"user_id"`
	ProjectID       *uuid.UUID     `json:"project_id,omitempty" db:"project_id"`
	Text            string         `json:"text" db:"text"`
	Description     string         `json:"description,omitempty" db:"description"`
	Status          Status         `json:"status" db:"status"`
	Completed       bool           `json:"completed" db:"completed"`
	Priority        Priority       `json:"priority" db:"priority"`
	Color           string         `json:"color,omitempty" db:"color"`
	ScheduledDate   *time.Time     `json:"scheduled_date,omitempty" db:"scheduled_date"`
	StartDate       *time.Time     `json:"start_date,omitempty" db:"start_date"`
	EndDate         *time.Time     `json:"end_date,omitempty" db:"end_date"`
	WorkflowID      string         `json:"workflow_id,omitempty" db:"workflow_id"`
	WorkflowName    string         `json:"workflow_name,omitempty" db:"workflow_name"`
	ApprovalStatus  ApprovalStatus `json:"approval_status" db:"approval_status"`
	RejectionReason string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty" db:"updated_at"`
	Version         int            `json:"version" db:"version"`
}

type Status string
type Priority string
type ApprovalStatus string

const StatusTodo Status = "todo"
const StatusInProgress Status = "in-progress"
const StatusDone Status = "done"

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

const ApprovalNone ApprovalStatus = "none"
const ApprovalPending ApprovalStatus = "pending"
const ApprovalApproved ApprovalStatus = "approved"
const ApprovalRejected ApprovalStatus = "rejected"

// Statuses lists the kanban columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus accepts the project kanban spelling "in_progress" as well.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case StatusTodo:
		return StatusTodo, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusDone:
		return StatusDone, true
	}
	return "", false
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities: high > medium > low > unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (a ApprovalStatus) Valid() bool {
	switch a {
	case ApprovalNone, ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// SetStatus keeps the legacy completed flag in sync with the status.
func (t *Task) SetStatus(s Status) {
	t.Status = s
	t.Completed = s == StatusDone
}

// Normalize fills defaults and repairs legacy records that only carry the completed flag.
func (t *Task) Normalize() {
	if s, ok := ParseStatus(string(t.Status)); ok {
		t.Status = s
	} else if t.Completed {
		t.Status = StatusDone
	} else {
		t.Status = StatusTodo
	}
	t.Completed = t.Status == StatusDone
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if !t.ApprovalStatus.Valid() {
		t.ApprovalStatus = ApprovalNone
	}
	if t.ApprovalStatus != ApprovalRejected {
		t.RejectionReason = ""
	}
}

// Date is the date a task is filed under: scheduled date for daily tasks,
// start date for project tasks.
func (t Task) Date() *time.Time {
	if t.ScheduledDate != nil {
		return t.ScheduledDate
	}
	return t.StartDate
}

func (t Task) ID() string { return t.UUID.String() }

// Clone copies the pointer fields so the copy can be mutated independently.
func (t Task) Clone() Task {
	c := t
	c.ProjectID = clonePtr(t.ProjectID)
	c.ScheduledDate = clonePtr(t.ScheduledDate)
	c.StartDate = clonePtr(t.StartDate)
	c.EndDate = clonePtr(t.EndDate)
	c.UpdatedAt = clonePtr(t.UpdatedAt)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DueDate is the end date of a project task or the scheduled date of a daily task.
func (t Task) DueDate() *time.Time {
	if t.EndDate != nil {
		return t.EndDate
	}
	return t.ScheduledDate
}

// IsOverdue reports an unfinished task whose due day is before the day of now.
func (t Task) IsOverdue(now time.Time) bool {
	due := t.DueDate()
	if due == nil || t.Status == StatusDone {
		return false
	}
	return dates.Day(due.In(now.Location())).Before(dates.Day(now))
}
