package project

import (
	"planboard/internal/models/task"
	"time"

	"github.com/google/uuid"
)

type Status string

const StatusActive Status = "active"
const StatusCompleted Status = "completed"
const StatusArchived Status = "archived"

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusArchived
}

type Project struct {
	UUID        uuid.UUID   `json:"id" db:"uuid"`
	UserID      string      `json:"user_id" db:"user_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description,omitempty" db:"description"`
	Status      Status      `json:"status" db:"status"`
	StartDate   *time.Time  `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time  `json:"end_date,omitempty" db:"end_date"`
	Tasks       []task.Task `json:"tasks"`
	Milestones  []Milestone `json:"milestones"`
	ShareToken  string      `json:"share_token,omitempty" db:"share_token"`
	IsPublic    bool        `json:"is_public" db:"is_public"`
	SharedAt    *time.Time  `json:"shared_at,omitempty" db:"shared_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

// Progress counts done tasks; Percent is rounded down.
func (p Project) Progress() (done, total, percent int) {
	total = len(p.Tasks)
	for _, t := range p.Tasks {
		if t.Status == task.StatusDone {
			done++
		}
	}
	if total > 0 {
		percent = done * 100 / total
	}
	return done, total, percent
}

type Milestone struct {
	UUID      uuid.UUID `json:"id" db:"uuid"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Title     string    `json:"title" db:"title"`
	Date      time.Time `json:"date" db:"date"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (m Milestone) ID() string { return m.UUID.String() }

// Comment is left on a shared project by an unauthenticated visitor.
type Comment struct {
	UUID       uuid.UUID `json:"id" db:"uuid"`
	ProjectID  uuid.UUID `json:"project_id" db:"project_id"`
	Content    string    `json:"content" db:"content"`
	AuthorName string    `json:"author_name" db:"author_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ProjectOption func(*Project)

func WithTitle(title *string) ProjectOption {
	if title == nil {
		return nil
	}
	return func(p *Project) {
		p.Title = *title
	}
}

func WithDescription(description *string) ProjectOption {
	if description == nil {
		return nil
	}
	return func(p *Project) {
		p.Description = *description
	}
}

func WithStatus(status *Status) ProjectOption {
	if status == nil || !status.Valid() {
		return nil
	}
	return func(p *Project) {
		p.Status = *status
	}
}

func WithDates(start, end *time.Time) ProjectOption {
	if start == nil && end == nil {
		return nil
	}
	return func(p *Project) {
		if start != nil {
			s := *start
			p.StartDate = &s
		}
		if end != nil {
			e := *end
			p.EndDate = &e
		}
	}
}

type MilestoneOption func(*Milestone)

func WithMilestoneTitle(title *string) MilestoneOption {
	if title == nil {
		return nil
	}
	return func(m *Milestone) {
		m.Title = *title
	}
}

func WithMilestoneDate(date *time.Time) MilestoneOption {
	if date == nil || date.IsZero() {
		return nil
	}
	return func(m *Milestone) {
		m.Date = *date
	}
}

func WithMilestoneCompleted(completed *bool) MilestoneOption {
	if completed == nil {
		return nil
	}
	return func(m *Milestone) {
		m.Completed = *completed
	}
}
