// Package events defines the change notifications pushed to websocket subscribers.
package events

type Type string

const (
	TaskCreated      Type = "task_created"
	TaskUpdated      Type = "task_updated"
	TaskDeleted      Type = "task_deleted"
	TaskOverdue      Type = "task_overdue"
	WorkflowDeleted  Type = "workflow_deleted"
	MilestoneCreated Type = "milestone_created"
	MilestoneUpdated Type = "milestone_updated"
	MilestoneDeleted Type = "milestone_deleted"
	ProjectUpdated   Type = "project_updated"
	ProjectDeleted   Type = "project_deleted"
	CommentCreated   Type = "comment_created"
)

type Event struct {
	Type      Type   `json:"event"`
	ProjectID string `json:"project_id,omitempty"`
	UserID    string `json:"-"`
	Payload   any    `json:"payload,omitempty"`
}

// Topic is the feed an event is delivered to: the project when it has one,
// otherwise the owner's personal feed.
func (e Event) Topic() string {
	if e.ProjectID != "" {
		return ProjectTopic(e.ProjectID)
	}
	return UserTopic(e.UserID)
}

func ProjectTopic(id string) string { return "project:" + id }
func UserTopic(id string) string    { return "user:" + id }

type Publisher interface {
	Publish(Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(Event) {}
