package execution

import "time"

// CommentKind classifies an audit comment by the action that produced it
type CommentKind string

const (
	CommentPass        CommentKind = "pass"
	CommentBack        CommentKind = "back"
	CommentPending     CommentKind = "pending"
	CommentTransfer    CommentKind = "transfer"
	CommentTermination CommentKind = "termination"
	CommentSign        CommentKind = "sign"
	CommentSignOff     CommentKind = "signOff"
)

// Comment is an audit entry attached to a task
type Comment struct {
	ID                string      `json:"id"`
	TaskID            string      `json:"taskId"`
	ProcessInstanceID string      `json:"processInstanceId"`
	Kind              CommentKind `json:"kind"`
	Message           string      `json:"message"`
	UserID            string      `json:"userId,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}
