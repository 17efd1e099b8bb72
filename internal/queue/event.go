// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the audit
// log.
package queue

// TaskAuditEvent is published on every task mutation. It carries
// enough information for downstream consumers to build an audit trail
// without querying the primary database. ActorID differs from OwnerID
// when an admin mutates somebody else's task.
type TaskAuditEvent struct {
	Action     string `json:"action"` // created | updated | deleted
	TaskID     string `json:"task_id"`
	OwnerID    string `json:"owner_id"`
	ActorID    string `json:"actor_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	OccurredAt string `json:"occurred_at"`
}
