// Package authz is the role policy applied at the HTTP boundary. The task
// store itself never inspects roles.
package authz

import "github.com/carecircle/carecircle-api/internal/models"

// Action names a permission-gated operation on the API surface.
type Action string

const (
	ActionViewTasks   Action = "view_tasks"
	ActionManageTasks Action = "manage_tasks" // create, patch, hold, resume, cancel, delete
	ActionAckTask     Action = "ack_task"
	ActionAttachProof Action = "attach_proof"
	ActionEnforce     Action = "enforce"
	ActionHeartbeat   Action = "heartbeat"
)

// IsParent reports whether the role carries household-admin privileges.
func IsParent(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleFamily
}

// Allows is the single permission policy. Parents may do everything;
// children may read, acknowledge, attach proof, and report presence.
func Allows(role models.Role, action Action) bool {
	if IsParent(role) {
		return true
	}
	switch action {
	case ActionViewTasks, ActionAckTask, ActionAttachProof, ActionHeartbeat:
		return true
	default:
		return false
	}
}
