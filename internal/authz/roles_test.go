package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carecircle/carecircle-api/internal/models"
)

func TestParentsMayDoEverything(t *testing.T) {
	actions := []Action{
		ActionViewTasks, ActionManageTasks, ActionAckTask,
		ActionAttachProof, ActionEnforce, ActionHeartbeat,
	}
	for _, role := range []models.Role{models.RoleOwner, models.RoleFamily} {
		for _, a := range actions {
			assert.True(t, Allows(role, a), "%s should allow %s", role, a)
		}
	}
}

func TestChildrenAreLimited(t *testing.T) {
	for _, role := range []models.Role{models.RoleChild, models.RoleMinor} {
		assert.True(t, Allows(role, ActionViewTasks))
		assert.True(t, Allows(role, ActionAckTask))
		assert.True(t, Allows(role, ActionAttachProof))
		assert.True(t, Allows(role, ActionHeartbeat))
		assert.False(t, Allows(role, ActionManageTasks))
		assert.False(t, Allows(role, ActionEnforce))
	}
}
