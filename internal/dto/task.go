// Package dto shapes API responses. Tasks go over the wire with their
// derived state attached so clients never re-implement the state rules.
package dto

import (
	"time"

	"github.com/carecircle/carecircle-api/internal/lifecycle"
	"github.com/carecircle/carecircle-api/internal/models"
)

// TaskResponse is a task snapshot plus the state derived at response time.
type TaskResponse struct {
	models.Task
	State lifecycle.State `json:"state"`
}

func ToTaskResponse(t models.Task, now time.Time) TaskResponse {
	return TaskResponse{Task: t, State: lifecycle.Derive(t, now)}
}

func ToTaskResponses(tasks []models.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t, now)
	}
	return out
}
