package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", Validation("op", "bad input", "a is required"), IsValidation},
		{"not found", NotFound("op", "missing"), IsNotFound},
		{"state conflict", StateConflict("op", "gate"), IsStateConflict},
		{"collaborator", Collaborator("op", "calendar", errors.New("boom")), IsCollaborator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NotFound("op", "missing")
	assert.False(t, IsValidation(err))
	assert.False(t, IsStateConflict(err))
	assert.False(t, IsCollaborator(err))
}

func TestValidationErrorKeepsAllDetails(t *testing.T) {
	err := Validation("tracker.SubmitStep1", "missing mandatory fields", "first name is required", "major is required")

	appErr, ok := As(fmt.Errorf("wrap: %w", err))
	require.True(t, ok)
	assert.Equal(t, []string{"first name is required", "major is required"}, appErr.Details)
	assert.Contains(t, err.Error(), "major is required")
}

func TestCollaboratorUnwrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Collaborator("tracker.ScheduleScreening", "calendar", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "calendar failed", err.Message)
}
