package paths_test

import (
	"context"
	"testing"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/domain/repository"
	"github.com/pyama86/YASE/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlackRepo struct {
	users    map[string]string
	userID   string
	messages []string
}

func (m *mockSlackRepo) ResolveUserID(recipient string) (string, error) {
	if id, ok := m.users[recipient]; ok {
		return id, nil
	}
	return "", repository.ErrSlackNotFound
}

func (m *mockSlackRepo) PostDirectMessage(userID, text string) error {
	m.userID = userID
	m.messages = append(m.messages, text)
	return nil
}

func TestSlackDM_Escalate(t *testing.T) {
	slack := &mockSlackRepo{users: map[string]string{"bob@example.com": "U999"}}
	path := paths.NewSlackDM(slack)

	rule := &entity.Rule{JQL: "status = Review", MaxTimeInStatusMinutes: 60, Level: 1}
	pathConfig := &entity.EscalationPathConfig{Type: entity.PathTypeSlackDM, Recipient: "bob@example.com"}
	event := entity.NewEscalationEvent(entity.Issue{Key: "X-1", Summary: "stuck", Status: "Review"}, rule, pathConfig)

	require.NoError(t, path.Escalate(context.Background(), event))
	assert.Equal(t, "U999", slack.userID)
	require.Len(t, slack.messages, 1)
	assert.Contains(t, slack.messages[0], "Issue X-1: stuck")
}

func TestSlackDM_UnknownRecipient(t *testing.T) {
	slack := &mockSlackRepo{}
	path := paths.NewSlackDM(slack)

	rule := &entity.Rule{JQL: "status = Review", MaxTimeInStatusMinutes: 60, Level: 1}
	pathConfig := &entity.EscalationPathConfig{Type: entity.PathTypeSlackDM, Recipient: "nobody"}
	event := entity.NewEscalationEvent(entity.Issue{Key: "X-1"}, rule, pathConfig)

	assert.Error(t, path.Escalate(context.Background(), event))
}
