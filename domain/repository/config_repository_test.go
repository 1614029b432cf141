package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yase.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewConfigRepository(t *testing.T) {
	path := writeConfig(t, `
cooldown_hours = 12
history_file = "history.json"

[[rules]]
name = "review too long"
jql = "project = X AND status = Review"
max_time_in_status_minutes = 60
level = 1

[[rules.escalation_paths]]
type = "slack_dm"
recipient = "U123456"

[[rules.escalation_paths]]
type = "jira_comment"
recipient = "bob"
message_template = "{issue_key} is stuck"
`)

	cfg, err := NewConfigRepository(path)
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.CooldownWindow(context.Background()))
	assert.Equal(t, "history.json", cfg.HistoryFilePath())

	rules, err := cfg.Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "review too long", rules[0].Name)
	assert.Equal(t, 1, rules[0].Level)
	require.Len(t, rules[0].EscalationPaths, 2)
	assert.Equal(t, entity.PathTypeSlackDM, rules[0].EscalationPaths[0].Type)
	assert.Equal(t, "{issue_key} is stuck", rules[0].EscalationPaths[1].MessageTemplate)
}

func TestNewConfigRepository_Defaults(t *testing.T) {
	path := writeConfig(t, `
[[rules]]
jql = "status = Review"
max_time_in_status_minutes = 60
level = 1

[[rules.escalation_paths]]
type = "jira_comment"
recipient = "bob"
`)

	cfg, err := NewConfigRepository(path)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.CooldownWindow(context.Background()))
	assert.Equal(t, "escalation_history.json", cfg.HistoryFilePath())
}

func TestNewConfigRepository_DisabledRulesAreSkipped(t *testing.T) {
	path := writeConfig(t, `
[[rules]]
name = "enabled"
jql = "status = Review"
max_time_in_status_minutes = 60
level = 1

[[rules.escalation_paths]]
type = "jira_comment"
recipient = "bob"

[[rules]]
name = "disabled"
jql = "status = QA"
max_time_in_status_minutes = 60
level = 1
disabled = true

[[rules.escalation_paths]]
type = "jira_comment"
recipient = "bob"
`)

	cfg, err := NewConfigRepository(path)
	require.NoError(t, err)

	rules, err := cfg.Rules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "enabled", rules[0].Name)
}

func TestNewConfigRepository_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "no rules",
			content: `cooldown_hours = 24`,
		},
		{
			name: "rule without paths",
			content: `
[[rules]]
jql = "status = Review"
max_time_in_status_minutes = 60
level = 1
`,
		},
		{
			name: "unknown path type",
			content: `
[[rules]]
jql = "status = Review"
max_time_in_status_minutes = 60
level = 1

[[rules.escalation_paths]]
type = "carrier_pigeon"
recipient = "bob"
`,
		},
		{
			name: "level zero",
			content: `
[[rules]]
jql = "status = Review"
max_time_in_status_minutes = 60
level = 0

[[rules.escalation_paths]]
type = "jira_comment"
recipient = "bob"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := NewConfigRepository(path)
			assert.Error(t, err)
		})
	}
}
