package paths

import (
	"context"
	"fmt"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/domain/repository"
	"github.com/pyama86/YASE/presentation"
)

// JiraComment escalates by commenting on the issue itself, mentioning the
// recipient when one is configured.
type JiraComment struct {
	jira repository.IssueRepository
}

func NewJiraComment(jira repository.IssueRepository) *JiraComment {
	return &JiraComment{jira: jira}
}

func (p *JiraComment) Escalate(ctx context.Context, event *entity.EscalationEvent) error {
	message := presentation.RenderMessage(event)
	if event.Path.Recipient != "" {
		message = fmt.Sprintf("[~%s] %s", event.Path.Recipient, message)
	}
	return p.jira.AddComment(ctx, event.IssueKey, message)
}
