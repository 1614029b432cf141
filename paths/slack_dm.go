package paths

import (
	"context"
	"fmt"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/domain/repository"
	"github.com/pyama86/YASE/presentation"
)

type SlackDM struct {
	slack repository.SlackRepositoryer
}

func NewSlackDM(slack repository.SlackRepositoryer) *SlackDM {
	return &SlackDM{slack: slack}
}

func (p *SlackDM) Escalate(ctx context.Context, event *entity.EscalationEvent) error {
	userID, err := p.slack.ResolveUserID(event.Path.Recipient)
	if err != nil {
		return fmt.Errorf("failed to resolve slack recipient %s: %w", event.Path.Recipient, err)
	}
	return p.slack.PostDirectMessage(userID, presentation.RenderMessage(event))
}
