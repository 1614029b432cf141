package paths

import (
	"context"
	"fmt"
	"time"

	pagerduty "github.com/PagerDuty/go-pagerduty"
	"github.com/Songmu/retry"
	"github.com/pyama86/YASE/domain/entity"
)

// PagerDuty escalates by triggering an Events API v2 alert. The dedup key is
// derived from the issue key so repeated triggers update the same alert.
type PagerDuty struct {
	routingKey string
}

func NewPagerDuty(routingKey string) *PagerDuty {
	return &PagerDuty{routingKey: routingKey}
}

func (p *PagerDuty) Escalate(ctx context.Context, event *entity.EscalationEvent) error {
	details := event.Record()
	v2Event := pagerduty.V2Event{
		RoutingKey: p.routingKey,
		Action:     "trigger",
		DedupKey:   fmt.Sprintf("escalate-%s", event.IssueKey),
		Client:     "yase",
		Payload: &pagerduty.V2Payload{
			Summary:   fmt.Sprintf("Escalation for %s: %s", event.IssueKey, event.IssueSummary),
			Source:    "yase",
			Severity:  "warning",
			Component: "jira",
			Group:     "issue-escalation",
			Class:     "issue",
			Details:   details,
		},
	}

	return retry.Retry(3, 3*time.Second, func() error {
		_, err := pagerduty.ManageEventWithContext(ctx, v2Event)
		return err
	})
}
