package escalation

import (
	"context"
	"log/slog"
	"time"

	"github.com/pyama86/YASE/domain/entity"
)

// everWindow は「過去に一度でもエスカレーションされたか」を表す窓
const everWindow = 365 * 24 * time.Hour

// HistoryReader is the read-only view of the escalation history the filter
// is allowed to consult.
type HistoryReader interface {
	WasRecentlyEscalated(ctx context.Context, issueKey string, level int, window time.Duration) (bool, error)
	DaysSinceFirstEscalation(ctx context.Context, issueKey string) (*int, error)
}

// Filter decides which candidate issues may be escalated right now. The
// candidates are already past the rule's time-in-status threshold, so only
// the history gates are applied here: cooldown at the rule's level, strict
// level progression, and the rule's activation delay.
type Filter struct {
	history  HistoryReader
	cooldown time.Duration
}

func NewFilter(history HistoryReader, cooldown time.Duration) *Filter {
	return &Filter{
		history:  history,
		cooldown: cooldown,
	}
}

// EligibleIssues returns the subset of issues that pass every gate, in input
// order. A history read failure excludes the issue rather than risking a
// duplicate escalation.
func (f *Filter) EligibleIssues(ctx context.Context, rule *entity.Rule, issues []entity.Issue) []entity.Issue {
	eligible := make([]entity.Issue, 0, len(issues))
	for _, issue := range issues {
		if f.eligible(ctx, rule, issue) {
			eligible = append(eligible, issue)
		}
	}
	return eligible
}

func (f *Filter) eligible(ctx context.Context, rule *entity.Rule, issue entity.Issue) bool {
	recent, err := f.history.WasRecentlyEscalated(ctx, issue.Key, rule.Level, f.cooldown)
	if err != nil {
		slog.Warn("Failed to check escalation history",
			slog.String("issue", issue.Key), slog.Any("err", err))
		return false
	}
	if recent {
		slog.Debug("Issue is in cooldown",
			slog.String("issue", issue.Key), slog.Int("level", rule.Level))
		return false
	}

	// レベルを飛ばしてエスカレーションさせない
	for level := 1; level < rule.Level; level++ {
		ever, err := f.history.WasRecentlyEscalated(ctx, issue.Key, level, everWindow)
		if err != nil {
			slog.Warn("Failed to check escalation history",
				slog.String("issue", issue.Key), slog.Any("err", err))
			return false
		}
		if !ever {
			slog.Debug("Issue has not passed through a prior level",
				slog.String("issue", issue.Key), slog.Int("missing_level", level))
			return false
		}
	}

	if rule.DaysToActivate > 0 {
		days, err := f.history.DaysSinceFirstEscalation(ctx, issue.Key)
		if err != nil {
			slog.Warn("Failed to check first escalation",
				slog.String("issue", issue.Key), slog.Any("err", err))
			return false
		}
		// 一度もエスカレーションされていないチケットは遅延を満たせない
		if days == nil || *days < rule.DaysToActivate {
			slog.Debug("Issue has not met the activation delay",
				slog.String("issue", issue.Key), slog.Int("days_to_activate", rule.DaysToActivate))
			return false
		}
	}

	return true
}
