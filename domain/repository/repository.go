package repository

import (
	"context"
	"time"

	"github.com/pyama86/YASE/domain/entity"
)

type RuleRepository interface {
	Rules(context.Context) ([]entity.Rule, error)
	CooldownWindow(context.Context) time.Duration
}

type EscalationHistoryRepository interface {
	WasRecentlyEscalated(ctx context.Context, issueKey string, level int, window time.Duration) (bool, error)
	RecordEscalation(ctx context.Context, issueKey string, level int) error
	FirstEscalatedAt(ctx context.Context, issueKey string) (*time.Time, error)
	DaysSinceFirstEscalation(ctx context.Context, issueKey string) (*int, error)
	DeleteIssue(ctx context.Context, issueKey string) error
	Clear(ctx context.Context) error
}

type IssueRepository interface {
	FindIssuesForRule(ctx context.Context, rule *entity.Rule) ([]entity.Issue, error)
	AddComment(ctx context.Context, issueKey, body string) error
}

type Repository interface {
	RuleRepository
	EscalationHistoryRepository
}

type RepositoryFacade struct {
	RuleRepository
	EscalationHistoryRepository
}

type EscalationLogger interface {
	LogEscalation(ctx context.Context, event *entity.EscalationEvent) error
}

func NewRepository(ruleRepository RuleRepository, historyRepository EscalationHistoryRepository) Repository {
	return RepositoryFacade{
		RuleRepository:              ruleRepository,
		EscalationHistoryRepository: historyRepository,
	}
}
