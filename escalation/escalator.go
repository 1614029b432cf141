package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/pyama86/YASE/domain/repository"
	"github.com/pyama86/YASE/paths"
)

// Escalator drives one escalation cycle: it loads the rules grouped by
// level, asks the tracker for candidates, filters them against the history,
// dispatches to the configured paths and records the outcome.
type Escalator struct {
	repo   repository.Repository
	jira   repository.IssueRepository
	paths  paths.Registry
	sink   repository.EscalationLogger
	dryRun bool
}

func New(repo repository.Repository, jira repository.IssueRepository, registry paths.Registry, sink repository.EscalationLogger, dryRun bool) *Escalator {
	return &Escalator{
		repo:   repo,
		jira:   jira,
		paths:  registry,
		sink:   sink,
		dryRun: dryRun,
	}
}

// ProcessRules runs one cycle and returns how many issues had at least one
// successful escalation path. Levels are processed in ascending order so an
// escalation recorded at level N is visible to the level N+1 gate within the
// same cycle.
func (e *Escalator) ProcessRules(ctx context.Context) (int, error) {
	rules, err := e.repo.Rules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load rules: %w", err)
	}

	byLevel := map[int][]entity.Rule{}
	for _, rule := range rules {
		byLevel[rule.Level] = append(byLevel[rule.Level], rule)
	}
	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	filter := NewFilter(e.repo, e.repo.CooldownWindow(ctx))

	total := 0
	for _, level := range levels {
		for i := range byLevel[level] {
			rule := &byLevel[level][i]
			total += e.processRule(ctx, filter, rule)
		}
	}
	return total, nil
}

func (e *Escalator) processRule(ctx context.Context, filter *Filter, rule *entity.Rule) int {
	slog.Info("Processing rule",
		slog.String("rule", rule.DisplayName()), slog.Int("level", rule.Level))

	issues, err := e.jira.FindIssuesForRule(ctx, rule)
	if err != nil {
		// 1ルールの検索失敗で他のルールは止めない
		slog.Error("Failed to search issues",
			slog.String("rule", rule.DisplayName()), slog.Any("err", err))
		return 0
	}
	if len(issues) == 0 {
		slog.Info("No issues found matching rule", slog.String("rule", rule.DisplayName()))
		return 0
	}

	eligible := filter.EligibleIssues(ctx, rule, issues)
	if len(eligible) == 0 {
		slog.Info("No issues eligible for escalation", slog.String("rule", rule.DisplayName()))
		return 0
	}
	slog.Info("Found issues to escalate",
		slog.Int("count", len(eligible)), slog.String("rule", rule.DisplayName()))

	escalated := 0
	for _, issue := range eligible {
		if e.dryRun {
			slog.Info("Dry run: would escalate issue",
				slog.String("issue", issue.Key), slog.Int("level", rule.Level))
			continue
		}
		if e.escalateIssue(ctx, issue, rule) {
			escalated++
		}
	}
	return escalated
}

// escalateIssue dispatches one issue to every path of the rule and reports
// whether at least one path succeeded. A failing path never aborts its
// siblings.
func (e *Escalator) escalateIssue(ctx context.Context, issue entity.Issue, rule *entity.Rule) bool {
	anySuccessful := false

	for i := range rule.EscalationPaths {
		pathConfig := &rule.EscalationPaths[i]
		path, ok := e.paths.Get(pathConfig.Type)
		if !ok {
			slog.Warn("Escalation path is not configured, skipping",
				slog.String("type", string(pathConfig.Type)))
			continue
		}

		event := entity.NewEscalationEvent(issue, rule, pathConfig)
		if err := path.Escalate(ctx, event); err != nil {
			event.Successful = false
			event.ErrorMessage = fmt.Sprintf("error escalating %s via %s: %s", issue.Key, pathConfig.Type, err)
			slog.Error("Failed to escalate issue",
				slog.String("issue", issue.Key),
				slog.String("type", string(pathConfig.Type)),
				slog.Any("err", err))
		} else {
			event.Successful = true
			anySuccessful = true
			slog.Info("Successfully escalated issue",
				slog.String("issue", issue.Key),
				slog.String("type", string(pathConfig.Type)))
		}

		if e.sink != nil {
			if err := e.sink.LogEscalation(ctx, event); err != nil {
				slog.Warn("Failed to submit escalation event to log sink",
					slog.String("issue", issue.Key), slog.Any("err", err))
			}
		}
	}

	if anySuccessful {
		if err := e.repo.RecordEscalation(ctx, issue.Key, rule.Level); err != nil {
			slog.Error("Failed to record escalation history",
				slog.String("issue", issue.Key), slog.Any("err", err))
		}
	}
	return anySuccessful
}
