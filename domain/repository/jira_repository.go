package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/pyama86/YASE/domain/entity"
)

type JiraRepositorier interface {
	FindIssuesForRule(ctx context.Context, rule *entity.Rule) ([]entity.Issue, error)
	AddComment(ctx context.Context, issueKey, body string) error
}

type JiraRepository struct {
	client *jira.Client
	now    func() time.Time
}

func NewJiraRepository(baseURL, username, apiToken string) (*JiraRepository, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}
	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}
	return &JiraRepository{client: client, now: time.Now}, nil
}

// FindIssuesForRule はルールのJQLに一致し、現在のステータスに
// 閾値より長く滞留しているチケットを返す
func (r *JiraRepository) FindIssuesForRule(ctx context.Context, rule *entity.Rule) ([]entity.Issue, error) {
	jiraIssues, _, err := r.client.Issue.SearchWithContext(ctx, rule.JQL, &jira.SearchOptions{
		Expand:     "changelog",
		MaxResults: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search issues for %q: %w", rule.JQL, err)
	}

	issues := make([]entity.Issue, 0, len(jiraIssues))
	for _, issue := range jiraIssues {
		if issue.Fields == nil || issue.Fields.Status == nil {
			continue
		}
		status := issue.Fields.Status.Name
		minutes := r.now().Sub(r.statusSince(&issue, status)).Minutes()
		if minutes <= float64(rule.MaxTimeInStatusMinutes) {
			continue
		}

		assignee := ""
		if issue.Fields.Assignee != nil {
			assignee = issue.Fields.Assignee.DisplayName
		}
		issues = append(issues, entity.Issue{
			Key:                 issue.Key,
			Summary:             issue.Fields.Summary,
			Assignee:            assignee,
			Status:              status,
			TimeInStatusMinutes: minutes,
		})
	}
	return issues, nil
}

// statusSince returns when the issue last transitioned into its current
// status. Without such a transition the creation date is used.
func (r *JiraRepository) statusSince(issue *jira.Issue, status string) time.Time {
	since := time.Time(issue.Fields.Created)

	if issue.Changelog == nil {
		return since
	}
	var latest time.Time
	for _, history := range issue.Changelog.Histories {
		created, err := history.CreatedTime()
		if err != nil {
			slog.Warn("Failed to parse changelog timestamp",
				slog.String("issue", issue.Key), slog.Any("err", err))
			continue
		}
		for _, item := range history.Items {
			if item.Field != "status" || item.ToString != status {
				continue
			}
			if created.After(latest) {
				latest = created
			}
		}
	}
	if !latest.IsZero() {
		return latest
	}
	return since
}

func (r *JiraRepository) AddComment(ctx context.Context, issueKey, body string) error {
	_, _, err := r.client.Issue.AddCommentWithContext(ctx, issueKey, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to add comment to %s: %w", issueKey, err)
	}
	return nil
}
