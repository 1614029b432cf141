package presentation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pyama86/YASE/domain/entity"
	blackfriday "github.com/russross/blackfriday/v2"
)

const defaultTemplate = `Issue {issue_key}: {issue_summary}
Status: {status}
Time in status: {time_in_status_minutes} minutes
Max time allowed: {max_time_in_status_minutes} minutes`

// RenderMessage fills the path's message template, or the default one, with
// the event's values. Placeholders use the {issue_key} form.
func RenderMessage(event *entity.EscalationEvent) string {
	template := event.Path.MessageTemplate
	if template == "" {
		template = defaultTemplate
	}

	assignee := event.IssueAssignee
	if assignee == "" {
		assignee = "Unassigned"
	}

	replacer := strings.NewReplacer(
		"{issue_key}", event.IssueKey,
		"{issue_summary}", event.IssueSummary,
		"{issue_assignee}", assignee,
		"{status}", event.Status,
		"{time_in_status_minutes}", fmt.Sprintf("%.1f", event.TimeInStatusMinutes),
		"{max_time_in_status_minutes}", strconv.Itoa(event.Rule.MaxTimeInStatusMinutes),
	)
	return replacer.Replace(template)
}

// RenderHTMLMessage renders the message as sanitized HTML for the email
// body. The template may contain markdown.
func RenderHTMLMessage(event *entity.EscalationEvent) string {
	html := blackfriday.Run([]byte(RenderMessage(event)))
	return string(bluemonday.UGCPolicy().SanitizeBytes(html))
}
