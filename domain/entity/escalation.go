package entity

import "time"

// EscalationEvent is built per issue and escalation path at dispatch time.
// The outcome fields are filled in after the transport attempt.
type EscalationEvent struct {
	IssueKey            string
	IssueSummary        string
	IssueAssignee       string
	Status              string
	TimeInStatusMinutes float64
	Rule                *Rule
	Path                *EscalationPathConfig
	Level               int
	CreatedAt           time.Time
	Successful          bool
	ErrorMessage        string
}

func NewEscalationEvent(issue Issue, rule *Rule, path *EscalationPathConfig) *EscalationEvent {
	return &EscalationEvent{
		IssueKey:            issue.Key,
		IssueSummary:        issue.Summary,
		IssueAssignee:       issue.Assignee,
		Status:              issue.Status,
		TimeInStatusMinutes: issue.TimeInStatusMinutes,
		Rule:                rule,
		Path:                path,
		Level:               rule.Level,
		CreatedAt:           time.Now(),
	}
}

// Record はログ基盤に送るためのフラットな形式に変換する
func (e *EscalationEvent) Record() map[string]any {
	return map[string]any{
		"issue_key":                  e.IssueKey,
		"issue_summary":              e.IssueSummary,
		"issue_assignee":             e.IssueAssignee,
		"status":                     e.Status,
		"time_in_status_minutes":     e.TimeInStatusMinutes,
		"rule_name":                  e.Rule.Name,
		"rule_jql":                   e.Rule.JQL,
		"max_time_in_status_minutes": e.Rule.MaxTimeInStatusMinutes,
		"level":                      e.Level,
		"escalation_path_type":       string(e.Path.Type),
		"escalation_path_recipient":  e.Path.Recipient,
		"successful":                 e.Successful,
		"error_message":              e.ErrorMessage,
	}
}
