package entity

type PathType string

const (
	PathTypeJiraComment PathType = "jira_comment"
	PathTypeSlackDM     PathType = "slack_dm"
	PathTypePagerDuty   PathType = "pagerduty"
	PathTypeEmail       PathType = "email"
)

type EscalationPathConfig struct {
	Type            PathType `mapstructure:"type" validate:"required,oneof=jira_comment slack_dm pagerduty email"`
	Recipient       string   `mapstructure:"recipient" validate:"required"`
	MessageTemplate string   `mapstructure:"message_template"`
}

type Rule struct {
	Name                   string                 `mapstructure:"name"`
	Description            string                 `mapstructure:"description"`
	JQL                    string                 `mapstructure:"jql" validate:"required"`
	MaxTimeInStatusMinutes int                    `mapstructure:"max_time_in_status_minutes" validate:"required,gte=1"`
	Level                  int                    `mapstructure:"level" validate:"required,gte=1"`
	DaysToActivate         int                    `mapstructure:"days_to_activate" validate:"gte=0"`
	Disabled               bool                   `mapstructure:"disabled"`
	EscalationPaths        []EscalationPathConfig `mapstructure:"escalation_paths" validate:"required,min=1,dive"`
}

func (r *Rule) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.JQL
}
