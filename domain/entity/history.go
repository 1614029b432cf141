package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// historyKeySeparator はチケットキーに使えない文字を使う
const historyKeySeparator = ":"

// EscalationRecord is one history entry: the most recent escalation of an
// issue at a level. The ID is "<issueKey>:<level>" and is unique, recording
// again overwrites the timestamp.
type EscalationRecord struct {
	ID          string    `json:"id" dynamo:"id,hash"`
	IssueKey    string    `json:"issue_key" dynamo:"issue_key"`
	Level       int       `json:"level" dynamo:"level"`
	EscalatedAt time.Time `json:"escalated_at" dynamo:"escalated_at"`
}

func HistoryKey(issueKey string, level int) string {
	return issueKey + historyKeySeparator + strconv.Itoa(level)
}

func ParseHistoryKey(key string) (string, int, error) {
	i := strings.LastIndex(key, historyKeySeparator)
	if i < 1 {
		return "", 0, fmt.Errorf("invalid history key: %s", key)
	}
	level, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid history key level: %s", key)
	}
	return key[:i], level, nil
}
