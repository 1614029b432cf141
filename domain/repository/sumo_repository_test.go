package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pyama86/YASE/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSumoRepository_Unconfigured(t *testing.T) {
	t.Setenv("SUMO_ENDPOINT_URL", "")
	assert.Nil(t, NewSumoRepository())
}

func TestSumoRepository_LogEscalation(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := &SumoRepository{endpoint: server.URL, client: &http.Client{Timeout: 5 * time.Second}}

	rule := &entity.Rule{Name: "stuck", JQL: "status = Review", MaxTimeInStatusMinutes: 60, Level: 1}
	pathConfig := &entity.EscalationPathConfig{Type: entity.PathTypeSlackDM, Recipient: "U123"}
	event := entity.NewEscalationEvent(entity.Issue{Key: "X-1", Summary: "stuck", Status: "Review"}, rule, pathConfig)
	event.Successful = true

	require.NoError(t, r.LogEscalation(context.Background(), event))
	assert.Equal(t, "X-1", received["issue_key"])
	assert.Equal(t, "slack_dm", received["escalation_path_type"])
	assert.Equal(t, true, received["successful"])
	assert.NotZero(t, received["timestamp"])
}
