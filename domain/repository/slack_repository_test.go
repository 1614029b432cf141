package repository

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slacktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleUsersList(c slacktest.Customize) {
	c.Handle("/users.list", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := struct {
			OK      bool `json:"ok"`
			Members []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Profile struct {
					DisplayName string `json:"display_name"`
					RealName    string `json:"real_name"`
				} `json:"profile"`
			} `json:"members"`
		}{
			OK: true,
			Members: []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Profile struct {
					DisplayName string `json:"display_name"`
					RealName    string `json:"real_name"`
				} `json:"profile"`
			}{
				{ID: "UALICE", Name: "alice"},
				{ID: "UBOB", Name: "bob"},
			},
		}
		resp.Members[0].Profile.DisplayName = "Alice A"
		resp.Members[0].Profile.RealName = "Alice Anderson"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestSlackRepository_ResolveUserID(t *testing.T) {
	srv := slacktest.NewTestServer(func(c slacktest.Customize) {
		c.Handle("/auth.test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"user_id":"UBOT"}`))
		}))
		handleUsersList(c)
		c.Handle("/users.lookupByEmail", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"user":{"id":"UCAROL","name":"carol"}}`))
		}))
	})
	go srv.Start()
	defer srv.Stop()

	api := slack.New("dummy", slack.OptionAPIURL(srv.GetAPIURL()))
	slackRepo := NewSlackRepository(api)

	tests := []struct {
		name      string
		recipient string
		want      string
	}{
		{name: "by user ID", recipient: "UALICE", want: "UALICE"},
		{name: "by name", recipient: "alice", want: "UALICE"},
		{name: "by display name", recipient: "Alice A", want: "UALICE"},
		{name: "by email", recipient: "carol@example.com", want: "UCAROL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := slackRepo.ResolveUserID(tt.recipient)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}

	_, err := slackRepo.ResolveUserID("nobody")
	assert.ErrorIs(t, err, ErrSlackNotFound)
}

func TestSlackRepository_PostDirectMessage(t *testing.T) {
	var postMsg []map[string]string
	srv := slacktest.NewTestServer(func(c slacktest.Customize) {
		c.Handle("/auth.test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"user_id":"UBOT"}`))
		}))
		handleUsersList(c)
		c.Handle("/conversations.open", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true,"channel":{"id":"DALICE"}}`))
		}))
		c.Handle("/chat.postMessage", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			postMsg = append(postMsg, map[string]string{
				"channel": r.FormValue("channel"),
				"text":    r.FormValue("text"),
			})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
	})
	go srv.Start()
	defer srv.Stop()

	api := slack.New("dummy", slack.OptionAPIURL(srv.GetAPIURL()))
	slackRepo := NewSlackRepository(api)

	require.NoError(t, slackRepo.PostDirectMessage("UALICE", "Issue X-1: stuck in Review"))
	require.Len(t, postMsg, 1)
	assert.Equal(t, "DALICE", postMsg[0]["channel"])
	assert.Equal(t, "Issue X-1: stuck in Review", postMsg[0]["text"])
}
