package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Songmu/retry"
	"github.com/pyama86/YASE/domain/entity"
)

// SumoRepository sends escalation events to a Sumo Logic HTTP source.
type SumoRepository struct {
	endpoint string
	client   *http.Client
}

func NewSumoRepository() *SumoRepository {
	if os.Getenv("SUMO_ENDPOINT_URL") == "" {
		return nil
	}
	return &SumoRepository{
		endpoint: os.Getenv("SUMO_ENDPOINT_URL"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *SumoRepository) LogEscalation(ctx context.Context, event *entity.EscalationEvent) error {
	record := event.Record()
	record["timestamp"] = event.CreatedAt.Unix()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal escalation event: %w", err)
	}

	return retry.Retry(3, 3*time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("sumo logic returned %d: %s", resp.StatusCode, string(body))
		}
		return nil
	})
}
