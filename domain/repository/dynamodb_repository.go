package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
	"github.com/pyama86/YASE/domain/entity"
)

var escalationsTable = "escalation_history"

func init() {
	if os.Getenv("DYNAMO_ESCALATIONS_TABLE") != "" {
		escalationsTable = os.Getenv("DYNAMO_ESCALATIONS_TABLE")
	}
}

// NewDynamoDBRepository is the escalation history backend for deployments
// where several runners share one history.
func NewDynamoDBRepository() (*DynamoDBRepository, error) {
	var db *dynamo.DB
	if os.Getenv("DYNAMO_LOCAL") != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("dummy"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}
		db = dynamo.New(cfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String("http://localhost:8000")
		},
		)

		err = setupDdbSchema(db)
		if err != nil {
			return nil, fmt.Errorf("failed to setup schema: %v", err)
		}
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}
		db = dynamo.New(cfg)
	}

	return &DynamoDBRepository{db: db, now: time.Now}, nil
}

func setupDdbSchema(db *dynamo.DB) error {
	t := db.Table(escalationsTable)
	_, err := t.Describe().Run(context.TODO())
	if err != nil {

		input := db.CreateTable(escalationsTable, entity.EscalationRecord{}).
			Provision(10, 10)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return input.Run(ctx)
	}
	return nil
}

type DynamoDBRepository struct {
	db  *dynamo.DB
	now func() time.Time
}

func (r *DynamoDBRepository) WasRecentlyEscalated(ctx context.Context, issueKey string, level int, window time.Duration) (bool, error) {
	record := &entity.EscalationRecord{}
	err := r.db.Table(escalationsTable).Get("id", entity.HistoryKey(issueKey, level)).One(ctx, record)
	if err != nil {
		if err == dynamo.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return r.now().Sub(record.EscalatedAt) < window, nil
}

func (r *DynamoDBRepository) RecordEscalation(ctx context.Context, issueKey string, level int) error {
	record := entity.EscalationRecord{
		ID:          entity.HistoryKey(issueKey, level),
		IssueKey:    issueKey,
		Level:       level,
		EscalatedAt: r.now(),
	}
	return r.db.Table(escalationsTable).Put(record).Run(ctx)
}

func (r *DynamoDBRepository) FirstEscalatedAt(ctx context.Context, issueKey string) (*time.Time, error) {
	records, err := r.recordsForIssue(ctx, issueKey)
	if err != nil {
		return nil, err
	}
	var first *time.Time
	for _, record := range records {
		if first == nil || record.EscalatedAt.Before(*first) {
			t := record.EscalatedAt
			first = &t
		}
	}
	return first, nil
}

func (r *DynamoDBRepository) DaysSinceFirstEscalation(ctx context.Context, issueKey string) (*int, error) {
	first, err := r.FirstEscalatedAt(ctx, issueKey)
	if err != nil || first == nil {
		return nil, err
	}
	days := int(r.now().Sub(*first).Hours() / 24)
	return &days, nil
}

func (r *DynamoDBRepository) DeleteIssue(ctx context.Context, issueKey string) error {
	records, err := r.recordsForIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := r.db.Table(escalationsTable).Delete("id", record.ID).Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *DynamoDBRepository) Clear(ctx context.Context) error {
	var records []entity.EscalationRecord
	if err := r.db.Table(escalationsTable).Scan().All(ctx, &records); err != nil {
		return err
	}
	for _, record := range records {
		if err := r.db.Table(escalationsTable).Delete("id", record.ID).Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *DynamoDBRepository) recordsForIssue(ctx context.Context, issueKey string) ([]entity.EscalationRecord, error) {
	var records []entity.EscalationRecord
	err := r.db.Table(escalationsTable).Scan().Filter("'issue_key' = ?", issueKey).All(ctx, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}
