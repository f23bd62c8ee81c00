package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// CreateUsageRecord stores token usage for one completion call.
func CreateUsageRecord(ctx context.Context, db Execer, rec *UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO usage_records (id, model, prompt_tokens, completion_tokens, user_id, thread_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		rec.ID,
		rec.Model,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.UserID,
		rec.ThreadID,
		rec.CreatedAt.UTC(),
	)
	return err
}

// SummarizeUsage aggregates usage per model for records at or after since.
// A zero since covers all records.
func SummarizeUsage(ctx context.Context, db sqlscan.Querier, since time.Time) ([]UsageSummary, error) {
	query := `SELECT model,
			COUNT(*) AS requests,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens
		FROM usage_records
		WHERE created_at >= ?
		GROUP BY model
		ORDER BY model`
	summaries := []UsageSummary{}
	if err := sqlscan.Select(ctx, db, &summaries, query, since.UTC()); err != nil {
		return nil, err
	}
	return summaries, nil
}
