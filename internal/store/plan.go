package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// planRepo implements PlanRepo with sqlx.
type planRepo struct {
	s *Store
}

type planRow struct {
	ID             string `db:"id"`
	LearnerID      string `db:"learner_id"`
	Plan           string `db:"plan"`
	WeakTopicsJSON string `db:"weak_topics_json"`
	CreatedAt      int64  `db:"created_at"`
}

func (r *planRepo) SaveStudyPlan(ctx context.Context, plan *StudyPlan) (err error) {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	topics := plan.WeakTopics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("marshal weak topics: %w", err)
	}

	tx, err := r.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = ensureLearner(ctx, tx, plan.LearnerID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO study_plans (id, learner_id, plan, weak_topics_json, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		plan.ID, plan.LearnerID, plan.Plan, string(topicsJSON), plan.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit plan tx: %w", err)
	}
	return nil
}

func (r *planRepo) LatestStudyPlan(ctx context.Context, learnerID string) (*StudyPlan, error) {
	var row planRow
	err := r.s.db.GetContext(ctx, &row, r.s.db.Rebind(`SELECT id, learner_id, plan, weak_topics_json, created_at
		FROM study_plans WHERE learner_id = ? ORDER BY created_at DESC LIMIT 1`), learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest study plan: %w", err)
	}

	var topics []string
	if err := json.Unmarshal([]byte(row.WeakTopicsJSON), &topics); err != nil {
		return nil, fmt.Errorf("decode weak topics: %w", err)
	}

	return &StudyPlan{
		ID:         row.ID,
		LearnerID:  row.LearnerID,
		Plan:       row.Plan,
		WeakTopics: topics,
		CreatedAt:  time.Unix(0, row.CreatedAt).UTC(),
	}, nil
}
