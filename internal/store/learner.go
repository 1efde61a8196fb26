package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// learnerRepo implements LearnerRepo with sqlx.
type learnerRepo struct {
	s *Store
}

func (r *learnerRepo) SetLearningGoal(ctx context.Context, learnerID, goal string) error {
	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`INSERT INTO learners (id, learning_goal, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET learning_goal = excluded.learning_goal`),
		learnerID, goal, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("set learning goal: %w", err)
	}
	return nil
}

func (r *learnerRepo) LearningGoal(ctx context.Context, learnerID string) (string, error) {
	var goal string
	err := r.s.db.GetContext(ctx, &goal, r.s.db.Rebind(`SELECT learning_goal FROM learners WHERE id = ?`), learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query learning goal: %w", err)
	}
	return goal, nil
}
