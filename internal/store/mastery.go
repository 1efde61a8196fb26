package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// masteryRepo implements MasteryRepo with sqlx.
type masteryRepo struct {
	s *Store
}

type masteryRow struct {
	LearnerID       string `db:"learner_id"`
	Topic           string `db:"topic"`
	TotalQuestions  int    `db:"total_questions"`
	CorrectAnswers  int    `db:"correct_answers"`
	MasteryScore    int    `db:"mastery_score"`
	Difficulty      string `db:"difficulty"`
	LastAttemptedAt int64  `db:"last_attempted_at"`
}

// toRecord converts a row and re-checks the record invariants, so a row
// edited outside the service can't feed an inconsistent tier into a quiz.
func (r masteryRow) toRecord() (mastery.Record, error) {
	rec := mastery.Record{
		LearnerID:       r.LearnerID,
		Topic:           r.Topic,
		TotalQuestions:  r.TotalQuestions,
		CorrectAnswers:  r.CorrectAnswers,
		MasteryScore:    r.MasteryScore,
		Difficulty:      mastery.Difficulty(r.Difficulty),
		LastAttemptedAt: time.Unix(0, r.LastAttemptedAt).UTC(),
	}
	if err := rec.Validate(); err != nil {
		return mastery.Record{}, fmt.Errorf("stored %w", err)
	}
	return rec, nil
}

const masteryColumns = `learner_id, topic, total_questions, correct_answers, mastery_score, difficulty, last_attempted_at`

func (r *masteryRepo) GetMastery(ctx context.Context, learnerID, topic string) (*mastery.Record, error) {
	return r.getMastery(ctx, r.s.db, learnerID, topic, "")
}

func (r *masteryRepo) getMastery(ctx context.Context, q sqlx.QueryerContext, learnerID, topic, suffix string) (*mastery.Record, error) {
	var row masteryRow
	query := r.s.db.Rebind(`SELECT ` + masteryColumns + ` FROM mastery_records WHERE learner_id = ? AND topic = ?` + suffix)
	if err := sqlx.GetContext(ctx, q, &row, query, learnerID, topic); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query mastery record: %w", err)
	}
	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *masteryRepo) ListMastery(ctx context.Context, learnerID string) ([]mastery.Record, error) {
	var rows []masteryRow
	query := r.s.db.Rebind(`SELECT ` + masteryColumns + ` FROM mastery_records WHERE learner_id = ? ORDER BY seq`)
	if err := r.s.db.SelectContext(ctx, &rows, query, learnerID); err != nil {
		return nil, fmt.Errorf("list mastery records: %w", err)
	}

	out := make([]mastery.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *masteryRepo) RecordGrading(ctx context.Context, learnerID, topic string, fn GradingFunc) (err error) {
	tx, err := r.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grading tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = ensureLearner(ctx, tx, learnerID); err != nil {
		return err
	}

	prior, err := r.getMastery(ctx, tx, learnerID, topic, r.s.forUpdate())
	if err != nil {
		return err
	}

	w, err := fn(prior)
	if err != nil {
		return err
	}
	if w.Record.LearnerID != learnerID || w.Record.Topic != topic {
		return fmt.Errorf("grading write for %s/%s does not match %s/%s",
			w.Record.LearnerID, w.Record.Topic, learnerID, topic)
	}
	if err = w.Record.Validate(); err != nil {
		return err
	}

	var seq int64
	if prior == nil {
		if seq, err = r.s.seq.Next(ctx, tx); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO mastery_records (`+masteryColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, topic) DO UPDATE SET
			total_questions = excluded.total_questions,
			correct_answers = excluded.correct_answers,
			mastery_score = excluded.mastery_score,
			difficulty = excluded.difficulty,
			last_attempted_at = excluded.last_attempted_at`),
		w.Record.LearnerID, w.Record.Topic, w.Record.TotalQuestions, w.Record.CorrectAnswers,
		w.Record.MasteryScore, string(w.Record.Difficulty), w.Record.LastAttemptedAt.UnixNano(), seq,
	)
	if err != nil {
		return fmt.Errorf("upsert mastery record: %w", err)
	}

	a := w.Attempt
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = w.Record.LastAttemptedAt
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO quiz_attempts
		(id, learner_id, topic, difficulty, questions_json, answers_json, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, learnerID, topic, string(a.Difficulty), string(a.Questions), string(a.Answers),
		a.Score, a.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert quiz attempt: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit grading tx: %w", err)
	}
	return nil
}

type attemptRow struct {
	ID            string `db:"id"`
	LearnerID     string `db:"learner_id"`
	Topic         string `db:"topic"`
	Difficulty    string `db:"difficulty"`
	QuestionsJSON string `db:"questions_json"`
	AnswersJSON   string `db:"answers_json"`
	Score         int    `db:"score"`
	CreatedAt     int64  `db:"created_at"`
}

func (r *masteryRepo) ListAttempts(ctx context.Context, learnerID string, limit int) ([]Attempt, error) {
	query := `SELECT id, learner_id, topic, difficulty, questions_json, answers_json, score, created_at
		FROM quiz_attempts WHERE learner_id = ? ORDER BY created_at DESC`
	args := []any{learnerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []attemptRow
	if err := r.s.db.SelectContext(ctx, &rows, r.s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}

	return lo.Map(rows, func(row attemptRow, _ int) Attempt {
		return Attempt{
			ID:         row.ID,
			LearnerID:  row.LearnerID,
			Topic:      row.Topic,
			Difficulty: mastery.Difficulty(row.Difficulty),
			Questions:  []byte(row.QuestionsJSON),
			Answers:    []byte(row.AnswersJSON),
			Score:      row.Score,
			CreatedAt:  time.Unix(0, row.CreatedAt).UTC(),
		}
	}), nil
}

// ensureLearner creates the learner row on first use.
func ensureLearner(ctx context.Context, e sqlx.ExtContext, learnerID string) error {
	_, err := e.ExecContext(ctx, e.Rebind(`INSERT INTO learners (id, learning_goal, created_at)
		VALUES (?, '', ?) ON CONFLICT (id) DO NOTHING`),
		learnerID, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("ensure learner: %w", err)
	}
	return nil
}
