package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteProgress(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	records := []mastery.Record{
		mastery.Apply(nil, "l1", "Recursion", 5, 3, at),
		mastery.Apply(nil, "l1", "Graphs", 5, 5, at),
	}
	attempts := []store.Attempt{{Topic: "Graphs", Difficulty: mastery.DifficultyEasy, Score: 100, CreatedAt: at}}

	var buf bytes.Buffer
	require.NoError(t, WriteProgress(&buf, records, attempts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ProgressSheet, AttemptsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ProgressSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Topic", rows[0][0])
	assert.Equal(t, []string{"Recursion", "5", "3", "60", "medium", "no", "2026-03-01 09:30"}, rows[1])
	assert.Equal(t, []string{"Graphs", "5", "5", "100", "hard", "no", "2026-03-01 09:30"}, rows[2])

	rows, err = f.GetRows(AttemptsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-03-01 09:30", "Graphs", "easy", "100"}, rows[1])
}

func TestWriteProgress_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProgress(&buf, nil, nil))
	assert.NotZero(t, buf.Len())
}
