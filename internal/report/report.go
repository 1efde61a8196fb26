// Package report renders a learner's progress as an Excel workbook.
package report

import (
	"fmt"
	"io"

	"github.com/abhisek/quizwise/internal/mastery"
	"github.com/abhisek/quizwise/internal/store"
	"github.com/xuri/excelize/v2"
)

const (
	ProgressSheet = "Progress"
	AttemptsSheet = "Attempts"
)

var (
	progressHeader = []any{"Topic", "Questions", "Correct", "Mastery %", "Difficulty", "Weak", "Last Attempted"}
	attemptsHeader = []any{"Time", "Topic", "Difficulty", "Score %"}
)

// WriteProgress writes one sheet of mastery records and one of recent
// attempts to w as an .xlsx workbook.
func WriteProgress(w io.Writer, records []mastery.Record, attempts []store.Attempt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProgressSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(ProgressSheet, "A1", &progressHeader); err != nil {
		return err
	}
	for i, r := range records {
		weak := "no"
		if mastery.IsWeak(r.MasteryScore) {
			weak = "yes"
		}
		row := []any{
			r.Topic, r.TotalQuestions, r.CorrectAnswers, r.MasteryScore,
			r.Difficulty.String(), weak, r.LastAttemptedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(ProgressSheet, cell(i+2), &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(AttemptsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := f.SetSheetRow(AttemptsSheet, "A1", &attemptsHeader); err != nil {
		return err
	}
	for i, a := range attempts {
		row := []any{a.CreatedAt.Format("2006-01-02 15:04"), a.Topic, a.Difficulty.String(), a.Score}
		if err := f.SetSheetRow(AttemptsSheet, cell(i+2), &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}
