package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	breakdownSheet    = "Breakdown"
	pullRequestsSheet = "Pull Requests"
)

// WriteWorkbook exports the contributor breakdown and the pull requests of data to an xlsx file.
func WriteWorkbook(name string, data RepositoryData, pattern string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", breakdownSheet); err != nil {
		return fmt.Errorf("failed to name breakdown sheet: %w", err)
	}
	if err := writeRows(f, breakdownSheet, breakdownRows(data.Users, pattern)); err != nil {
		return err
	}

	if _, err := f.NewSheet(pullRequestsSheet); err != nil {
		return fmt.Errorf("failed to create pull requests sheet: %w", err)
	}
	if err := writeRows(f, pullRequestsSheet, pullRequestRows(data, pattern)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := f.SaveAs(name); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", name, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d of %s: %w", i+1, sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func breakdownRows(users []domain.Breakdown, pattern string) [][]any {
	rows := [][]any{{"Author", "Duration", "Duration (ms)", "Commits", "Pull Requests", "Issues", "Comments"}}
	for _, user := range users {
		rows = append(rows, []any{
			user.Name,
			formatDuration(user.Duration, pattern),
			user.Duration,
			user.Commits,
			user.PullRequests,
			user.Issues,
			user.Comments,
		})
	}
	return rows
}

func pullRequestRows(data RepositoryData, pattern string) [][]any {
	rows := [][]any{{"Number", "Title", "Author", "State", "Duration", "Duration (ms)", "URL"}}
	for _, pr := range data.PullRequests.FilteredItems() {
		author := ""
		if a := data.PullRequests.Author(pr); a != nil {
			author = a.Name
		}
		rows = append(rows, []any{
			pr.Number,
			pr.Title,
			author,
			pr.State,
			data.PullRequests.FormatDuration(pr, pattern),
			data.PullRequests.Duration(pr),
			pr.URL,
		})
	}
	return rows
}
