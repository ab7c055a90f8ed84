// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export builds the spreadsheet reports offered on the admin exports tab.
package export

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/markboard/models"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardSheet is the sheet name used by Leaderboard.
const LeaderboardSheet = "Leaderboard"

// Leaderboard writes a workbook with one row per ranked team.
func Leaderboard(w io.Writer, entries []models.LeaderboardEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setRow(f, LeaderboardSheet, 1, "Rank", "Team", "Total", "Juries"); err != nil {
		return err
	}
	for i, e := range entries {
		if err := setRow(f, LeaderboardSheet, i+2, humanize.Ordinal(e.Rank), e.TeamName, e.Total, e.Juries); err != nil {
			return err
		}
	}

	return write(f, w)
}

// JurySheetData is everything a per-jury marking report shows.
type JurySheetData struct {
	Jury     models.Jury
	Teams    []models.Team
	Criteria []string
	Marks    []models.Mark
}

// JurySheet writes a workbook with one row per team and one column per
// criterion, followed by the team total. Missing marks are left blank.
func JurySheet(w io.Writer, data JurySheetData) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(data.Jury.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Team"}
	for _, c := range data.Criteria {
		header = append(header, c)
	}
	header = append(header, "Total")
	if err := setRow(f, sheet, 1, header...); err != nil {
		return err
	}

	scores := make(map[string]map[string]float64)
	for _, m := range data.Marks {
		if scores[m.TeamID] == nil {
			scores[m.TeamID] = make(map[string]float64)
		}
		scores[m.TeamID][m.Criterion] = m.Score
	}

	for i, t := range data.Teams {
		row := []interface{}{t.Name}
		var total float64
		counted := make(map[string]bool, len(data.Criteria))
		for _, c := range data.Criteria {
			score, ok := scores[t.ID][c]
			if !ok {
				row = append(row, nil)
				continue
			}
			// A repeated label shows the same mark again but counts once
			if !counted[c] {
				counted[c] = true
				total += score
			}
			row = append(row, score)
		}
		row = append(row, total)
		if err := setRow(f, sheet, i+2, row...); err != nil {
			return err
		}
	}

	return write(f, w)
}

// SheetName trims a name to Excel's 31 character sheet limit and replaces
// the characters Excel rejects. An apostrophe may not open or close a name.
func SheetName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			r = '_'
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Jury"
	}
	if out[0] == '\'' {
		out[0] = '_'
	}
	if out[len(out)-1] == '\'' {
		out[len(out)-1] = '_'
	}
	return string(out)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func write(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
