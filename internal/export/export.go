// Package export writes regular-season schedules to xlsx workbooks and reads them back.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/schedule"
	"github.com/preston-bernstein/gridiron-service/internal/timeutil"
)

const (
	SheetSchedule = "Schedule"
	SheetByes     = "Byes"
)

var scheduleHeaders = []string{"Week", "Week Of", "Away", "Home", "Matchup", "Divisional"}

// Workbook builds a workbook with the master schedule, a bye sheet and one sheet per team.
func Workbook(s *schedule.Schedule, list []teams.Team, opening time.Time) (*excelize.File, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schedule")
	}
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")
	byID := teams.Index(list)

	if err := writeSchedule(f, s, byID, opening); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writeByes(f, s, byID); err != nil {
		return nil, fmt.Errorf("writing bye sheet: %w", err)
	}
	if err := writeTeamSheets(f, s, list, opening); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

// Save writes the workbook for s to path.
func Save(path string, s *schedule.Schedule, list []teams.Team, opening time.Time) error {
	f, err := Workbook(s, list, opening)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSchedule(f *excelize.File, s *schedule.Schedule, byID map[string]teams.Team, opening time.Time) error {
	if _, err := f.NewSheet(SheetSchedule); err != nil {
		return err
	}
	if err := writeHeader(f, SheetSchedule, scheduleHeaders); err != nil {
		return err
	}
	row := 2
	for i, week := range s.Weeks {
		weekNum := i + 1
		for _, m := range week {
			values := []any{
				weekNum,
				timeutil.FormatDate(timeutil.WeekOf(opening, weekNum)),
				m.Away,
				m.Home,
				fmt.Sprintf("%s @ %s", label(byID, m.Away), label(byID, m.Home)),
				yesNo(m.Divisional),
			}
			if err := f.SetSheetRow(SheetSchedule, cellRef(1, row), &values); err != nil {
				return err
			}
			row++
		}
	}
	widths := map[string]float64{"A": 8, "B": 14, "C": 10, "D": 10, "E": 16, "F": 12}
	for col, w := range widths {
		if err := f.SetColWidth(SheetSchedule, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeByes(f *excelize.File, s *schedule.Schedule, byID map[string]teams.Team) error {
	if _, err := f.NewSheet(SheetByes); err != nil {
		return err
	}
	if err := writeHeader(f, SheetByes, []string{"Team", "Name", "Bye Week"}); err != nil {
		return err
	}
	ids := make([]string, 0, len(s.Byes))
	for id := range s.Byes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		values := []any{id, byID[id].FullName(), s.Byes[id]}
		if err := f.SetSheetRow(SheetByes, cellRef(1, i+2), &values); err != nil {
			return err
		}
	}
	return nil
}

func writeTeamSheets(f *excelize.File, s *schedule.Schedule, list []teams.Team, opening time.Time) error {
	sorted := append([]teams.Team(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	byID := teams.Index(list)

	for _, team := range sorted {
		sheet := sheetName(team)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeHeader(f, sheet, []string{"Week", "Week Of", "Opponent", "Home/Away"}); err != nil {
			return err
		}
		row := 2
		for i, week := range s.Weeks {
			weekNum := i + 1
			opponent, side := "BYE", ""
			for _, m := range week {
				switch team.ID {
				case m.Home:
					opponent, side = label(byID, m.Away), "Home"
				case m.Away:
					opponent, side = label(byID, m.Home), "Away"
				}
			}
			values := []any{weekNum, timeutil.FormatDate(timeutil.WeekOf(opening, weekNum)), opponent, side}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1F4E78"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), style)
}

// Read parses a workbook produced by Workbook back into a schedule.
func Read(f *excelize.File) (*schedule.Schedule, error) {
	rows, err := f.GetRows(SheetSchedule)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", SheetSchedule, err)
	}
	s := &schedule.Schedule{Weeks: make([][]schedule.Matchup, schedule.Weeks), Byes: map[string]int{}}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: expected at least 4 columns, got %d", i+1, len(row))
		}
		week, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid week %q", i+1, row[0])
		}
		if week < 1 || week > schedule.Weeks {
			return nil, fmt.Errorf("row %d: week %d out of range", i+1, week)
		}
		m := schedule.Matchup{Away: strings.TrimSpace(row[2]), Home: strings.TrimSpace(row[3])}
		if len(row) > 5 {
			m.Divisional = strings.EqualFold(strings.TrimSpace(row[5]), "yes")
		}
		s.Weeks[week-1] = append(s.Weeks[week-1], m)
	}

	byes, err := f.GetRows(SheetByes)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", SheetByes, err)
	}
	for i, row := range byes {
		if i == 0 || len(row) < 3 {
			continue
		}
		week, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("bye row %d: invalid week %q", i+1, row[2])
		}
		s.Byes[strings.TrimSpace(row[0])] = week
	}
	return s, nil
}

// Open reads a schedule from an xlsx file on disk.
func Open(path string) (*schedule.Schedule, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func label(byID map[string]teams.Team, id string) string {
	if t, ok := byID[id]; ok && t.Abbreviation != "" {
		return t.Abbreviation
	}
	return id
}

// sheetName keeps team sheets inside excel's 31 character limit.
func sheetName(t teams.Team) string {
	name := t.Abbreviation
	if name == "" {
		name = t.ID
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func cellRef(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "A1"
	}
	return name
}
