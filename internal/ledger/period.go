package ledger

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Dan9191/finance-service/internal/models"
)

// MonthWindow is a whole calendar month.
type MonthWindow struct {
	Key    string // YYYY-MM
	Window models.Window
}

// LastMonths returns the n calendar months ending with the month of now,
// oldest first.
func LastMonths(now time.Time, n int) []MonthWindow {
	current := models.NewDate(now.Year(), now.Month(), 1)
	out := make([]MonthWindow, 0, n)
	for i := n - 1; i >= 0; i-- {
		first := models.DateOf(current.Time.AddDate(0, -i, 0))
		last := models.DateOf(first.Time.AddDate(0, 1, -1))
		out = append(out, MonthWindow{
			Key:    first.Format("2006-01"),
			Window: models.NewWindow(first, last),
		})
	}
	return out
}

// PreviousDays returns the n days ending the day before today.
func PreviousDays(today models.Date, n int) models.Window {
	return models.NewWindow(today.AddDays(-n), today.AddDays(-1))
}

// ParseSchedule parses a standard five-field cron expression or descriptor
// such as @monthly.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Occurrences expands a schedule into n dates. The first date is start; every
// following date is the schedule's next day strictly after the previous one.
func Occurrences(spec string, start models.Date, n int) ([]models.Date, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	dates := make([]models.Date, 0, n)
	current := start
	dates = append(dates, current)
	for len(dates) < n {
		// Step from the end of the day so a schedule firing several times a
		// day still yields one occurrence per date.
		next := schedule.Next(current.Time.Add(24*time.Hour - time.Second))
		if next.IsZero() {
			return nil, fmt.Errorf("schedule %q yields only %d occurrences", spec, len(dates))
		}
		current = models.DateOf(next)
		dates = append(dates, current)
	}
	return dates, nil
}
