package reservation

import (
	"fmt"
	"strings"
	"time"
)

var finnishWeekdays = [...]string{"su", "ma", "ti", "ke", "to", "pe", "la"}

// FormatTimeRange 予約期間を言語に応じた表記にする
func FormatTimeRange(language string, begin, end time.Time, loc *time.Location) string {
	if loc != nil {
		begin = begin.In(loc)
		end = end.In(loc)
	}
	sameDay := begin.Year() == end.Year() && begin.YearDay() == end.YearDay()

	formatDate := formatDateEnglish
	formatClock := formatClockEnglish
	if language == "fi" {
		formatDate = formatDateFinnish
		formatClock = formatClockFinnish
	}

	if sameDay {
		return formatDate(begin) + "–" + formatClock(end)
	}
	return formatDate(begin) + " – " + formatDate(end)
}

func formatDateFinnish(t time.Time) string {
	return fmt.Sprintf("%s %d.%d.%d klo %s", finnishWeekdays[t.Weekday()], t.Day(), int(t.Month()), t.Year(), formatClockFinnish(t))
}

func formatClockFinnish(t time.Time) string {
	return fmt.Sprintf("%d.%02d", t.Hour(), t.Minute())
}

func formatDateEnglish(t time.Time) string {
	return fmt.Sprintf("%s %d/%d/%d %s", t.Weekday().String()[:3], t.Day(), int(t.Month()), t.Year(), formatClockEnglish(t))
}

func formatClockEnglish(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// HumanizeDuration 期間を "2 hours 30 minutes" の形式にする
func HumanizeDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	mins := int(d/time.Minute) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if mins > 0 {
		parts = append(parts, plural(mins, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
