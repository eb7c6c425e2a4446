package routing

import (
	"strconv"
	"strings"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "domingo": time.Sunday, "dom": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "segunda": time.Monday, "seg": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "terca": time.Tuesday, "terça": time.Tuesday, "ter": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "quarta": time.Wednesday, "qua": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "quinta": time.Thursday, "qui": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "sexta": time.Friday, "sex": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "sabado": time.Saturday, "sábado": time.Saturday, "sab": time.Saturday, "sáb": time.Saturday,
}

// IsAvailable decides whether the member may receive a lead at now. Checks short circuit in this order:
// inactive members never are; without check-in requirement and window every active member is; an
// enabled window must contain now; a required check-in must be present. Unparseable window data makes
// the member unavailable.
func IsAvailable(member *data.Member, window data.CheckinWindow, now time.Time) bool {
	if member == nil || !member.Active {
		return false
	}
	if !window.RequireCheckin && !window.Enabled {
		return true
	}
	if window.Enabled && !withinWindow(window, now) {
		return false
	}
	if window.RequireCheckin && !member.AvailableNow {
		return false
	}
	return true
}

func withinWindow(window data.CheckinWindow, now time.Time) bool {
	days, ok := parseDays(window.DaysOfWeek)
	if !ok || !days[now.Weekday()] {
		return false
	}
	start, startOk := parseClock(window.StartTime, false)
	end, endOk := parseClock(window.EndTime, true)
	if !startOk || !endOk {
		return false
	}
	current := now.Hour()*3600 + now.Minute()*60 + now.Second()
	if start <= end {
		return current >= start && current <= end
	}
	// window crossing midnight
	return current >= start || current <= end
}

func parseDays(tokens []string) (map[time.Weekday]bool, bool) {
	days := make(map[time.Weekday]bool, len(tokens))
	for _, token := range tokens {
		day, ok := parseDay(token)
		if !ok {
			return nil, false
		}
		days[day] = true
	}
	return days, true
}

func parseDay(token string) (time.Weekday, bool) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	normalized = strings.TrimSuffix(normalized, "-feira")
	if number, err := strconv.Atoi(normalized); err == nil {
		if number < 0 || number > 6 {
			return 0, false
		}
		return time.Weekday(number), true
	}
	day, ok := weekdayNames[normalized]
	return day, ok
}

// parseClock returns seconds since midnight for HH:MM or HH:MM:SS. Without seconds an end of window
// covers its whole minute.
func parseClock(value string, endOfMinute bool) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	limits := []int{23, 59, 59}
	numbers := make([]int, 3)
	for index, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 || number > limits[index] {
			return 0, false
		}
		numbers[index] = number
	}
	if len(parts) == 2 && endOfMinute {
		numbers[2] = 59
	}
	return numbers[0]*3600 + numbers[1]*60 + numbers[2], true
}
