package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var dayTokens = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseDay переводит название дня ("Monday", "MON", "1") в time.Weekday
func ParseDay(token string) (time.Weekday, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if day, ok := dayTokens[token]; ok {
		return day, nil
	}
	if n, err := strconv.Atoi(token); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDayToken, token)
}

// ParseDayNames переводит список названий дней в множество дней недели
// Нераспознанные названия пропускаются; элемент вида "MON-FRI" разворачивается как диапазон
func ParseDayNames(names []string) []time.Weekday {
	set := make(map[time.Weekday]struct{})
	for _, name := range names {
		for _, day := range parseDayToken(name) {
			set[day] = struct{}{}
		}
	}
	return sortedDays(set)
}

// ParseDayExpression разбирает выражение рабочих дней: "MON-FRI", "MON,WED,FRI", "FRI-MON SAT"
// Токены разделяются запятыми и/или пробелами. Диапазон идёт вперёд по модулю 7,
// поэтому "FRI-MON" означает пятницу, субботу, воскресенье и понедельник.
func ParseDayExpression(expr string) []time.Weekday {
	tokens := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	return ParseDayNames(tokens)
}

func parseDayToken(token string) []time.Weekday {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	from, to, isRange := strings.Cut(token, "-")
	if !isRange {
		day, err := ParseDay(token)
		if err != nil {
			return nil
		}
		return []time.Weekday{day}
	}

	start, err := ParseDay(from)
	if err != nil {
		return nil
	}
	end, err := ParseDay(to)
	if err != nil {
		return nil
	}

	days := []time.Weekday{start}
	for day := start; day != end; {
		day = (day + 1) % 7
		days = append(days, day)
	}
	return days
}

// ParseHourRanges разбирает "HH:MM-HH:MM", несколько диапазонов разделяются "," или ";"
// Некорректные диапазоны и диапазоны с началом не раньше конца молча отбрасываются
func ParseHourRanges(expr string) []domain.Period {
	periods := make([]domain.Period, 0)
	for _, part := range strings.FieldsFunc(expr, func(r rune) bool { return r == ',' || r == ';' }) {
		period, err := ParseHourRange(part)
		if err != nil {
			continue
		}
		periods = append(periods, period)
	}
	return periods
}

// ParseHourRange разбирает один диапазон "HH:MM-HH:MM"
func ParseHourRange(s string) (domain.Period, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return domain.Period{}, fmt.Errorf("%w: %q", ErrInvalidHourRange, s)
	}

	start, err := types.ParseMinutes(from)
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: %q: %v", ErrInvalidHourRange, s, err)
	}
	end, err := types.ParseMinutes(to)
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: %q: %v", ErrInvalidHourRange, s, err)
	}

	if start >= end {
		return domain.Period{}, fmt.Errorf("%w: %q: start must be before end", ErrInvalidHourRange, s)
	}

	return domain.Period{StartMinutes: start, EndMinutes: end}, nil
}

// normalizeSlotMinutes: отсутствующее значение - дефолт, слишком маленькое - минимум 5
func normalizeSlotMinutes(v int) int {
	if v <= 0 {
		return domain.DefaultSlotMinutes
	}
	if v < domain.MinSlotMinutes {
		return domain.MinSlotMinutes
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func sortedDays(set map[time.Weekday]struct{}) []time.Weekday {
	days := make([]time.Weekday, 0, len(set))
	for day := range set {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func defaultWorkingDays() []time.Weekday {
	days := make([]time.Weekday, len(domain.DefaultWorkingDays))
	copy(days, domain.DefaultWorkingDays)
	return days
}

func defaultPeriods() []domain.Period {
	return []domain.Period{{
		StartMinutes: domain.DefaultPeriodStartMinutes,
		EndMinutes:   domain.DefaultPeriodEndMinutes,
	}}
}
