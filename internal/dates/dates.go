package dates

import "time"

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// Day возвращает календарный день t как полночь UTC.
//
// DATE-колонки pgx сканирует в полночь UTC, поэтому все сравнения по дням
// выполняются в этом представлении независимо от исходной зоны t.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today возвращает текущий календарный день в зоне loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// AddDays сдвигает календарный день на n дней.
func AddDays(day time.Time, n int) time.Time {
	return Day(day).AddDate(0, 0, n)
}

// Format форматирует день в yyyy-MM-dd.
func Format(day time.Time) string {
	return Day(day).Format(Layout)
}

// Parse разбирает строку yyyy-MM-dd.
func Parse(value string) (time.Time, error) {
	parsed, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

// Between сообщает, входит ли day в отрезок [from, to] включительно.
func Between(day, from, to time.Time) bool {
	d := Day(day)
	return !d.Before(Day(from)) && !d.After(Day(to))
}

// MonthStart возвращает первый день месяца, в котором лежит day.
func MonthStart(day time.Time) time.Time {
	year, month, _ := day.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
