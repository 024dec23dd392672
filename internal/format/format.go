package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money форматирует сумму в центах как "$1,234.56".
func Money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return sign + "$" + printer.Sprintf("%.2f", float64(cents)/100)
}

// Date форматирует календарный день как "Mar 3, 2026".
func Date(day time.Time) string {
	return day.Format("Jan 2, 2006")
}

// Count возвращает "1 bill" / "3 bills".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
