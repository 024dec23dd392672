package command

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/format"
	"example.com/household-assistant/internal/models"
)

const (
	dueWindowDays   = 7
	searchPrompt    = "Let me search your household records for that."
	routeBills      = "/bills"
	routeSpending   = "/spending"
	routeVehicles   = "/vehicles"
	routeContacts   = "/contacts"
	routeGrowth     = "/growth"
	routeGrowthNew  = "/growth/new"
	payloadRoute    = "route"
	payloadURL      = "url"
	payloadPhone    = "phone"
	payloadTitle    = "title"
	payloadDate     = "date"
	payloadBillID   = "bill_id"
	payloadBillName = "bill_name"
)

// ParseAndExecute разбирает запрос и исполняет его на переданных данных.
func ParseAndExecute(query string, data Data) Result {
	return Execute(Parse(query), data)
}

// Execute исполняет разобранную команду. Функция чистая: все, что ей нужно,
// приходит в data, а побочные эффекты только предлагаются в виде действий.
func Execute(parsed ParsedCommand, data Data) Result {
	var result Result

	switch parsed.Intent {
	case IntentBillsDueWeek:
		result = billsDueWeek(data)
	case IntentShoeSize:
		result = shoeSize(parsed, data)
	case IntentAddReminder:
		result = addReminder(parsed, data)
	case IntentSpendingSummary:
		result = spendingSummary(parsed, data)
	case IntentRegistrationDue:
		result = registrationDue(data)
	case IntentCallContact:
		result = callContact(parsed, data)
	case IntentPayBill:
		result = payBill(parsed, data)
	case IntentMarkBillPaid:
		result = markBillPaid(parsed, data)
	default:
		result = Result{Answer: searchPrompt}
	}

	if strings.TrimSpace(result.Answer) == "" {
		result.Answer = searchPrompt
	}
	if result.Actions == nil {
		result.Actions = []Action{}
	}
	if len(result.Actions) > maxActions {
		result.Actions = result.Actions[:maxActions]
	}

	return result
}

// ResolveReminderDate переводит относительный срок в дату yyyy-MM-dd.
func ResolveReminderDate(when string, today time.Time) string {
	switch when {
	case WhenTomorrow:
		return dates.Format(dates.AddDays(today, 1))
	case WhenNextWeek:
		return dates.Format(dates.AddDays(today, 7))
	default:
		return dates.Format(today)
	}
}

// BillsDueWithin возвращает неоплаченные счета со сроком в [today, today+days].
func BillsDueWithin(bills []models.Bill, today time.Time, days int) []models.Bill {
	end := dates.AddDays(today, days)
	out := make([]models.Bill, 0)
	for _, bill := range bills {
		if bill.Status != models.BillStatusPending {
			continue
		}
		if !dates.Between(bill.DueDate, today, end) {
			continue
		}
		out = append(out, bill)
	}
	return out
}

func billsDueWeek(data Data) Result {
	due := BillsDueWithin(data.Bills, data.Today, dueWindowDays)
	if len(due) == 0 {
		return Result{Answer: "You have no bills due this week."}
	}

	var total int64
	for _, bill := range due {
		total += bill.AmountCents
	}

	return Result{
		Answer: fmt.Sprintf("You have %s due this week totaling %s.", format.Count(len(due), "bill", "bills"), format.Money(total)),
		Actions: []Action{
			navigate("View bills", routeBills),
		},
	}
}

func shoeSize(parsed ParsedCommand, data Data) Result {
	person, hasPerson := parsed.Entity(EntityPerson)

	records := make([]models.GrowthRecord, 0, len(data.GrowthRecords))
	for _, record := range data.GrowthRecords {
		if hasPerson && !containsFold(record.PersonName, person) {
			continue
		}
		records = append(records, record)
	}

	subject := "your family"
	if hasPerson {
		subject = capitalize(person)
	}

	if len(records) == 0 {
		return Result{
			Answer: fmt.Sprintf("I don't have any growth records for %s yet.", subject),
			Actions: []Action{
				navigate("Add record", routeGrowthNew),
			},
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordDate.After(records[j].RecordDate)
	})
	latest := records[0]

	size := strings.TrimSpace(latest.ShoeSize)
	if size == "" {
		return Result{
			Answer:  fmt.Sprintf("%s's shoe size is not recorded.", latest.PersonName),
			Actions: []Action{navigate("View growth records", routeGrowth)},
		}
	}

	return Result{
		Answer:  fmt.Sprintf("%s's shoe size is %s (as of %s).", latest.PersonName, size, format.Date(latest.RecordDate)),
		Actions: []Action{navigate("View growth records", routeGrowth)},
	}
}

func addReminder(parsed ParsedCommand, data Data) Result {
	title, ok := parsed.Entity(EntityTitle)
	if !ok {
		return Result{Answer: "What should I remind you about?"}
	}

	when, _ := parsed.Entity(EntityWhen)
	date := ResolveReminderDate(when, data.Today)
	title = capitalize(title)

	return Result{
		Answer: fmt.Sprintf("Want me to set a reminder to %s on %s?", lowerFirst(title), date),
		Actions: []Action{
			{
				Label:   "Create reminder",
				Type:    ActionCreateReminder,
				Payload: map[string]string{payloadTitle: title, payloadDate: date},
			},
		},
	}
}

func spendingSummary(parsed ParsedCommand, data Data) Result {
	period, _ := parsed.Entity(EntityPeriod)
	periodLabel := "this month"
	if period == PeriodLastMonth {
		periodLabel = "last month"
	}

	spending := data.spending(period)
	actions := []Action{navigate("View spending", routeSpending)}

	category, ok := parsed.Entity(EntityCategory)
	if !ok {
		return Result{
			Answer:  fmt.Sprintf("You spent %s in total %s.", format.Money(spending.TotalCents), periodLabel),
			Actions: actions,
		}
	}

	for _, total := range spending.ByCategory {
		if containsFold(total.Category, category) {
			return Result{
				Answer:  fmt.Sprintf("You spent %s on %s %s.", format.Money(total.TotalCents), total.Category, periodLabel),
				Actions: actions,
			}
		}
	}

	return Result{
		Answer:  fmt.Sprintf("I couldn't find any %s spending %s.", category, periodLabel),
		Actions: actions,
	}
}

func registrationDue(data Data) Result {
	lines := make([]string, 0, len(data.Vehicles))
	for _, vehicle := range data.Vehicles {
		if vehicle.RegistrationExpiry == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: registration due %s", VehicleLabel(vehicle), format.Date(*vehicle.RegistrationExpiry)))
	}

	if len(lines) == 0 {
		return Result{
			Answer:  "I don't have any registration dates on file. Add them on the Vehicles screen.",
			Actions: []Action{navigate("Open vehicles", routeVehicles)},
		}
	}

	return Result{
		Answer:  strings.Join(lines, "\n"),
		Actions: []Action{navigate("Open vehicles", routeVehicles)},
	}
}

// VehicleLabel возвращает читаемое имя автомобиля.
func VehicleLabel(vehicle models.Vehicle) string {
	if nickname := strings.TrimSpace(vehicle.Nickname); nickname != "" {
		return nickname
	}

	parts := make([]string, 0, 3)
	if vehicle.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", vehicle.Year))
	}
	for _, part := range []string{vehicle.Make, vehicle.Model} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "Vehicle"
	}
	return strings.Join(parts, " ")
}

func callContact(parsed ParsedCommand, data Data) Result {
	contactType, ok := parsed.Entity(EntityContactType)
	if !ok {
		return Result{Answer: "Who would you like to call?"}
	}

	for _, contact := range data.Contacts {
		if !containsFold(contact.ServiceType, contactType) && !containsFold(contact.Name, contactType) {
			continue
		}
		phone := DigitsOnly(contact.Phone)
		if phone == "" {
			continue
		}

		return Result{
			Answer: fmt.Sprintf("Calling %s at %s.", contact.Name, contact.Phone),
			Actions: []Action{
				{Label: "Call " + contact.Name, Type: ActionCall, Payload: map[string]string{payloadPhone: phone}},
			},
		}
	}

	return Result{
		Answer:  fmt.Sprintf("I couldn't find a %s with a phone number.", contactType),
		Actions: []Action{navigate("Open contacts", routeContacts)},
	}
}

func payBill(parsed ParsedCommand, data Data) Result {
	name, ok := parsed.Entity(EntityBillName)
	if !ok {
		return Result{Answer: "Which bill would you like to pay?"}
	}

	bill, found := MatchBill(data.Bills, name, func(bill models.Bill) bool {
		return strings.TrimSpace(bill.PaymentURL) != ""
	})
	if !found {
		return Result{
			Answer:  fmt.Sprintf("I couldn't find a %s bill with a payment link.", name),
			Actions: []Action{navigate("View bills", routeBills)},
		}
	}

	return Result{
		Answer: fmt.Sprintf("Opening the payment page for %s (%s).", bill.Name, format.Money(bill.AmountCents)),
		Actions: []Action{
			{Label: "Pay " + bill.Name, Type: ActionOpenURL, Payload: map[string]string{payloadURL: bill.PaymentURL}},
			markPaidAction(bill),
		},
	}
}

func markBillPaid(parsed ParsedCommand, data Data) Result {
	name, ok := parsed.Entity(EntityBillName)
	if !ok {
		return Result{Answer: "Which bill should I mark as paid?"}
	}

	bill, found := MatchBill(data.Bills, name, func(bill models.Bill) bool {
		return bill.Status == models.BillStatusPending
	})
	if !found {
		return Result{
			Answer:  fmt.Sprintf("I couldn't find a pending %s bill.", name),
			Actions: []Action{navigate("View bills", routeBills)},
		}
	}

	return Result{
		Answer:  fmt.Sprintf("Mark %s (%s) as paid?", bill.Name, format.Money(bill.AmountCents)),
		Actions: []Action{markPaidAction(bill)},
	}
}

// MatchBill возвращает первый счет, у которого имя или поставщик содержит
// name без учета регистра и который проходит фильтр eligible.
func MatchBill(bills []models.Bill, name string, eligible func(models.Bill) bool) (models.Bill, bool) {
	for _, bill := range bills {
		if eligible != nil && !eligible(bill) {
			continue
		}
		if containsFold(bill.Name, name) || containsFold(bill.Provider, name) {
			return bill, true
		}
	}
	return models.Bill{}, false
}

// DigitsOnly оставляет в строке только цифры.
func DigitsOnly(value string) string {
	var builder strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

func markPaidAction(bill models.Bill) Action {
	return Action{
		Label: "Mark as paid",
		Type:  ActionMarkBillPaid,
		Payload: map[string]string{
			payloadBillID:   bill.ID.String(),
			payloadBillName: bill.Name,
		},
	}
}

func navigate(label, route string) Action {
	return Action{Label: label, Type: ActionNavigate, Payload: map[string]string{payloadRoute: route}}
}

func containsFold(value, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

func capitalize(value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func lowerFirst(value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
