package command

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	billsDueWeekPattern = regexp.MustCompile(`\b(?:bills?|payments?)\b.*\b(?:due|coming up)\b.*\bweek\b|\bdue (?:this|the) week\b`)

	shoeSizePattern       = regexp.MustCompile(`\bshoes? size\b`)
	shoeSizeOwnerPattern  = regexp.MustCompile(`\b([a-z][a-z-]*)'s shoes? size\b`)
	shoeSizeForPattern    = regexp.MustCompile(`\bshoes? size (?:for|of) ([a-z][a-z-]*)\b`)
	shoeSizeNonNameTokens = map[string]bool{"what": true, "whats": true, "the": true, "my": true, "our": true, "your": true, "current": true}

	nextWeekPattern = regexp.MustCompile(`\bnext week\b`)

	// Each reminder pattern captures the whole phrase; the time word is lifted
	// out of it wherever it appears.
	reminderPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^remind me (.+)$`),
		regexp.MustCompile(`^(?:add|set|create|make) (?:a |an )?reminder (.+)$`),
		regexp.MustCompile(`^(call .*\b(?:today|tomorrow|next week)(?: .*)?)$`),
	}
	reminderWhenPattern = regexp.MustCompile(`\b(today|tomorrow|next week)(?: |$)`)
	reminderLeadPattern = regexp.MustCompile(`^(?:(?:to|for|about) )+`)

	spendingPattern         = regexp.MustCompile(`\bhow much (?:did|have|do) (?:we|i) (?:spend|spent)\b|\bspending\b`)
	spendingOnPattern       = regexp.MustCompile(`\b(?:spend|spent|spending) (?:on|for) ([a-z0-9&' -]+?)(?: (?:this|last) month)?$`)
	spendingPrefixPattern   = regexp.MustCompile(`\b([a-z0-9&'-]+) spending\b`)
	spendingNonCategoryWord = map[string]bool{"my": true, "our": true, "total": true, "the": true, "monthly": true, "much": true}

	registrationPattern = regexp.MustCompile(`\bregistrations?\b`)
	callContactPattern  = regexp.MustCompile(`^call (?:the |my |our |a |an )?(.+)$`)
	payBillPattern      = regexp.MustCompile(`^pay (?:the |my |our )?(.+?) bill$`)
	markBillPaidPattern = regexp.MustCompile(`^mark (?:the |my |our )?(.+?)(?: bill)? (?:as )?paid$`)
)

type rule struct {
	intent Intent
	match  func(query string) (map[string]string, bool)
}

// rules are evaluated top to bottom and the first match wins. Later rules
// would also match many queries caught by earlier ones, so the order is part
// of the contract: reminders must precede call_contact.
var rules = []rule{
	{intent: IntentBillsDueWeek, match: matchBillsDueWeek},
	{intent: IntentShoeSize, match: matchShoeSize},
	{intent: IntentAddReminder, match: matchReminder},
	{intent: IntentSpendingSummary, match: matchSpending},
	{intent: IntentRegistrationDue, match: matchRegistration},
	{intent: IntentCallContact, match: matchCallContact},
	{intent: IntentPayBill, match: matchPayBill},
	{intent: IntentMarkBillPaid, match: matchMarkBillPaid},
}

// Parse классифицирует свободный текст. Функция тотальна: любой ввод дает
// ровно одну команду, нераспознанный текст становится поиском.
func Parse(query string) ParsedCommand {
	normalized := Normalize(query)

	for _, r := range rules {
		if entities, ok := r.match(normalized); ok {
			return ParsedCommand{Intent: r.intent, Entities: entities}
		}
	}

	return ParsedCommand{
		Intent:   IntentSearch,
		Entities: map[string]string{EntityQuery: normalized},
	}
}

// Normalize приводит запрос к нижнему регистру, схлопывает пробелы и
// убирает завершающую пунктуацию.
func Normalize(query string) string {
	normalized := strings.ToLower(query)
	normalized = strings.NewReplacer("’", "'", "‘", "'").Replace(normalized)
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)
	return strings.TrimRight(normalized, "?!.")
}

func matchBillsDueWeek(query string) (map[string]string, bool) {
	if !billsDueWeekPattern.MatchString(query) || nextWeekPattern.MatchString(query) {
		return nil, false
	}
	return map[string]string{}, true
}

func matchShoeSize(query string) (map[string]string, bool) {
	if !shoeSizePattern.MatchString(query) {
		return nil, false
	}

	entities := map[string]string{}
	for _, pattern := range []*regexp.Regexp{shoeSizeOwnerPattern, shoeSizeForPattern} {
		match := pattern.FindStringSubmatch(query)
		if match == nil || shoeSizeNonNameTokens[match[1]] {
			continue
		}
		entities[EntityPerson] = match[1]
		break
	}

	return entities, true
}

func matchReminder(query string) (map[string]string, bool) {
	for _, pattern := range reminderPatterns {
		match := pattern.FindStringSubmatch(query)
		if match == nil {
			continue
		}

		when, title := liftWhen(match[1])
		title = strings.TrimSpace(reminderLeadPattern.ReplaceAllString(title, ""))
		if title == "" {
			continue
		}

		entities := map[string]string{
			EntityTitle: title,
			EntityWhen:  normalizeWhen(when),
		}
		return entities, true
	}

	return nil, false
}

// liftWhen вынимает первое слово времени из фразы напоминания и возвращает
// его вместе с оставшимся текстом.
func liftWhen(phrase string) (string, string) {
	loc := reminderWhenPattern.FindStringSubmatchIndex(phrase)
	if loc == nil {
		return "", strings.TrimSpace(phrase)
	}

	when := phrase[loc[2]:loc[3]]
	rest := phrase[:loc[0]] + " " + phrase[loc[1]:]
	return when, strings.TrimSpace(whitespacePattern.ReplaceAllString(rest, " "))
}

func normalizeWhen(value string) string {
	switch value {
	case "tomorrow":
		return WhenTomorrow
	case "next week":
		return WhenNextWeek
	default:
		return WhenToday
	}
}

func matchSpending(query string) (map[string]string, bool) {
	if !spendingPattern.MatchString(query) {
		return nil, false
	}

	entities := map[string]string{EntityPeriod: PeriodThisMonth}
	if strings.Contains(query, "last month") {
		entities[EntityPeriod] = PeriodLastMonth
	}

	if match := spendingOnPattern.FindStringSubmatch(query); match != nil {
		category := strings.TrimSpace(match[1])
		if category != "" && !spendingNonCategoryWord[category] {
			entities[EntityCategory] = category
		}
	} else if match := spendingPrefixPattern.FindStringSubmatch(query); match != nil && !spendingNonCategoryWord[match[1]] {
		entities[EntityCategory] = match[1]
	}

	return entities, true
}

func matchRegistration(query string) (map[string]string, bool) {
	if !registrationPattern.MatchString(query) {
		return nil, false
	}
	return map[string]string{}, true
}

func matchCallContact(query string) (map[string]string, bool) {
	match := callContactPattern.FindStringSubmatch(query)
	if match == nil {
		return nil, false
	}
	return map[string]string{EntityContactType: strings.TrimSpace(match[1])}, true
}

func matchPayBill(query string) (map[string]string, bool) {
	match := payBillPattern.FindStringSubmatch(query)
	if match == nil {
		return nil, false
	}
	return map[string]string{EntityBillName: strings.TrimSpace(match[1])}, true
}

func matchMarkBillPaid(query string) (map[string]string, bool) {
	match := markBillPaidPattern.FindStringSubmatch(query)
	if match == nil {
		return nil, false
	}
	return map[string]string{EntityBillName: strings.TrimSpace(match[1])}, true
}
