package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseIsTotal проверяет, что любой ввод дает допустимый intent.
func TestParseIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"🙂🙂🙂",
		"счета на этой неделе",
		"請問我的帳單",
		"?!.",
		strings.Repeat("call ", 500),
		"remind me",
		"pay bill",
		"mark paid",
	}

	for _, input := range inputs {
		parsed := Parse(input)
		assert.Contains(t, Intents, parsed.Intent, "input %q", input)
		assert.NotNil(t, parsed.Entities, "input %q", input)
	}
}

// TestParseIntents проверяет классификацию типовых фраз.
func TestParseIntents(t *testing.T) {
	cases := []struct {
		query    string
		intent   Intent
		entities map[string]string
	}{
		{"What bills are due this week?", IntentBillsDueWeek, map[string]string{}},
		{"bills due this week", IntentBillsDueWeek, map[string]string{}},
		{"What's Emma's shoe size?", IntentShoeSize, map[string]string{EntityPerson: "emma"}},
		{"shoe size for liam", IntentShoeSize, map[string]string{EntityPerson: "liam"}},
		{"what is my shoe size", IntentShoeSize, map[string]string{}},
		{"Remind me to buy milk tomorrow", IntentAddReminder, map[string]string{EntityTitle: "buy milk", EntityWhen: WhenTomorrow}},
		{"add reminder to renew passport next week", IntentAddReminder, map[string]string{EntityTitle: "renew passport", EntityWhen: WhenNextWeek}},
		{"remind me to water plants", IntentAddReminder, map[string]string{EntityTitle: "water plants", EntityWhen: WhenToday}},
		{"remind me tomorrow to call mom", IntentAddReminder, map[string]string{EntityTitle: "call mom", EntityWhen: WhenTomorrow}},
		{"remind me next week to renew the registration", IntentAddReminder, map[string]string{EntityTitle: "renew the registration", EntityWhen: WhenNextWeek}},
		{"remind me to call the dentist tomorrow at 3pm", IntentAddReminder, map[string]string{EntityTitle: "call the dentist at 3pm", EntityWhen: WhenTomorrow}},
		{"remind me to check today's mail", IntentAddReminder, map[string]string{EntityTitle: "check today's mail", EntityWhen: WhenToday}},
		{"set a reminder for tomorrow to pay rent", IntentAddReminder, map[string]string{EntityTitle: "pay rent", EntityWhen: WhenTomorrow}},
		{"call the vet next week about shots", IntentAddReminder, map[string]string{EntityTitle: "call the vet about shots", EntityWhen: WhenNextWeek}},
		{"How much did we spend on groceries?", IntentSpendingSummary, map[string]string{EntityCategory: "groceries", EntityPeriod: PeriodThisMonth}},
		{"how much did we spend on dining last month", IntentSpendingSummary, map[string]string{EntityCategory: "dining", EntityPeriod: PeriodLastMonth}},
		{"how much did we spend this month", IntentSpendingSummary, map[string]string{EntityPeriod: PeriodThisMonth}},
		{"grocery spending last month", IntentSpendingSummary, map[string]string{EntityCategory: "grocery", EntityPeriod: PeriodLastMonth}},
		{"our total spending", IntentSpendingSummary, map[string]string{EntityPeriod: PeriodThisMonth}},
		{"when is the registration due", IntentRegistrationDue, map[string]string{}},
		{"Call the plumber", IntentCallContact, map[string]string{EntityContactType: "plumber"}},
		{"pay the electric bill", IntentPayBill, map[string]string{EntityBillName: "electric"}},
		{"mark the water bill as paid", IntentMarkBillPaid, map[string]string{EntityBillName: "water"}},
		{"mark netflix paid", IntentMarkBillPaid, map[string]string{EntityBillName: "netflix"}},
		{"where is the car title", IntentSearch, map[string]string{EntityQuery: "where is the car title"}},
		{"bills due next week", IntentSearch, map[string]string{EntityQuery: "bills due next week"}},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			parsed := Parse(tc.query)
			require.Equal(t, tc.intent, parsed.Intent)
			assert.Equal(t, tc.entities, parsed.Entities)
		})
	}
}

// TestParseCallTomorrowIsReminder проверяет, что напоминание проверяется
// раньше звонка.
func TestParseCallTomorrowIsReminder(t *testing.T) {
	parsed := Parse("call the dentist tomorrow")

	require.Equal(t, IntentAddReminder, parsed.Intent)
	assert.Equal(t, "call the dentist", parsed.Entities[EntityTitle])
	assert.Equal(t, WhenTomorrow, parsed.Entities[EntityWhen])

	assert.Equal(t, IntentCallContact, Parse("call the plumber").Intent)
}

// TestParseRemindBeforePayBill проверяет, что напоминание об оплате не
// превращается в оплату счета.
func TestParseRemindBeforePayBill(t *testing.T) {
	parsed := Parse("remind me to pay the electric bill")
	assert.Equal(t, IntentAddReminder, parsed.Intent)
	assert.Equal(t, "pay the electric bill", parsed.Entities[EntityTitle])
}

// TestParseRemindBeforeRegistration проверяет приоритет напоминания над
// вопросом о регистрации.
func TestParseRemindBeforeRegistration(t *testing.T) {
	assert.Equal(t, IntentAddReminder, Parse("remind me to renew the registration next week").Intent)
}

// TestParseBillsDueBeforeReminder проверяет приоритет вопроса о счетах.
func TestParseBillsDueBeforeReminder(t *testing.T) {
	assert.Equal(t, IntentBillsDueWeek, Parse("remind me which bills are due this week").Intent)
}

// TestParseShoeSizeBeforeSpending проверяет, что вопрос о размере обуви не
// уходит в траты.
func TestParseShoeSizeBeforeSpending(t *testing.T) {
	assert.Equal(t, IntentShoeSize, Parse("how much did we spend and what's noah's shoe size").Intent)
}

// TestParseSpendingBeforeCall проверяет, что вопрос о тратах на звонки не
// становится звонком.
func TestParseSpendingBeforeCall(t *testing.T) {
	assert.Equal(t, IntentSpendingSummary, Parse("call spending this month").Intent)
}

// TestParseCallBeforePayAndMark проверяет, что звонок проверяется раньше
// оплаты и отметки.
func TestParseCallBeforePayAndMark(t *testing.T) {
	assert.Equal(t, IntentCallContact, Parse("call the pay bill line").Intent)
}

// TestParsePayBeforeMark проверяет порядок оплаты и отметки.
func TestParsePayBeforeMark(t *testing.T) {
	assert.Equal(t, IntentPayBill, Parse("pay the gas bill").Intent)
	assert.Equal(t, IntentMarkBillPaid, Parse("mark gas bill paid").Intent)
}

// TestNormalize проверяет нормализацию запроса.
func TestNormalize(t *testing.T) {
	assert.Equal(t, "what's emma's shoe size", Normalize("  What’s   Emma's\tshoe size?? "))
	assert.Equal(t, "", Normalize("   "))
}
