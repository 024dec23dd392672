package command

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/household"
	"example.com/household-assistant/internal/models"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func pendingBill(name string, dueInDays int, cents int64) models.Bill {
	return models.Bill{
		ID:          uuid.New(),
		Name:        name,
		AmountCents: cents,
		DueDate:     dates.AddDays(testToday, dueInDays),
		Status:      models.BillStatusPending,
	}
}

// TestExecuteBillsDueWeekScenario проверяет сквозной сценарий с одним счетом.
func TestExecuteBillsDueWeekScenario(t *testing.T) {
	data := Data{
		Today: testToday,
		Bills: []models.Bill{pendingBill("Netflix", 3, 1599)},
	}

	result := ParseAndExecute("bills due this week", data)

	assert.Contains(t, result.Answer, "1 bill")
	assert.Contains(t, result.Answer, "$15.99")
	require.Len(t, result.Actions, 1)
	assert.Equal(t, ActionNavigate, result.Actions[0].Type)
}

// TestBillsDueWithinBoundaries проверяет включительные границы окна.
func TestBillsDueWithinBoundaries(t *testing.T) {
	paid := pendingBill("Paid", 2, 100)
	paid.Status = models.BillStatusPaid

	bills := []models.Bill{
		pendingBill("Today", 0, 100),
		pendingBill("Edge", 7, 200),
		pendingBill("Outside", 8, 400),
		pendingBill("Yesterday", -1, 800),
		paid,
	}

	due := BillsDueWithin(bills, testToday, 7)

	names := make([]string, 0, len(due))
	for _, bill := range due {
		names = append(names, bill.Name)
	}
	assert.Equal(t, []string{"Today", "Edge"}, names)

	result := Execute(ParsedCommand{Intent: IntentBillsDueWeek}, Data{Today: testToday, Bills: bills})
	assert.Contains(t, result.Answer, "2 bills")
	assert.Contains(t, result.Answer, "$3.00")
}

// TestExecuteBillsDueWeekEmpty проверяет ответ без счетов.
func TestExecuteBillsDueWeekEmpty(t *testing.T) {
	result := Execute(ParsedCommand{Intent: IntentBillsDueWeek}, Data{Today: testToday})
	assert.NotEmpty(t, result.Answer)
	assert.Empty(t, result.Actions)
}

// TestResolveReminderDate проверяет разрешение относительных дат.
func TestResolveReminderDate(t *testing.T) {
	assert.Equal(t, "2026-03-11", ResolveReminderDate(WhenTomorrow, testToday))
	assert.Equal(t, "2026-03-17", ResolveReminderDate(WhenNextWeek, testToday))
	assert.Equal(t, "2026-03-10", ResolveReminderDate(WhenToday, testToday))
	assert.Equal(t, "2026-03-10", ResolveReminderDate("", testToday))
}

// TestExecuteAddReminderProposesOnly проверяет, что напоминание только
// предлагается действием.
func TestExecuteAddReminderProposesOnly(t *testing.T) {
	result := ParseAndExecute("call the dentist tomorrow", Data{Today: testToday})

	require.Len(t, result.Actions, 1)
	action := result.Actions[0]
	assert.Equal(t, ActionCreateReminder, action.Type)
	assert.Equal(t, "Call the dentist", action.Payload["title"])
	assert.Equal(t, "2026-03-11", action.Payload["date"])
}

// TestMarkBillPaidFirstMatchWins проверяет детерминированный выбор первого
// подходящего счета.
func TestMarkBillPaidFirstMatchWins(t *testing.T) {
	first := pendingBill("Electric Co", 5, 12000)
	second := pendingBill("City Electric", 2, 8000)
	data := Data{Today: testToday, Bills: []models.Bill{first, second}}

	for i := 0; i < 5; i++ {
		result := ParseAndExecute("mark electric paid", data)
		require.Len(t, result.Actions, 1)
		assert.Equal(t, ActionMarkBillPaid, result.Actions[0].Type)
		assert.Equal(t, first.ID.String(), result.Actions[0].Payload["bill_id"])
	}
}

// TestMarkBillPaidSkipsPaidBills проверяет, что оплаченные счета не
// предлагаются.
func TestMarkBillPaidSkipsPaidBills(t *testing.T) {
	paid := pendingBill("Water", 1, 4000)
	paid.Status = models.BillStatusPaid

	result := ParseAndExecute("mark water paid", Data{Today: testToday, Bills: []models.Bill{paid}})
	assert.Contains(t, result.Answer, "couldn't find")
	for _, action := range result.Actions {
		assert.NotEqual(t, ActionMarkBillPaid, action.Type)
	}
}

// TestPayBillMatchesProvider проверяет поиск по поставщику среди счетов со
// ссылкой на оплату.
func TestPayBillMatchesProvider(t *testing.T) {
	noLink := pendingBill("Power", 3, 5000)
	noLink.Provider = "Sunrise Energy"
	withLink := pendingBill("Electricity", 3, 6000)
	withLink.Provider = "Sunrise Energy"
	withLink.PaymentURL = "https://pay.example.com/sunrise"

	result := ParseAndExecute("pay the sunrise bill", Data{Today: testToday, Bills: []models.Bill{noLink, withLink}})

	require.NotEmpty(t, result.Actions)
	assert.Equal(t, ActionOpenURL, result.Actions[0].Type)
	assert.Equal(t, withLink.PaymentURL, result.Actions[0].Payload["url"])
}

// TestCallContactStripsPhone проверяет выбор контакта с телефоном.
func TestCallContactStripsPhone(t *testing.T) {
	data := Data{
		Today: testToday,
		Contacts: []models.ServiceContact{
			{Name: "Pipes R Us", ServiceType: "Plumber"},
			{Name: "Bob's Plumbing", ServiceType: "plumber", Phone: "(555) 123-4567"},
			{Name: "Other Plumber", ServiceType: "plumber", Phone: "555 000 0000"},
		},
	}

	result := ParseAndExecute("call the plumber", data)

	require.Len(t, result.Actions, 1)
	assert.Equal(t, ActionCall, result.Actions[0].Type)
	assert.Equal(t, "5551234567", result.Actions[0].Payload["phone"])
	assert.Contains(t, result.Answer, "Bob's Plumbing")
}

// TestCallContactNotFound проверяет ответ без подходящего контакта.
func TestCallContactNotFound(t *testing.T) {
	result := ParseAndExecute("call the electrician", Data{Today: testToday})
	assert.Contains(t, result.Answer, "couldn't find")
}

// TestShoeSizeLatestRecord проверяет выбор последней записи роста.
func TestShoeSizeLatestRecord(t *testing.T) {
	data := Data{
		Today: testToday,
		GrowthRecords: []models.GrowthRecord{
			{PersonName: "Emma", RecordDate: dates.AddDays(testToday, -90), ShoeSize: "10"},
			{PersonName: "Emma", RecordDate: dates.AddDays(testToday, -10), ShoeSize: "11"},
			{PersonName: "Liam", RecordDate: dates.AddDays(testToday, -1), ShoeSize: "4"},
		},
	}

	result := ParseAndExecute("what's emma's shoe size", data)
	assert.Contains(t, result.Answer, "Emma's shoe size is 11")
}

// TestShoeSizeMissing проверяет случаи без размера и без записей.
func TestShoeSizeMissing(t *testing.T) {
	data := Data{
		Today:         testToday,
		GrowthRecords: []models.GrowthRecord{{PersonName: "Noah", RecordDate: testToday}},
	}

	result := ParseAndExecute("noah's shoe size", data)
	assert.Contains(t, result.Answer, "not recorded")

	result = ParseAndExecute("ava's shoe size", data)
	assert.Contains(t, result.Answer, "Ava")
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "Add record", result.Actions[0].Label)
}

// TestSpendingSummary проверяет итог и поиск категории.
func TestSpendingSummary(t *testing.T) {
	data := Data{
		Today: testToday,
		ThisMonth: household.Spending{
			TotalCents: 50000,
			ByCategory: []household.CategoryTotal{
				{Category: "Dining", TotalCents: 12000},
				{Category: "Groceries", TotalCents: 38000},
			},
		},
		LastMonth: household.Spending{TotalCents: 42000},
	}

	assert.Contains(t, ParseAndExecute("how much did we spend on groceries", data).Answer, "$380.00")
	assert.Contains(t, ParseAndExecute("how much did we spend this month", data).Answer, "$500.00")
	assert.Contains(t, ParseAndExecute("how much did we spend last month", data).Answer, "$420.00")
	assert.Contains(t, ParseAndExecute("how much did we spend on travel", data).Answer, "couldn't find")
}

// TestRegistrationDue проверяет список дат регистрации.
func TestRegistrationDue(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	data := Data{
		Today: testToday,
		Vehicles: []models.Vehicle{
			{Year: 2019, Make: "Honda", Model: "Civic", RegistrationExpiry: &expiry},
			{Make: "Ford", Model: "F-150"},
		},
	}

	result := ParseAndExecute("registration due", data)
	assert.Equal(t, "2019 Honda Civic: registration due Jun 1, 2026", result.Answer)

	empty := ParseAndExecute("registration due", Data{Today: testToday})
	assert.NotEmpty(t, empty.Answer)
	require.Len(t, empty.Actions, 1)
	assert.Equal(t, ActionNavigate, empty.Actions[0].Type)
}

// TestSearchFallback проверяет статический ответ поиска.
func TestSearchFallback(t *testing.T) {
	result := ParseAndExecute("where did I put the warranty", Data{Today: testToday})
	assert.Equal(t, searchPrompt, result.Answer)
	assert.Empty(t, result.Actions)
}

// TestBuildSearchResultAnswer проверяет сводку поиска.
func TestBuildSearchResultAnswer(t *testing.T) {
	counts := []SearchCount{
		{Kind: "bills", Singular: "bill", Plural: "bills", Count: 2},
		{Kind: "documents", Singular: "document", Plural: "documents", Count: 0},
		{Kind: "pets", Singular: "pet", Plural: "pets", Count: 1},
	}
	assert.Equal(t, "I found 2 bills, 1 pet.", BuildSearchResultAnswer(counts))

	counts[0].Count = 0
	counts[2].Count = 0
	assert.Equal(t, "I didn't find anything matching that.", BuildSearchResultAnswer(counts))
	assert.Equal(t, "I didn't find anything matching that.", BuildSearchResultAnswer(nil))
}

// TestNewDataFromContext проверяет перенос снимка в данные исполнителя.
func TestNewDataFromContext(t *testing.T) {
	hc := household.Context{
		Today:           testToday,
		Bills:           []models.Bill{pendingBill("Rent", 1, 100000)},
		MonthlySpending: household.Spending{TotalCents: 10},
	}

	data := NewData(hc)
	assert.Equal(t, testToday, data.Today)
	assert.Len(t, data.Bills, 1)
	assert.Equal(t, int64(10), data.ThisMonth.TotalCents)
}
