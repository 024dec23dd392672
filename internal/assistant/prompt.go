package assistant

import (
	"fmt"
	"strings"

	"example.com/household-assistant/internal/command"
	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/format"
	"example.com/household-assistant/internal/household"
	"example.com/household-assistant/internal/models"
)

const maxPromptRows = 25

// BuildSystemPrompt renders the household snapshot the model answers from.
// Bill ids are included so that mark_paid can be called unambiguously.
func BuildSystemPrompt(hc household.Context) string {
	var b strings.Builder

	b.WriteString("You are a helpful household assistant. Answer briefly using only the household data below. ")
	b.WriteString("Use the tools to make changes; never claim a change was made unless a tool result confirms it. ")
	b.WriteString("Dates use YYYY-MM-DD.\n\n")
	fmt.Fprintf(&b, "Today: %s\n", dates.Format(hc.Today))

	section(&b, "Bills", hc.Bills, func(bill models.Bill) string {
		line := fmt.Sprintf("%s [id %s] %s due %s, %s", bill.Name, bill.ID, format.Money(bill.AmountCents), dates.Format(bill.DueDate), bill.Status)
		if bill.Provider != "" {
			line += ", provider " + bill.Provider
		}
		return line
	})
	section(&b, "Upcoming appointments", hc.Appointments, func(appointment models.Appointment) string {
		line := fmt.Sprintf("%s on %s", appointment.Title, dates.Format(appointment.AppointmentDate))
		if appointment.AppointmentTime != nil {
			line += " at " + *appointment.AppointmentTime
		}
		if appointment.Location != "" {
			line += " (" + appointment.Location + ")"
		}
		return line
	})
	section(&b, "Vehicles", hc.Vehicles, func(vehicle models.Vehicle) string {
		line := command.VehicleLabel(vehicle)
		if vehicle.RegistrationExpiry != nil {
			line += ", registration due " + dates.Format(*vehicle.RegistrationExpiry)
		}
		return line
	})
	section(&b, "Pets", hc.Pets, func(pet models.Pet) string {
		parts := nonEmpty(pet.Species, pet.Breed)
		if pet.VetName != "" {
			parts = append(parts, "vet "+pet.VetName)
		}
		if len(parts) == 0 {
			return pet.Name
		}
		return pet.Name + " (" + strings.Join(parts, ", ") + ")"
	})
	section(&b, "Insurance", hc.InsurancePolicies, func(policy models.InsurancePolicy) string {
		line := fmt.Sprintf("%s with %s, premium %s", policy.PolicyType, policy.Provider, format.Money(policy.PremiumCents))
		if policy.RenewalDate != nil {
			line += ", renews " + dates.Format(*policy.RenewalDate)
		}
		return line
	})
	section(&b, "Medical records", hc.MedicalRecords, func(record models.MedicalRecord) string {
		line := fmt.Sprintf("%s: %s (%s)", record.PersonName, record.Title, record.RecordType)
		if record.RecordDate != nil {
			line += " on " + dates.Format(*record.RecordDate)
		}
		return line
	})
	section(&b, "Service contacts", hc.ServiceContacts, func(contact models.ServiceContact) string {
		return strings.Join(append([]string{contact.Name + " (" + contact.ServiceType + ")"}, nonEmpty(contact.Phone, contact.Email)...), ", ")
	})
	section(&b, "Growth records", hc.GrowthRecords, func(record models.GrowthRecord) string {
		line := fmt.Sprintf("%s on %s", record.PersonName, dates.Format(record.RecordDate))
		if record.ShoeSize != "" {
			line += ", shoe size " + record.ShoeSize
		}
		return line
	})

	fmt.Fprintf(&b, "\nSpending this month: %s\n", format.Money(hc.MonthlySpending.TotalCents))
	for _, total := range hc.MonthlySpending.ByCategory {
		fmt.Fprintf(&b, "- %s: %s\n", total.Category, format.Money(total.TotalCents))
	}
	fmt.Fprintf(&b, "Spending last month: %s\n", format.Money(hc.LastMonthSpending.TotalCents))

	if len(hc.ShoppingList) == 0 {
		b.WriteString("\nShopping list: empty\n")
	} else {
		fmt.Fprintf(&b, "\nShopping list: %s\n", strings.Join(hc.ShoppingList, ", "))
	}

	return b.String()
}

func section[T any](b *strings.Builder, title string, rows []T, line func(T) string) {
	fmt.Fprintf(b, "\n%s:", title)
	if len(rows) == 0 {
		b.WriteString(" none\n")
		return
	}
	b.WriteString("\n")

	for i, row := range rows {
		if i == maxPromptRows {
			fmt.Fprintf(b, "- ... and %d more\n", len(rows)-maxPromptRows)
			break
		}
		fmt.Fprintf(b, "- %s\n", line(row))
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
