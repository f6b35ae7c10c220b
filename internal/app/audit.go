package app

import (
	"math"

	"calma-service/internal/domain"
)

const (
	missedEventShare  = 0.3
	noShowTicketShare = 0.5
	minutesPerCall    = 3
	quickTicketShare  = 0.3
	quickEventShare   = 0.15
	quickNoShowShare  = 0.08
)

// EstimateAudit computes the full monthly loss breakdown. Ready is false until
// calls, response rate, conversion rate and ticket are all entered.
func EstimateAudit(in domain.AuditInput) domain.AuditReport {
	missedPerDay := in.CallsPerDay * (1 - in.ResponseRate/100)
	monthlyMissed := missedPerDay * daysPerMonth
	minutes := monthlyMissed * minutesPerCall

	return domain.AuditReport{
		Ready:                in.CallsPerDay != 0 && in.ResponseRate != 0 && in.ConversionRate != 0 && in.AverageTicket != 0,
		MonthlyMissedCalls:   monthlyMissed,
		LostReceptionRevenue: monthlyMissed * (in.ConversionRate / 100) * in.AverageTicket,
		LostEventRevenue:     in.EventsPerMonth * missedEventShare * in.EventTicket,
		NoShowCost:           in.NoShowsPerMonth * in.AverageTicket * noShowTicketShare,
		MinutesSaved:         minutes,
		HoursSaved:           round(minutes / 60),
		MoneySaved:           minutes / 60 * in.EmployeeHourlyCost,
	}
}

// EstimateQuickAudit is the three-field variant shown on the landing section.
func EstimateQuickAudit(in domain.QuickAuditInput) domain.QuickAuditReport {
	missedPerDay := in.CallsPerDay * (1 - in.ResponseRate/100)
	monthlyMissed := missedPerDay * daysPerMonth

	return domain.QuickAuditReport{
		Ready:              in.CallsPerDay != 0 && in.ResponseRate != 0 && in.AverageTicket != 0,
		MonthlyLostRevenue: monthlyMissed * in.AverageTicket * quickTicketShare,
		UncalledClients:    monthlyMissed,
		MissedEvents:       int(math.Floor(monthlyMissed * quickEventShare)),
		NoShows:            int(math.Floor(in.CallsPerDay * daysPerMonth * quickNoShowShare)),
	}
}
