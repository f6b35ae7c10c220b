package domain

// AuditInput carries the full loss-calculator fields. Zero means "not entered".
type AuditInput struct {
	CallsPerDay        float64 `json:"callsPerDay"`
	ResponseRate       float64 `json:"responseRate"`
	ConversionRate     float64 `json:"conversionRate"`
	AverageTicket      float64 `json:"averageTicket"`
	EventsPerMonth     float64 `json:"eventsPerMonth"`
	EventTicket        float64 `json:"eventTicket"`
	NoShowsPerMonth    float64 `json:"noShowsPerMonth"`
	EmployeeHourlyCost float64 `json:"employeeHourlyCost"`
}

// AuditReport is the monthly loss breakdown of the full calculator.
type AuditReport struct {
	Ready                bool    `json:"ready"`
	MonthlyMissedCalls   float64 `json:"monthlyMissedCalls"`
	LostReceptionRevenue float64 `json:"lostReceptionRevenue"`
	LostEventRevenue     float64 `json:"lostEventRevenue"`
	NoShowCost           float64 `json:"noShowCost"`
	MinutesSaved         float64 `json:"minutesSaved"`
	HoursSaved           int     `json:"hoursSaved"`
	MoneySaved           float64 `json:"moneySaved"`
}

// QuickAuditInput carries the three-field mini audit.
type QuickAuditInput struct {
	CallsPerDay   float64 `json:"callsPerDay"`
	ResponseRate  float64 `json:"responseRate"`
	AverageTicket float64 `json:"averageTicket"`
}

// QuickAuditReport is the result of the mini audit.
type QuickAuditReport struct {
	Ready              bool    `json:"ready"`
	MonthlyLostRevenue float64 `json:"monthlyLostRevenue"`
	UncalledClients    float64 `json:"uncalledClients"`
	MissedEvents       int     `json:"missedEvents"`
	NoShows            int     `json:"noShows"`
}

// ProspectEstimate is the teaser shown by the prospecting map; the exact count stays internal.
type ProspectEstimate struct {
	RadiusKm     int    `json:"radiusKm"`
	RadiusMeters int    `json:"radiusMeters"`
	Target       string `json:"target"`
	Teaser       string `json:"teaser"`
}
