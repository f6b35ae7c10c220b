package app

import (
	"math"
	"strings"

	"calma-service/internal/domain"
)

const (
	assumedCallsPerDay   = 20
	daysPerMonth         = 30
	valuePerCall         = 25
	weeksPerMonth        = 4
	hourlyCost           = 20
	defaultReceptionRate = 5
	defaultGroupSpend    = 400
	defaultHoursLost     = 8
	defaultOrganization  = 5
)

type phraseWeight struct {
	phrase string
	weight int
}

// Evaluated in order; the first contained phrase wins.
var unconvertedGroupPhrases = []phraseWeight{
	{"convertit très peu", 3},
	{"difficile à traiter", 2},
	{"oublie", 2},
	{"tardivement", 2},
	{"Aucune méthode", 3},
}

var opportunityPhrases = []phraseWeight{
	{"convertit très peu", 8},
	{"difficile à traiter", 7},
	{"oublie", 8},
	{"tardivement", 7},
	{"Aucune méthode", 9},
}

var groupSpendBrackets = map[string]int{
	"300–500 €":   400,
	"500–800 €":   650,
	"800–1 200 €": 1000,
	"1 200 € +":   1500,
}

var hoursLostBrackets = map[string]float64{
	"0–5 heures":   2.5,
	"5–10 heures":  7.5,
	"10–20 heures": 15,
	"20+ heures":   25,
}

var organizationBrackets = map[string]int{
	"0–5 heures":   3,
	"5–10 heures":  5,
	"10–20 heures": 8,
	"20+ heures":   10,
}

// Score computes the ResultSet from answers at ordinals 4, 6, 7 and 9.
// Missing or unrecognized answers fall back to fixed defaults.
func Score(answers domain.Answers) domain.ResultSet {
	rate := receptionRate(answers)
	handling := choiceAt(answers, domain.OrdinalGroupHandling)
	spendLabel := choiceAt(answers, domain.OrdinalGroupSpend)
	hoursLabel := choiceAt(answers, domain.OrdinalHoursLost)

	missedCalls := float64(10-rate) / 10 * assumedCallsPerDay * daysPerMonth
	missedCallRevenue := round(missedCalls * valuePerCall)

	spend, ok := groupSpendBrackets[spendLabel]
	if !ok {
		spend = defaultGroupSpend
	}
	groups := matchPhrase(handling, unconvertedGroupPhrases, 0)
	missedGroupRevenue := groups * spend

	hours, ok := hoursLostBrackets[hoursLabel]
	if !ok {
		hours = defaultHoursLost
	}
	organizationalCost := round(hours * weeksPerMonth * hourlyCost)

	organization, ok := organizationBrackets[hoursLabel]
	if !ok {
		organization = defaultOrganization
	}
	scores := domain.CategoryScores{
		Reception:    10 - rate,
		Opportunity:  matchPhrase(handling, opportunityPhrases, 0),
		Organization: organization,
	}

	return domain.ResultSet{
		ReceptionRate:      rate,
		MissedCallRevenue:  missedCallRevenue,
		AverageGroupSpend:  spend,
		UnconvertedGroups:  groups,
		MissedGroupRevenue: missedGroupRevenue,
		HoursLost:          hours,
		HoursLostRounded:   round(hours),
		OrganizationalCost: organizationalCost,
		Total:              missedCallRevenue + missedGroupRevenue + organizationalCost,
		Scores:             scores,
		Chart: []domain.ChartSlice{
			{Name: "Accueil", Value: scores.Reception},
			{Name: "Opportunités", Value: scores.Opportunity},
			{Name: "Organisation", Value: scores.Organization},
		},
		Recommendations: recommend(scores),
	}
}

func recommend(scores domain.CategoryScores) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, 3)
	if scores.Reception >= 5 {
		recs = append(recs, domain.Recommendation{
			Category: "reception",
			Title:    "Réception / Appels",
			Text:     "Vous récupérez instantanément 100% des demandes sans surcharge.",
		})
	}
	if scores.Opportunity >= 6 {
		recs = append(recs, domain.Recommendation{
			Category: "opportunity",
			Title:    "Groupes / Opportunités",
			Text:     "Vous captez les demandes à forte valeur sans effort.",
		})
	}
	if scores.Organization >= 5 {
		recs = append(recs, domain.Recommendation{
			Category: "organization",
			Title:    "Organisation / Charge mentale",
			Text:     "Vous retrouvez temps, ordre, énergie.",
		})
	}
	return recs
}

// receptionRate defaults to 5 when the slider was never touched; an answer of
// another kind reads as 0.
func receptionRate(answers domain.Answers) int {
	value, ok := answers[domain.OrdinalReceptionRate]
	if !ok {
		return defaultReceptionRate
	}
	if value.Kind != domain.KindSlider {
		return 0
	}
	switch {
	case value.Number < 0:
		return 0
	case value.Number > 10:
		return 10
	}
	return value.Number
}

func choiceAt(answers domain.Answers, ordinal int) string {
	value, ok := answers[ordinal]
	if !ok || value.Kind != domain.KindSingle {
		return ""
	}
	return value.Choice
}

func matchPhrase(label string, table []phraseWeight, fallback int) int {
	if label == "" {
		return fallback
	}
	for _, entry := range table {
		if strings.Contains(label, entry.phrase) {
			return entry.weight
		}
	}
	return fallback
}

func round(v float64) int {
	return int(math.Round(v))
}
