package domain

// MiroirCalmaID identifies the built-in qualification quiz.
const MiroirCalmaID = "miroir-calma"

// Ordinals read by the scoring engine.
const (
	OrdinalReceptionRate = 4
	OrdinalGroupHandling = 6
	OrdinalGroupSpend    = 7
	OrdinalHoursLost     = 9
)

// MiroirCalmaScript returns the fixed eleven-screen script.
func MiroirCalmaScript() Script {
	return Script{
		ID:    MiroirCalmaID,
		Title: "Miroir CALMA",
		Screens: []Screen{
			{
				Ordinal:  0,
				Kind:     KindIntro,
				Prompt:   "Miroir CALMA",
				Subtitle: "3 minutes pour comprendre ce qui pèse vraiment sur votre établissement.",
			},
			{
				Ordinal: 1,
				Kind:    KindSingle,
				Prompt:  "Votre établissement, c'est plutôt…",
				Options: []string{
					"Un lieu vivant où tout repose sur l'équipe du jour",
					"Un endroit soigné, mais difficile à garder fluide",
					"Un restaurant reconnu mais sous tension",
					"Un établissement qui tourne, mais pourrait mieux convertir",
					"Une maison de qualité qui manque de structure",
				},
			},
			{
				Ordinal: 2,
				Kind:    KindSingle,
				Prompt:  "Quand un client appelle ou écrit, cela ressemble le plus à…",
				Options: []string{
					"On répond, mais souvent trop tard",
					"Ça tombe toujours pendant le rush",
					"Je dois souvent m'en occuper moi-même",
					"On répond quand on peut",
					"Honnêtement : on manque des demandes",
				},
			},
			{
				Ordinal:  3,
				Kind:     KindMulti,
				Prompt:   "Ce qui vous pèse le plus dans cette partie :",
				Subtitle: "(Vous pouvez en sélectionner plusieurs)",
				Options: []string{
					"Rater des demandes simples faute de temps",
					"Les messages hors horaires",
					"Revenir sur des conversations en retard",
					"C'est toujours dans l'urgence",
					"Compenser une organisation inexistante",
				},
			},
			{
				Ordinal: 4,
				Kind:    KindSlider,
				Prompt:  "Sur 10 demandes reçues, combien obtiennent une réponse ?",
				Min:     0,
				Max:     10,
			},
			{
				Ordinal: 5,
				Kind:    KindSingle,
				Prompt:  "Pour les groupes et événements :",
				Options: []string{
					"On en reçoit, mais c'est difficile à traiter",
					"On en reçoit, mais on convertit très peu",
					"On en reçoit peu",
					"On ne traite plus ces demandes",
					"On aimerait en avoir, mais c'est trop de charge",
				},
			},
			{
				Ordinal: 6,
				Kind:    KindSingle,
				Prompt:  "Votre gestion des demandes importantes ressemble le plus à…",
				Options: []string{
					"Ça passe après le service",
					"On répond tardivement",
					"On oublie parfois",
					"Personne n'est dédié",
					"Aucune méthode aujourd'hui",
				},
			},
			{
				Ordinal: 7,
				Kind:    KindSingle,
				Prompt:  "Panier moyen d'un groupe chez vous :",
				Options: []string{
					"300–500 €",
					"500–800 €",
					"800–1 200 €",
					"1 200 € +",
				},
			},
			{
				Ordinal: 8,
				Kind:    KindSingle,
				Prompt:  "Ce qui vous épuise le plus au quotidien :",
				Options: []string{
					"Tout gérer en même temps",
					"Faire le travail de deux personnes",
					"La désorganisation permanente",
					"Les demandes qui s'empilent",
					"Courir après les informations",
				},
			},
			{
				Ordinal: 9,
				Kind:    KindSingle,
				Prompt:  "Temps perdu chaque semaine en messages, coordination, rattrapage :",
				Options: []string{
					"0–5 heures",
					"5–10 heures",
					"10–20 heures",
					"20+ heures",
				},
			},
			{
				Ordinal:  10,
				Kind:     KindResults,
				Prompt:   "Votre reflet est clair.",
				Subtitle: "Vous n'êtes pas dépassé : vous êtes surchargé.",
			},
		},
	}
}
