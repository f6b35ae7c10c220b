package voice

// Option is one selectable voice of the demo.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var Options = []Option{
	{ID: "simon", Label: "Gabriel", Description: "Voix masculine, chaleureuse"},
	{ID: "lena", Label: "CALMA", Description: "Voix féminine, professionnelle"},
}

// LookupOption finds the voice option with the given identifier.
func LookupOption(id string) (Option, bool) {
	for _, o := range Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// OptionIDs lists the selectable voice identifiers in display order.
func OptionIDs() []string {
	ids := make([]string, 0, len(Options))
	for _, o := range Options {
		ids = append(ids, o.ID)
	}
	return ids
}

// DefaultVoice is selected before the visitor picks one.
const DefaultVoice = "simon"

// DemoScripts is the text each voice reads in the demo.
var DemoScripts = map[string]string{
	"simon": "Bonjour, bienvenue chez votre établissement. Je suis votre concierge vocal CALMA. " +
		"Je gère vos réservations, modifications et annulations à toute heure. " +
		"Vos clients sont accueillis avec attention, même quand votre équipe est en service. " +
		"Un accueil fluide, à votre image.",
	"lena": "Bonjour, ici CALMA, votre conciergerie de table. Je réponds à vos appels 24 heures sur 24, " +
		"je confirme les réservations et j'envoie les rappels pour éviter les no-shows. " +
		"Votre équipe se concentre sur le service, je m'occupe du reste.",
}
