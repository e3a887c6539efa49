package domain

// State is a tender lifecycle state as published by the upstream API.
type State struct {
	Code        int
	Description string
}

// StateActive is the upstream code for published, still-open tenders.
const StateActive = 5

// officialStates is the published code dictionary for Mercado Público
// tender states. Codes outside the dictionary fall back to whatever
// description the API supplied.
var officialStates = map[int]string{
	5:  "Publicada",
	6:  "Cerrada",
	7:  "Desierta",
	8:  "Adjudicada",
	15: "Revocada",
	16: "Suspendida",
}

// StateDescription resolves a state code to its official description,
// falling back to the API-supplied text for unseen codes.
func StateDescription(code int, apiDescription string) string {
	if desc, ok := officialStates[code]; ok {
		return desc
	}
	if apiDescription != "" {
		return apiDescription
	}
	return "Desconocido"
}
