package domain

// Organization is a purchasing institution referenced by tenders.
// Rows are created lazily the first time a tender mentions an unseen code.
type Organization struct {
	// Code is the upstream organization code and primary key.
	Code string

	// Name is the display name, captured on first sighting.
	Name string

	// Score is the bias applied on top of text scoring: positive
	// prioritises the institution, negative penalises it.
	Score int
}
