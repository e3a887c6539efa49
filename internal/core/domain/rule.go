package domain

// KeywordRule is a weighted phrase used to score tender text.
// Each weight applies to one text field independently; a zero weight
// disables the rule for that field.
type KeywordRule struct {
	ID       int64
	Phrase   string
	Category string

	TitleWeight       int
	DescriptionWeight int
	ProductWeight     int
}
