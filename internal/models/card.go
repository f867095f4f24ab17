package models

// Category classifies a card into one of the fixed study areas.
type Category string

const (
	CategoryFundamentals   Category = "fundamentals"
	CategoryArchitecture   Category = "architecture"
	CategoryTraining       Category = "training"
	CategoryApplications   Category = "applications"
	CategoryEvaluation     Category = "evaluation"
	CategoryImplementation Category = "implementation"
	CategoryEthics         Category = "ethics"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryFundamentals,
		CategoryArchitecture,
		CategoryTraining,
		CategoryApplications,
		CategoryEvaluation,
		CategoryImplementation,
		CategoryEthics,
	}
}

// Difficulty is the card's fixed difficulty level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Card is immutable reference data owned by the deck; the scheduler never
// mutates it.
type Card struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags,omitempty"`
	Source     string     `json:"source,omitempty"`
}
