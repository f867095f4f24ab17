package models

// StudyStats is the global reporting view over the whole card pool.
type StudyStats struct {
	TotalCards       int                `json:"total_cards"`
	StudiedToday     int                `json:"studied_today"`
	DueToday         int                `json:"due_today"`
	NewToday         int                `json:"new_today"`
	Streak           int                `json:"streak"`
	AverageAccuracy  float64            `json:"average_accuracy"`
	TotalStudyTime   float64            `json:"total_study_time"` // minutes
	CategoryProgress []CategoryProgress `json:"category_progress"`
}

// CategoryProgress is derived per category; categories with zero cards are
// omitted from output.
type CategoryProgress struct {
	Category        Category `json:"category"`
	TotalCards      int      `json:"total_cards"`
	MasteredCards   int      `json:"mastered_cards"`
	AverageAccuracy float64  `json:"average_accuracy"`
}

// SessionStats summarizes a single session for reporting.
type SessionStats struct {
	TotalTime           float64     `json:"total_time"` // seconds, 0 while the session is open
	TotalCards          int         `json:"total_cards"`
	CorrectCount        int         `json:"correct_count"`
	AverageResponseTime float64     `json:"average_response_time"`
	HintsUsed           int         `json:"hints_used"`
	QualityDistribution map[int]int `json:"quality_distribution"`
}
