package domain

// NoSelection marks a navigation step made without choosing an option.
// Recording it clears any stored choice for the current question.
const NoSelection = -1

// Question is a single survey step with its ordered answer choices.
type Question struct {
	ID      string   `json:"id" validate:"required"`
	Text    string   `json:"question" validate:"required"`
	Choices []string `json:"choices" validate:"min=1"`
}

// UserEntry pairs a username with their recorded choices.
type UserEntry struct {
	Username string
	Choices  ChoiceRecord
}

// Match is one ranked compatibility result.
type Match struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// MatchList is the ranking computed for a single user.
type MatchList struct {
	Username string  `json:"username"`
	Entries  []Match `json:"entries"`
}

// State is the progression state of a survey session.
type State int

const (
	StateUninitialized State = iota
	StateInProgress
	StateTerminal
	StateClosed
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInProgress:
		return "in_progress"
	case StateTerminal:
		return "terminal"
	case StateClosed:
		return "closed"
	case StateEmpty:
		return "empty"
	}
	return "unknown"
}

// SurveyStatus tells the presentation layer which page to render.
type SurveyStatus string

const (
	StatusInProgress SurveyStatus = "in_progress"
	StatusCompleted  SurveyStatus = "completed"
	StatusEmpty      SurveyStatus = "empty"
)

// SurveyView is the render-ready snapshot of a session.
type SurveyView struct {
	Status   SurveyStatus `json:"status"`
	Username string       `json:"username"`
	Page     int          `json:"page,omitempty"` // 1-based
	Total    int          `json:"total,omitempty"`
	Question string       `json:"question,omitempty"`
	Choices  []string     `json:"choices,omitempty"`
	Selected *int         `json:"selected,omitempty"`
	Vertical bool         `json:"isVertical"`
}
