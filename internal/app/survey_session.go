package app

import (
	"context"
	"fmt"
	"sync"

	"survey-match-service/internal/domain"
)

// ChoiceStore is the slice of UserStore a survey session depends on.
type ChoiceStore interface {
	LoadAll(ctx context.Context) (*domain.UserDirectory, error)
	Upsert(ctx context.Context, username string, choices domain.ChoiceRecord) error
}

// SurveySession is one user's progression through a snapshot of the question
// set. Transitions:
//
//	Uninitialized -Start-> InProgress -Advance past last-> Terminal -Commit-> Closed
//	Uninitialized -Start (no questions)-> Empty
//
// Retreat on the first question records the answer and stays on it.
// A failed Commit leaves the session Terminal so it can be retried.
type SurveySession struct {
	bank  QuestionBank
	users ChoiceStore

	mu        sync.Mutex
	username  string
	questions []domain.Question
	current   int
	choices   domain.ChoiceRecord
	state     domain.State
}

func NewSurveySession(bank QuestionBank, users ChoiceStore) *SurveySession {
	return &SurveySession{bank: bank, users: users, state: domain.StateUninitialized}
}

// Start snapshots the question set and seeds choices from the user's stored
// record. It returns domain.ErrNoQuestions, leaving the session Empty, when
// there is nothing to ask.
func (s *SurveySession) Start(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateUninitialized {
		return &domain.InvalidStateError{Op: "start", State: s.state}
	}
	if username == "" {
		return domain.ErrInvalidUsername
	}

	questions, err := s.bank.LoadQuestions(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		s.username = username
		s.state = domain.StateEmpty
		return domain.ErrNoQuestions
	}

	dir, err := s.users.LoadAll(ctx)
	if err != nil {
		return err
	}
	stored, _ := dir.Get(username)

	s.username = username
	s.questions = snapshotQuestions(questions)
	s.choices = seedChoices(s.questions, stored)
	s.current = 0
	s.state = domain.StateInProgress
	return nil
}

// CurrentQuestion returns the question at the cursor.
func (s *SurveySession) CurrentQuestion() (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateInProgress {
		return domain.Question{}, &domain.InvalidStateError{Op: "current question", State: s.state}
	}
	return s.questions[s.current], nil
}

// RecordAnswer stores option for the current question; domain.NoSelection clears it.
func (s *SurveySession) RecordAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordLocked("record answer", option)
}

// Advance records option and moves to the next question, becoming Terminal
// after the last one.
func (s *SurveySession) Advance(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recordLocked("advance", option); err != nil {
		return err
	}
	s.current++
	if s.current == len(s.questions) {
		s.state = domain.StateTerminal
	}
	return nil
}

// Retreat records option and moves back one question, never before the first.
func (s *SurveySession) Retreat(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.recordLocked("retreat", option); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// SelectedOption returns the stored choice for the question at index; the
// boolean is false when nothing is selected or index is out of range.
func (s *SurveySession) SelectedOption(index int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked(index)
}

// Commit persists the session's choices. Only valid once Terminal.
func (s *SurveySession) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateTerminal {
		return &domain.InvalidStateError{Op: "commit", State: s.state}
	}
	if err := s.users.Upsert(ctx, s.username, s.choices.Clone()); err != nil {
		return err
	}
	s.state = domain.StateClosed
	return nil
}

func (s *SurveySession) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *SurveySession) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SurveySession) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *SurveySession) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == domain.StateTerminal || s.state == domain.StateClosed
}

// Choices returns a copy of the answers recorded so far.
func (s *SurveySession) Choices() domain.ChoiceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choices.Clone()
}

// View renders the session for the presentation layer.
func (s *SurveySession) View(vertical bool) (domain.SurveyView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := domain.SurveyView{Username: s.username, Vertical: vertical}
	switch s.state {
	case domain.StateEmpty:
		view.Status = domain.StatusEmpty
	case domain.StateTerminal, domain.StateClosed:
		view.Status = domain.StatusCompleted
	case domain.StateInProgress:
		q := s.questions[s.current]
		view.Status = domain.StatusInProgress
		view.Page = s.current + 1
		view.Total = len(s.questions)
		view.Question = q.Text
		view.Choices = append([]string(nil), q.Choices...)
		if selected, ok := s.selectedLocked(s.current); ok {
			view.Selected = &selected
		}
	default:
		return domain.SurveyView{}, &domain.InvalidStateError{Op: "view", State: s.state}
	}
	return view, nil
}

func (s *SurveySession) recordLocked(op string, option int) error {
	if s.state != domain.StateInProgress {
		return &domain.InvalidStateError{Op: op, State: s.state}
	}
	q := s.questions[s.current]
	if option == domain.NoSelection {
		delete(s.choices, q.ID)
		return nil
	}
	if option < 0 || option >= len(q.Choices) {
		return fmt.Errorf("%w: option %d for question %s", domain.ErrInvalidAnswer, option, q.ID)
	}
	s.choices[q.ID] = option
	return nil
}

func (s *SurveySession) selectedLocked(index int) (int, bool) {
	if index < 0 || index >= len(s.questions) {
		return 0, false
	}
	v, ok := s.choices[s.questions[index].ID]
	return v, ok
}

func snapshotQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		out[i] = domain.Question{
			ID:      q.ID,
			Text:    q.Text,
			Choices: append([]string(nil), q.Choices...),
		}
	}
	return out
}

// seedChoices keeps only stored answers that still fit the snapshot.
func seedChoices(questions []domain.Question, stored domain.ChoiceRecord) domain.ChoiceRecord {
	seeded := make(domain.ChoiceRecord, len(stored))
	for _, q := range questions {
		if v, ok := stored[q.ID]; ok && v >= 0 && v < len(q.Choices) {
			seeded[q.ID] = v
		}
	}
	return seeded
}
