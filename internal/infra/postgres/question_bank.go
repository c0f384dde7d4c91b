package postgres

import (
	"context"
	"fmt"

	"survey-match-service/internal/domain"
)

// QuestionBank loads the question dataset from the questions document.
type QuestionBank struct {
	docs *Documents
}

func NewQuestionBank(docs *Documents) *QuestionBank {
	return &QuestionBank{docs: docs}
}

func (b *QuestionBank) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	raw, err := b.docs.Load(ctx, QuestionsDocument)
	if err != nil {
		return nil, domain.NewStorageError("load questions", err)
	}
	return domain.DecodeQuestions(QuestionsDocument, raw)
}

// ImportQuestions validates raw as a question dataset and stores it.
func (b *QuestionBank) ImportQuestions(ctx context.Context, raw []byte) (int, error) {
	questions, err := domain.DecodeQuestions("import", raw)
	if err != nil {
		return 0, err
	}
	data, err := domain.EncodeQuestions(questions)
	if err != nil {
		return 0, fmt.Errorf("encode questions: %w", err)
	}
	if err := b.docs.Save(ctx, QuestionsDocument, data); err != nil {
		return 0, domain.NewStorageError("save questions", err)
	}
	return len(questions), nil
}
