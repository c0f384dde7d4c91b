package file

import (
	"context"

	"survey-match-service/internal/domain"
)

// QuestionBank reads the question dataset from a JSON file on every load.
type QuestionBank struct {
	path string
}

func NewQuestionBank(path string) *QuestionBank {
	return &QuestionBank{path: path}
}

// LoadQuestions returns no questions for an empty file. A missing file is a
// storage error: the dataset is expected to be provisioned with the service.
func (b *QuestionBank) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := readDocument(b.path, false)
	if err != nil {
		return nil, domain.NewStorageError("read questions", err)
	}
	return domain.DecodeQuestions(b.path, data)
}
