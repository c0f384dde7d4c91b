package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// datasetValidate is shared; validator caches struct metadata per instance.
var datasetValidate = validator.New()

type questionDocument struct {
	Questions []Question `json:"questions" validate:"dive"`
}

type userDocument struct {
	UsersList *UserDirectory `json:"usersList"`
}

// DecodeQuestions parses a question dataset. Blank input yields no questions.
func DecodeQuestions(resource string, data []byte) ([]Question, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Question{}, nil
	}

	var doc questionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewDataFormatError(resource, err)
	}
	if err := datasetValidate.Struct(doc); err != nil {
		return nil, NewDataFormatError(resource, err)
	}

	seen := make(map[string]struct{}, len(doc.Questions))
	for _, q := range doc.Questions {
		if _, dup := seen[q.ID]; dup {
			return nil, NewDataFormatError(resource, fmt.Errorf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = struct{}{}
	}
	if doc.Questions == nil {
		return []Question{}, nil
	}
	return doc.Questions, nil
}

// EncodeQuestions renders questions in the dataset layout.
func EncodeQuestions(questions []Question) ([]byte, error) {
	if questions == nil {
		questions = []Question{}
	}
	return json.Marshal(questionDocument{Questions: questions})
}

// DecodeUsers parses a user dataset. Blank input yields an empty directory;
// anything else that is not a valid document is a DataFormatError.
func DecodeUsers(resource string, data []byte) (*UserDirectory, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewUserDirectory(), nil
	}

	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewDataFormatError(resource, err)
	}
	if doc.UsersList == nil {
		return NewUserDirectory(), nil
	}
	return doc.UsersList, nil
}

// EncodeUsers renders the directory in the dataset layout.
func EncodeUsers(dir *UserDirectory) ([]byte, error) {
	if dir == nil {
		dir = NewUserDirectory()
	}
	return json.Marshal(userDocument{UsersList: dir})
}
