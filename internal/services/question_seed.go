package services

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"elevateu/hr-coach/internal/models"
)

type questionSeedFile struct {
	Questions []questionSeed `yaml:"questions"`
}

type questionSeed struct {
	Question    string `yaml:"question"`
	Category    string `yaml:"category"`
	ModelAnswer string `yaml:"model_answer"`
}

// LoadQuestionSeed parses a YAML question bank. Every entry needs a question
// and a model answer; duplicate questions are rejected.
func LoadQuestionSeed(r io.Reader) ([]models.QuestionBank, error) {
	var file questionSeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("question seed is empty")
		}
		return nil, fmt.Errorf("failed to parse question seed: %w", err)
	}

	seen := make(map[string]bool, len(file.Questions))
	questions := make([]models.QuestionBank, 0, len(file.Questions))
	for i, q := range file.Questions {
		text := strings.TrimSpace(q.Question)
		answer := strings.TrimSpace(q.ModelAnswer)
		if text == "" || answer == "" {
			return nil, fmt.Errorf("question seed entry %d: question and model_answer are required", i+1)
		}
		if len(text) > 255 {
			return nil, fmt.Errorf("question seed entry %d: question is longer than 255 characters", i+1)
		}
		if seen[text] {
			return nil, fmt.Errorf("question seed entry %d: duplicate question %q", i+1, text)
		}
		seen[text] = true

		questions = append(questions, models.QuestionBank{
			QuestionText: text,
			ModelAnswer:  answer,
			Category:     strings.TrimSpace(q.Category),
		})
	}
	return questions, nil
}
