package live

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

var openingQuestions = []string{
	"To start us off, could you please tell me a little bit about yourself?",
	"Thank you for joining me. Why don't we begin with you walking me through your resume?",
	"Let's get started. What interests you about this field and the type of role you're seeking?",
	"To begin, can you tell me what you know about our company and what prompted you to apply?",
}

const (
	roleReminderResponse = "My role is to act as your interview coach to help you practice. Let's focus on that! Tell me, what's your greatest strength?"
	thanksResponse       = "You're welcome! Let's move on to the next question."
	proceedResponse      = "Great. Let's proceed. Can you describe a time you had to handle a difficult colleague?"
)

var metaPhrases = []string{"who are you", "what are you", "are you an ai", "are you a bot"}

var acknowledgements = map[string]bool{
	"okay":   true,
	"ok":     true,
	"yes":    true,
	"got it": true,
	"right":  true,
}

// CannedResponse answers short acknowledgements and questions about the
// coach itself without calling the model.
func CannedResponse(message string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))

	for _, phrase := range metaPhrases {
		if strings.Contains(msg, phrase) {
			return roleReminderResponse, true
		}
	}
	length := utf8.RuneCountInString(msg)
	if length < 15 && strings.Contains(msg, "thank") {
		return thanksResponse, true
	}
	if length < 10 && acknowledgements[msg] {
		return proceedResponse, true
	}
	return "", false
}

// OpeningQuestion picks one of the opening questions. pick returns an index
// in [0, n); nil means uniformly random.
func OpeningQuestion(pick func(n int) int) string {
	if pick == nil {
		pick = rand.IntN
	}
	return openingQuestions[pick(len(openingQuestions))]
}
