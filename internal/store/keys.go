package store

// Persistence keys. Legacy keys are consulted in order, only while the canonical
// question key is absent.
const (
	QuestionsKey  = "interview_questions_v2"
	CategoriesKey = "interview_categories"
)

// LegacyQuestionKeys lists older question keys from most to least recent.
var LegacyQuestionKeys = []string{
	"interview_questions_v1",
	"interview_questions",
	"questions",
}
