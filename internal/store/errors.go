package store

import "errors"

var (
	// ErrStorageRead marks persisted data that could not be decoded. It is logged and
	// recovered as an empty collection, never returned to callers.
	ErrStorageRead = errors.New("stored data is not a valid JSON array")

	// ErrInvalidFormat is returned when an import payload is not a JSON array.
	ErrInvalidFormat = errors.New("import payload must be a JSON array of questions")

	ErrInvalidQuestion   = errors.New("question requires a non-empty id and text")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrEmptyCategory     = errors.New("category label must not be empty")
	ErrCategoryExists    = errors.New("category already exists")
	ErrProtectedCategory = errors.New("the Other category cannot be renamed or removed")
)
