package crawler

import "fmt"

// StoryError is a fatal failure while traversing one story.
type StoryError struct {
	// StoryID is the story being traversed.
	StoryID string

	// Err is the underlying session or context error.
	Err error
}

// Error implements error.
func (e *StoryError) Error() string {
	return fmt.Sprintf("story %s: %v", e.StoryID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoryError) Unwrap() error {
	return e.Err
}

func storyError(id string, err error) error {
	if err == nil {
		return nil
	}
	return &StoryError{StoryID: id, Err: err}
}
