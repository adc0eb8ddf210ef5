// Package flow defines questionnaire campaigns as data: an ordered list of
// steps, each with its expected payload kind, prompt, and validator. One
// engine interprets any campaign's step list.
package flow

import "fmt"

type Kind int

const (
	KindText Kind = iota
	KindChoice
	KindAttachment
)

type Choice struct {
	Key   string
	Label string
}

type Step struct {
	// Field names the request column the answer is persisted to.
	Field     string
	Prompt    string
	Kind      Kind
	Skippable bool
	Choices   []Choice
	// Validate returns a user-facing re-prompt message on failure.
	// Only consulted for text steps.
	Validate func(text string) error
	// Transform canonicalizes a valid answer before it is persisted.
	Transform func(text string) string
}

type Campaign struct {
	Name  string
	Title string
	Steps []Step
}

// Step returns the step at index i, or nil when i is past the end
// (the confirm stage).
func (c *Campaign) Step(i int) *Step {
	if i < 0 || i >= len(c.Steps) {
		return nil
	}

	return &c.Steps[i]
}

// FindChoice resolves a choice key on the step, if present.
func (s *Step) FindChoice(key string) (Choice, bool) {
	for _, ch := range s.Choices {
		if ch.Key == key {
			return ch, true
		}
	}

	return Choice{}, false
}

func (s *Step) expects() string {
	switch s.Kind {
	case KindAttachment:
		return "a photo or a file"
	case KindChoice:
		return "one of the buttons below"
	default:
		return "a text message"
	}
}

// WrongPayload is the re-prompt for a message of the wrong payload type.
func (s *Step) WrongPayload() string {
	return fmt.Sprintf("This step expects %s. %s", s.expects(), s.Prompt)
}
