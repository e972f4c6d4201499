package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("aborted")

// TaskForm holds the editable fields of a task. Fields already set are
// shown pre-filled.
type TaskForm struct {
	Title       string
	Description string
	DueDate     string
	Category    string
}

// Missing reports whether any required field is empty.
func (f *TaskForm) Missing() bool {
	return strings.TrimSpace(f.Title) == "" ||
		strings.TrimSpace(f.Description) == "" ||
		strings.TrimSpace(f.DueDate) == ""
}

// RunTaskForm prompts for the task fields on the terminal. The due date
// field accepts natural language and is normalized on submit.
func RunTaskForm(f *TaskForm, now time.Time) error {
	required := func(name string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(name + " is required")
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&f.Title).
				Validate(required("title")),
			huh.NewText().
				Title("Description").
				Value(&f.Description).
				Validate(required("description")),
			huh.NewInput().
				Title("Due date").
				Description("YYYY-MM-DD, or e.g. \"tomorrow\", \"next friday\"").
				Value(&f.DueDate).
				Validate(func(s string) error {
					if err := required("due date")(s); err != nil {
						return err
					}
					_, err := ParseDueDate(s, now)
					return err
				}),
			huh.NewInput().
				Title("Category").
				Placeholder("uncategorized").
				Value(&f.Category),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}

	due, err := ParseDueDate(f.DueDate, now)
	if err != nil {
		return err
	}
	f.DueDate = due
	return nil
}
