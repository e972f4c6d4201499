package schema

import (
	"regexp"
	"strings"
	"time"
)

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "uncategorized"

// Status is the completion state of a task.
type Status string

const (
	StatusNew  Status = "new"
	StatusDone Status = "done"
)

// IsValid reports whether s is one of the two persisted statuses.
func (s Status) IsValid() bool {
	return s == StatusNew || s == StatusDone
}

// Task is a single persisted task row.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	DueDate     string    `json:"due_date" yaml:"due_date"` // YYYY-MM-DD
	Category    string    `json:"category" yaml:"category"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Deleted     bool      `json:"deleted" yaml:"deleted"`
}

// NewTask is the input accepted when creating a task. ID, CreatedAt and
// Deleted are assigned by the store.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Category    string `json:"category,omitempty"`
	Status      Status `json:"status,omitempty"`
}

// ListFilter narrows ListTasks results. Every set field is ANDed; the zero
// value lists all tasks that are not soft-deleted.
type ListFilter struct {
	// Category filters by exact category (empty = all categories)
	Category string
	// Status filters by status (empty = all statuses)
	Status Status
	// IncludeDeleted also returns soft-deleted tasks
	IncludeDeleted bool
}

// ValidationError reports task input that was rejected before any write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks the fields shared by the create and update paths.
//
// The due date check is purely syntactic: "2024-02-31" is accepted.
func Validate(title, description, dueDate string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Reason: "title required"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Reason: "description required"}
	}
	if !dueDatePattern.MatchString(dueDate) {
		return &ValidationError{Reason: "invalid date format"}
	}
	return nil
}

// Validate checks the create input. An explicit status must be new or done.
func (n *NewTask) Validate() error {
	if err := Validate(n.Title, n.Description, n.DueDate); err != nil {
		return err
	}
	if n.Status != "" && !n.Status.IsValid() {
		return &ValidationError{Reason: "invalid status"}
	}
	return nil
}

// SetDefaults trims text fields and fills in category and status.
func (n *NewTask) SetDefaults() {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	if strings.TrimSpace(n.Category) == "" {
		n.Category = DefaultCategory
	}
	if n.Status == "" {
		n.Status = StatusNew
	}
}

// Validate applies the same checks as creation to an existing task.
func (t *Task) Validate() error {
	return Validate(t.Title, t.Description, t.DueDate)
}
