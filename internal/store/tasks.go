package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ideaspark/ideaspark/internal/store/db"
	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// CreateTask validates input, assigns an id and creation time, and inserts
// the task with deleted = false.
//
// The returned task carries every generated field. CreatedAt is truncated to
// milliseconds so it equals what ListTasks later reads back.
func (s *Store) CreateTask(ctx context.Context, input schema.NewTask) (*schema.Task, error) {
	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}
	input.SetDefaults()

	task := &schema.Task{
		ID:          s.newID(),
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Category:    input.Category,
		Status:      input.Status,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		Deleted:     false,
	}

	if err := database.InsertTask(ctx, task); err != nil {
		s.logger.Printf("Error creating task: %v", err)
		return nil, persistenceErr("create task", err)
	}

	s.logger.Printf("Created task: %s (%s)", task.ID, task.Title)
	created := *task
	s.notify(ctx, EventCreated, task.ID, &created)
	return task, nil
}

// ListTasks returns tasks matching filter, newest first. Soft-deleted tasks
// are only included when filter.IncludeDeleted is set.
//
// Unlike every other operation, ListTasks initializes the store itself when
// needed instead of failing with ErrNotInitialized.
func (s *Store) ListTasks(ctx context.Context, filter schema.ListFilter) ([]*schema.Task, error) {
	if !s.Initialized() {
		if err := s.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	tasks, err := database.ListTasks(ctx, filter)
	if err != nil {
		s.logger.Printf("Error fetching tasks: %v", err)
		return nil, persistenceErr("fetch tasks", err)
	}
	return tasks, nil
}

// GetTask returns one task by id, whether or not it is soft-deleted.
func (s *Store) GetTask(ctx context.Context, id string) (*schema.Task, error) {
	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	task, err := database.GetTask(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, persistenceErr("get task", err)
	}
	return task, nil
}

// UpdateTask rewrites the title, description and due date of task.ID.
// Category, status and the deleted flag are never changed here.
func (s *Store) UpdateTask(ctx context.Context, task *schema.Task) error {
	database, err := s.handle()
	if err != nil {
		return err
	}

	if err := task.Validate(); err != nil {
		return err
	}

	n, err := database.UpdateTaskFields(ctx, task.ID,
		strings.TrimSpace(task.Title),
		strings.TrimSpace(task.Description),
		task.DueDate,
	)
	if err != nil {
		s.logger.Printf("Error updating task: %v", err)
		return persistenceErr("update task", err)
	}
	if n == 0 {
		return notFound(task.ID)
	}

	s.logger.Printf("Updated task: %s", task.ID)
	s.notify(ctx, EventUpdated, task.ID, nil)
	return nil
}

// ToggleTaskDeletion inverts the deleted flag of the task. Calling it twice
// restores the original state.
func (s *Store) ToggleTaskDeletion(ctx context.Context, id string) error {
	database, err := s.handle()
	if err != nil {
		return err
	}

	n, err := database.ToggleDeleted(ctx, id)
	if err != nil {
		s.logger.Printf("Error toggling task deletion: %v", err)
		return persistenceErr("toggle task deletion", err)
	}
	if n == 0 {
		return notFound(id)
	}

	s.logger.Printf("Toggled deletion: %s", id)
	s.notify(ctx, EventDeletionToggled, id, nil)
	return nil
}

// SetTaskStatus moves a task between new and done. It does not touch the
// deleted flag.
func (s *Store) SetTaskStatus(ctx context.Context, id string, status schema.Status) error {
	database, err := s.handle()
	if err != nil {
		return err
	}

	if !status.IsValid() {
		return &schema.ValidationError{Reason: "invalid status"}
	}

	n, err := database.SetStatus(ctx, id, status)
	if err != nil {
		s.logger.Printf("Error setting task status: %v", err)
		return persistenceErr("set task status", err)
	}
	if n == 0 {
		return notFound(id)
	}

	s.logger.Printf("Set status of %s to %s", id, status)
	s.notify(ctx, EventStatusChanged, id, nil)
	return nil
}

// RestoreTask inserts a previously exported task as-is, keeping its id,
// creation time and deleted flag. It returns false when the id already
// exists, in which case nothing is written.
func (s *Store) RestoreTask(ctx context.Context, task *schema.Task) (bool, error) {
	database, err := s.handle()
	if err != nil {
		return false, err
	}

	if task.ID == "" {
		return false, &schema.ValidationError{Reason: "id required"}
	}
	if err := task.Validate(); err != nil {
		return false, err
	}
	restored := *task
	if restored.Status == "" {
		restored.Status = schema.StatusNew
	}
	if !restored.Status.IsValid() {
		return false, &schema.ValidationError{Reason: "invalid status"}
	}
	restored.Title = strings.TrimSpace(restored.Title)
	restored.Description = strings.TrimSpace(restored.Description)
	if strings.TrimSpace(restored.Category) == "" {
		restored.Category = schema.DefaultCategory
	}
	if restored.CreatedAt.IsZero() {
		restored.CreatedAt = s.now().UTC()
	}

	written, err := database.RestoreTask(ctx, &restored)
	if err != nil {
		return false, persistenceErr("restore task", err)
	}
	if written {
		s.notify(ctx, EventRestored, restored.ID, &restored)
	}
	return written, nil
}

// Stats returns task counts.
func (s *Store) Stats(ctx context.Context) (*db.Stats, error) {
	database, err := s.handle()
	if err != nil {
		return nil, err
	}

	stats, err := database.CountTasks(ctx)
	if err != nil {
		return nil, persistenceErr("count tasks", err)
	}
	return stats, nil
}
