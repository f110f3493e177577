package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// TaskService is a thin persistence wrapper over the task store.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, dispatcher: dispatcher}
}

// TaskInput describes task create/update payloads.
type TaskInput struct {
	TaskName    string
	Description string
	Status      domain.TaskStatus
	Priority    string
	DueDate     string
}

// CreateTask persists a task owned by the given username.
func (s *TaskService) CreateTask(ctx context.Context, username string, input TaskInput) (*domain.Task, error) {
	if strings.TrimSpace(input.TaskName) == "" {
		return nil, apperrors.NewValidationError("taskName required", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.TaskStatusPending
	}

	task := &domain.Task{
		Username:    username,
		TaskName:    input.TaskName,
		Description: input.Description,
		Status:      status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTaskCreated, username, events.TaskCreatedPayload{
		TaskID:   task.ID,
		TaskName: task.TaskName,
		Priority: task.Priority,
	}))
	return task, nil
}

// ListTasks returns every task.
func (s *TaskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tasks, nil
}

// ListUserTasks returns tasks owned by a username.
func (s *TaskService) ListUserTasks(ctx context.Context, username string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tasks, nil
}

// GetTask fetches a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return task, nil
}

// UpdateTask applies the input to an existing task.
func (s *TaskService) UpdateTask(ctx context.Context, id string, actor string, input TaskInput) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if input.TaskName != "" {
		task.TaskName = input.TaskName
	}
	if input.Description != "" {
		task.Description = input.Description
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.DueDate != "" {
		task.DueDate = input.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if task.Status != oldStatus {
		s.publish(ctx, events.NewEvent(events.EventTaskStatusChanged, actor, events.TaskStatusChangedPayload{
			TaskID:    task.ID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		}))
	}
	return task, nil
}

// DeleteTask removes a task by ID.
func (s *TaskService) DeleteTask(ctx context.Context, id string, actor string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task")
		}
		return apperrors.NewStoreUnavailable(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTaskDeleted, actor, events.TaskDeletedPayload{TaskID: id}))
	return nil
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}
