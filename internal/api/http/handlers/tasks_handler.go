package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// TasksHandler exposes task CRUD endpoints. All routes sit behind the
// authentication guard; the principal is guaranteed present.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// GetAll handles GET /api/tasks/getAll.
func (h *TasksHandler) GetAll(c *fiber.Ctx) error {
	tasks, err := h.service.ListTasks(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(taskResponses(tasks))
}

// GetByID handles GET /api/tasks/getTaskById/:id.
func (h *TasksHandler) GetByID(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(taskResponse(task))
}

// GetByUserName handles GET /api/tasks/getByUserName/:username.
func (h *TasksHandler) GetByUserName(c *fiber.Ctx) error {
	tasks, err := h.service.ListUserTasks(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(taskResponses(tasks))
}

// Create handles POST /api/tasks/create. The task owner is the
// authenticated principal, not a caller-supplied field.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.service.CreateTask(c.UserContext(), principal.Username, taskInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(taskResponse(task))
}

// Update handles PUT /api/tasks/update/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.service.UpdateTask(c.UserContext(), c.Params("id"), principal.Username, taskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(taskResponse(task))
}

// Delete handles DELETE /api/tasks/delete/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.DeleteTask(c.UserContext(), c.Params("id"), principal.Username); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		TaskName:    req.TaskName,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          task.ID,
		Username:    task.Username,
		TaskName:    task.TaskName,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
	}
}

func taskResponses(tasks []domain.Task) []dto.TaskResponse {
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return items
}
