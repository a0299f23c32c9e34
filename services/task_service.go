package services

import (
	"backoffice/models"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CreateTaskRequest данные новой задачи
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	AssignedTo  uint       `json:"assigned_to" validate:"required"`
	Priority    int        `json:"priority" validate:"gte=0,lte=5"`
	DueAt       *time.Time `json:"due_at"`
}

// TaskStatusRequest смена статуса задачи
type TaskStatusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required,oneof=new in_progress done cancelled"`
}

// Старшинство ролей для делегирования
var roleRank = map[models.Role]int{
	models.RoleCFO:      4,
	models.RoleManager:  3,
	models.RoleTeamLead: 2,
	models.RoleJunior:   1,
	models.RoleTester:   1,
}

// CanDelegate проверяет, может ли сотрудник с ролью from поставить задачу сотруднику с ролью to.
// Себе задачу может поставить любой. Admin ставит задачи всем. HR и Tester только себе.
// Остальные только ролям ниже по старшинству.
func CanDelegate(from, to models.Role, self bool) bool {
	if self || from == models.RoleAdmin {
		return true
	}
	if from == models.RoleHR || from == models.RoleTester {
		return false
	}
	fromRank, okFrom := roleRank[from]
	toRank, okTo := roleRank[to]
	return okFrom && okTo && toRank < fromRank
}

// TaskService предоставляет методы для работы с задачами
type TaskService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewTaskService создает новый экземпляр TaskService
func NewTaskService(db *gorm.DB, notifier *Notifier) *TaskService {
	return &TaskService{db: db, notifier: notifier}
}

// List возвращает задачи, созданные пользователем или назначенные ему
func (s *TaskService) List(actor Actor, status models.TaskStatus) ([]models.Task, error) {
	query := s.db.Where("assigned_to = ? OR created_by = ?", actor.ID, actor.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var list []models.Task
	if err := query.Order("priority DESC, created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении задач: %w", err)
	}
	return list, nil
}

// Create создает задачу с проверкой права делегирования
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest, actor Actor) (*models.Task, error) {
	var assignee models.User
	if err := s.db.First(&assignee, req.AssignedTo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("пользователь", req.AssignedTo)
		}
		return nil, err
	}
	if !assignee.Active {
		return nil, conflict("пользователь #%d не активен", assignee.ID)
	}
	if !CanDelegate(actor.Role, assignee.Role, assignee.ID == actor.ID) {
		return nil, forbidden("роль %s не может ставить задачи роли %s", actor.Role, assignee.Role)
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   actor.ID,
		AssignedTo:  assignee.ID,
		Status:      models.TaskNew,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать задачу: %w", err)
	}

	if assignee.ID != actor.ID {
		s.notifier.Publish(ctx, Event{
			Kind:       EventTaskAssigned,
			Title:      "Новая задача: " + task.Title,
			Body:       task.Description,
			Recipients: []Recipient{{UserID: assignee.ID, Email: assignee.Email}},
		})
	}
	return task, nil
}

// UpdateStatus меняет статус задачи. Менять статус может исполнитель или автор.
func (s *TaskService) UpdateStatus(ctx context.Context, id uint, req TaskStatusRequest, actor Actor) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("задача", id)
		}
		return nil, err
	}
	if task.AssignedTo != actor.ID && task.CreatedBy != actor.ID {
		return nil, forbidden("задача #%d вам не принадлежит", id)
	}
	if task.Status == req.Status {
		return &task, nil
	}

	if err := s.db.WithContext(ctx).Model(&task).Update("status", req.Status).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить задачу: %w", err)
	}
	task.Status = req.Status

	notify := task.CreatedBy
	if actor.ID == task.CreatedBy {
		notify = task.AssignedTo
	}
	if notify != actor.ID {
		s.notifier.Publish(ctx, Event{
			Kind:       EventTaskStatus,
			Title:      fmt.Sprintf("Задача \"%s\": %s", task.Title, task.Status),
			Recipients: []Recipient{{UserID: notify}},
		})
	}
	return &task, nil
}
