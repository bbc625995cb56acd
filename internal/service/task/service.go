package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/domain/task"
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
)

// maxIDAttempts bounds task id generation; the id space per day is 90000
// values, so exhaustion signals something badly wrong rather than bad luck.
const maxIDAttempts = 10

type TaskServiceImpl struct {
	taskRepo        task.Repository
	userRepo        user.Repository
	notificationSvc notification.Service
	clk             clock.Clock
}

func NewTaskService(
	taskRepo task.Repository,
	userRepo user.Repository,
	notificationSvc notification.Service,
	clk clock.Clock,
) task.Service {
	return &TaskServiceImpl{
		taskRepo:        taskRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		clk:             clk,
	}
}

// newTaskID builds a candidate id: YYMMDD civil-date prefix with a random
// five-digit suffix.
func (s *TaskServiceImpl) newTaskID() int64 {
	prefix, _ := strconv.ParseInt(s.clk.Now().Format("060102"), 10, 64)
	suffix := int64(rand.IntN(90000) + 10000)
	return prefix*100000 + suffix
}

// Create implements task.Service.
func (s *TaskServiceImpl) Create(ctx context.Context, actor task.Actor, req task.CreateTaskRequest) (task.TaskResponse, error) {
	if !actor.Role.CanCreateTasks() {
		return task.TaskResponse{}, task.ErrCreatorRoleRequired
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	data := task.Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeIDs: req.AssigneeIDs,
		TeamID:      req.TeamID,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      task.StatusNotStarted,
		Attachments: req.Attachments,
		CreatedBy:   actor.UserID,
		ReviewerIDs: withCreator(req.ReviewerIDs, actor.UserID),
	}

	var created task.Task
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		data.TaskID = s.newTaskID()
		created, err = s.taskRepo.Create(ctx, data)
		if err == nil {
			break
		}
		if !errors.Is(err, task.ErrTaskIDTaken) {
			return task.TaskResponse{}, fmt.Errorf("failed to create task: %w", err)
		}
	}
	if err != nil {
		return task.TaskResponse{}, task.ErrTaskIDExhausted
	}

	if req.NotifyAssignees {
		s.notify(ctx, created.AssigneeIDs, notification.CreateNotificationRequest{
			SenderID: &actor.UserID,
			Title:    "New Task Assigned",
			Message:  fmt.Sprintf("%s assigned you a new task: %s", actor.Name, created.Title),
			Category: notification.CategoryTask,
			Priority: taskPriorityToNotification(created.Priority),
			Link:     taskLink(created.TaskID),
		})
	}

	// Administrative oversight broadcast, independent of the notify flag.
	s.notifyAdmins(ctx, notification.CreateNotificationRequest{
		SenderID: &actor.UserID,
		Title:    "Task Created",
		Message:  fmt.Sprintf("%s created task %d: %s", actor.Name, created.TaskID, created.Title),
		Category: notification.CategoryTask,
		Priority: notification.PriorityLow,
		Link:     taskLink(created.TaskID),
	})

	return task.ToResponse(created), nil
}

// Accept implements task.Service.
func (s *TaskServiceImpl) Accept(ctx context.Context, actor task.Actor, taskID int64) (task.TaskResponse, error) {
	t, err := s.transition(ctx, taskID, task.AcceptSources, task.StatusInProgress, func(t *task.Task) error {
		if !t.IsAssignee(actor.UserID) {
			return task.ErrNotAssignee
		}
		return nil
	})
	if err != nil {
		return task.TaskResponse{}, err
	}

	s.notify(ctx, reviewAudience(t), notification.CreateNotificationRequest{
		SenderID: &actor.UserID,
		Title:    "Task Accepted",
		Message:  fmt.Sprintf("%s accepted task %d: %s", actor.Name, t.TaskID, t.Title),
		Category: notification.CategoryTask,
		Priority: notification.PriorityLow,
		Link:     taskLink(t.TaskID),
	})

	return task.ToResponse(*t), nil
}

// SubmitForReview implements task.Service.
func (s *TaskServiceImpl) SubmitForReview(ctx context.Context, actor task.Actor, taskID int64) (task.TaskResponse, error) {
	t, err := s.transition(ctx, taskID, task.SubmitSources, task.StatusInReview, func(t *task.Task) error {
		if !t.IsAssignee(actor.UserID) {
			return task.ErrNotAssignee
		}
		return nil
	})
	if err != nil {
		return task.TaskResponse{}, err
	}

	s.notify(ctx, reviewAudience(t), notification.CreateNotificationRequest{
		SenderID: &actor.UserID,
		Title:    "Task Submitted For Review",
		Message:  fmt.Sprintf("%s submitted task %d for review: %s", actor.Name, t.TaskID, t.Title),
		Category: notification.CategoryTask,
		Priority: notification.PriorityMedium,
		Link:     taskLink(t.TaskID),
	})

	return task.ToResponse(*t), nil
}

// Review implements task.Service.
func (s *TaskServiceImpl) Review(ctx context.Context, actor task.Actor, taskID int64, req task.ReviewRequest) (task.TaskResponse, error) {
	target := task.StatusReverted
	if req.Approve {
		target = task.StatusCompleted
	}

	var note *task.ReviewNote
	if !req.Approve && strings.TrimSpace(req.Comment) != "" {
		note = &task.ReviewNote{
			Author:    actor.UserID,
			Comment:   req.Comment,
			CreatedAt: s.clk.Now(),
		}
	}

	t, err := s.resolve(ctx, taskID, target, note, func(t *task.Task) error {
		if !t.IsReviewer(actor.UserID) {
			return task.ErrNotReviewer
		}
		return nil
	})
	if err != nil {
		return task.TaskResponse{}, err
	}

	title, message := "Task Approved", fmt.Sprintf("Task %d was approved and completed: %s", t.TaskID, t.Title)
	if !req.Approve {
		title, message = "Task Reverted", fmt.Sprintf("Task %d was reverted for rework: %s", t.TaskID, t.Title)
	}
	s.notify(ctx, t.AssigneeIDs, notification.CreateNotificationRequest{
		SenderID: &actor.UserID,
		Title:    title,
		Message:  message,
		Category: notification.CategoryTask,
		Priority: notification.PriorityHigh,
		Link:     taskLink(t.TaskID),
	})

	return task.ToResponse(*t), nil
}

// transition loads the task, checks actor authority, checks the state guard
// for a readable error, then applies the status change as a compare-and-set
// so a concurrent transition cannot also succeed.
func (s *TaskServiceImpl) transition(ctx context.Context, taskID int64, from []task.Status, to task.Status, authorize func(*task.Task) error) (*task.Task, error) {
	t, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return nil, task.ErrTaskNotFound
	}

	if err := authorize(t); err != nil {
		return nil, err
	}
	if !statusIn(t.Status, from) {
		return nil, invalidTransition(t.Status, from)
	}

	ok, err := s.taskRepo.UpdateStatus(ctx, taskID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	if !ok {
		// Lost a race; re-read for an accurate error.
		cur, err := s.taskRepo.GetByTaskID(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		if cur == nil {
			return nil, task.ErrTaskNotFound
		}
		return nil, invalidTransition(cur.Status, from)
	}

	t.Status = to
	return t, nil
}

// resolve is the review counterpart of transition: the same load, authorize
// and guard sequence, with the outcome applied through ResolveReview so a
// revert note lands atomically with the status change.
func (s *TaskServiceImpl) resolve(ctx context.Context, taskID int64, to task.Status, note *task.ReviewNote, authorize func(*task.Task) error) (*task.Task, error) {
	t, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return nil, task.ErrTaskNotFound
	}

	if err := authorize(t); err != nil {
		return nil, err
	}
	if !statusIn(t.Status, task.ReviewSources) {
		return nil, invalidTransition(t.Status, task.ReviewSources)
	}

	ok, err := s.taskRepo.ResolveReview(ctx, taskID, to, note)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve review: %w", err)
	}
	if !ok {
		// Lost a race; re-read for an accurate error.
		cur, err := s.taskRepo.GetByTaskID(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		if cur == nil {
			return nil, task.ErrTaskNotFound
		}
		return nil, invalidTransition(cur.Status, task.ReviewSources)
	}

	t.Status = to
	if note != nil {
		t.ReviewNotes = append(t.ReviewNotes, *note)
	}
	return t, nil
}

// Update implements task.Service.
func (s *TaskServiceImpl) Update(ctx context.Context, actor task.Actor, taskID int64, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return task.TaskResponse{}, task.ErrTaskNotFound
	}
	if t.CreatedBy != actor.UserID {
		return task.TaskResponse{}, task.ErrNotCreator
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.AssigneeIDs != nil {
		t.AssigneeIDs = req.AssigneeIDs
	}
	if req.TeamID != nil {
		t.TeamID = req.TeamID
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Attachments != nil {
		if req.AppendAttachments {
			t.Attachments = append(t.Attachments, req.Attachments...)
		} else {
			t.Attachments = req.Attachments
		}
	}
	if req.ReviewerIDs != nil {
		t.ReviewerIDs = withCreator(req.ReviewerIDs, t.CreatedBy)
	}

	if err := s.taskRepo.Update(ctx, *t); err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to update task: %w", err)
	}

	return task.ToResponse(*t), nil
}

// Delete implements task.Service.
func (s *TaskServiceImpl) Delete(ctx context.Context, actor task.Actor, taskID int64) error {
	t, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return task.ErrTaskNotFound
	}
	if t.CreatedBy != actor.UserID {
		return task.ErrNotCreator
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Get implements task.Service.
func (s *TaskServiceImpl) Get(ctx context.Context, taskID int64) (task.TaskResponse, error) {
	t, err := s.taskRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return task.TaskResponse{}, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		return task.TaskResponse{}, task.ErrTaskNotFound
	}
	return task.ToResponse(*t), nil
}

// List implements task.Service.
func (s *TaskServiceImpl) List(ctx context.Context, filter task.Filter) (task.ListTaskResponse, error) {
	filter.Normalize()

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return task.ListTaskResponse{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	responses := make([]task.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, task.ToResponse(t))
	}

	return task.ListTaskResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Tasks:      responses,
	}, nil
}

func (s *TaskServiceImpl) notify(ctx context.Context, receiverIDs []string, req notification.CreateNotificationRequest) {
	if len(receiverIDs) == 0 {
		return
	}
	if err := s.notificationSvc.NotifyMany(ctx, receiverIDs, req); err != nil {
		slog.Error("Failed to send task notification", "title", req.Title, "error", err)
	}
}

func (s *TaskServiceImpl) notifyAdmins(ctx context.Context, req notification.CreateNotificationRequest) {
	admins, err := s.userRepo.ListByRoles(ctx, []user.Role{user.RoleAdmin})
	if err != nil {
		slog.Error("Failed to resolve admin users", "error", err)
		return
	}
	ids := make([]string, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	s.notify(ctx, ids, req)
}

// reviewAudience is the complementary party of an assignee-driven
// transition: the creator plus every reviewer, deduplicated.
func reviewAudience(t *task.Task) []string {
	return withCreator(t.ReviewerIDs, t.CreatedBy)
}

func withCreator(reviewerIDs []string, creator string) []string {
	out := []string{creator}
	seen := map[string]struct{}{creator: {}}
	for _, id := range reviewerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func statusIn(s task.Status, set []task.Status) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func invalidTransition(current task.Status, required []task.Status) error {
	names := make([]string, 0, len(required))
	for _, r := range required {
		names = append(names, string(r))
	}
	return fmt.Errorf("%w: task is %q, operation requires %s",
		task.ErrInvalidTransition, current, strings.Join(names, " or "))
}

func taskPriorityToNotification(p task.Priority) notification.Priority {
	switch p {
	case task.PriorityCritical, task.PriorityHigh:
		return notification.PriorityHigh
	case task.PriorityMedium:
		return notification.PriorityMedium
	default:
		return notification.PriorityLow
	}
}

func taskLink(taskID int64) string {
	return "/tasks/" + strconv.FormatInt(taskID, 10)
}
