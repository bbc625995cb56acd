package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skulk0156/emsbackend/internal/domain/task"
	"github.com/skulk0156/emsbackend/internal/handler/http/response"
)

type TaskHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Accept(w http.ResponseWriter, r *http.Request)
	SubmitForReview(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
}

type taskHandlerImpl struct {
	taskService task.Service
}

func NewTaskHandler(taskService task.Service) TaskHandler {
	return &taskHandlerImpl{taskService: taskService}
}

func taskIDFromURL(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	return id, err == nil
}

// Create implements TaskHandler.
func (h *taskHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.taskService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Task created", resp)
}

// Get implements TaskHandler.
func (h *taskHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromURL(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	resp, err := h.taskService.Get(r.Context(), taskID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// List implements TaskHandler.
func (h *taskHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter task.Filter
	if s := query.Get("status"); s != "" {
		status := task.Status(s)
		filter.Status = &status
	}
	if a := query.Get("assignee_id"); a != "" {
		filter.AssigneeID = &a
	}
	if c := query.Get("created_by"); c != "" {
		filter.CreatedBy = &c
	}
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	resp, err := h.taskService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Update implements TaskHandler.
func (h *taskHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	taskID, ok := taskIDFromURL(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.taskService.Update(r.Context(), actor, taskID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Task updated", resp)
}

// Delete implements TaskHandler.
func (h *taskHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	taskID, ok := taskIDFromURL(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	if err := h.taskService.Delete(r.Context(), actor, taskID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Task deleted", nil)
}

// Accept implements TaskHandler.
func (h *taskHandlerImpl) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.taskService.Accept, "Task accepted")
}

// SubmitForReview implements TaskHandler.
func (h *taskHandlerImpl) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.taskService.SubmitForReview, "Task submitted for review")
}

// Review implements TaskHandler.
func (h *taskHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	taskID, ok := taskIDFromURL(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	var req task.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.taskService.Review(r.Context(), actor, taskID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Review recorded", resp)
}

func (h *taskHandlerImpl) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actor task.Actor, taskID int64) (task.TaskResponse, error),
	message string,
) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	taskID, ok := taskIDFromURL(r)
	if !ok {
		response.BadRequest(w, "Invalid task id", nil)
		return
	}

	resp, err := op(r.Context(), actor, taskID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, resp)
}
