package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/project"
)

type Handle struct {
	projectService *project.ProjectService
}

func NewHandle(projectService *project.ProjectService) Handle {
	return Handle{
		projectService: projectService,
	}
}

// UpdateProjectRequest is a partial update. A JSON null owner clears it.
type UpdateProjectRequest struct {
	Name   *string          `json:"name"`
	Status *string          `json:"status"`
	Owner  project.Nullable `json:"owner"`
}

// UpdateTaskRequest is a partial update. A JSON null assignee or dueDate clears it.
type UpdateTaskRequest struct {
	Title    *string          `json:"title"`
	Status   *string          `json:"status"`
	Assignee project.Nullable `json:"assignee"`
	Priority *string          `json:"priority"`
	DueDate  project.Nullable `json:"dueDate"`
}

// RegisterRoutes adds the project and task routes to r.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)
		r.Get("/{projectId}", h.GetProject)
		r.Patch("/{projectId}", h.UpdateProject)
		r.Get("/{projectId}/tasks", h.ListTasks)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Patch("/{projectId}/{taskId}", h.UpdateTask)
	})
}

func (h Handle) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, projects)
}

func (h Handle) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.NewProject
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	p, err := h.projectService.CreateProject(r.Context(), req)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusCreated, p)
}

func (h Handle) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projectService.GetProject(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, p)
}

func (h Handle) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	_, err := h.projectService.UpdateProject(r.Context(), chi.URLParam(r, "projectId"), project.ProjectUpdate{
		Name:   req.Name,
		Status: req.Status,
		Owner:  req.Owner,
	})
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}

func (h Handle) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.projectService.ListTasks(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusOK, tasks)
}

func (h Handle) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req project.NewTask
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	t, err := h.projectService.CreateTask(r.Context(), req)
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderJSON(w, r, http.StatusCreated, t)
}

func (h Handle) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, r, err)
		return
	}
	_, err := h.projectService.UpdateTask(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "taskId"), project.TaskUpdate{
		Title:    req.Title,
		Status:   req.Status,
		Assignee: req.Assignee,
		Priority: req.Priority,
		DueDate:  req.DueDate,
	})
	if err != nil {
		common.RenderError(w, r, err)
		return
	}
	common.RenderOK(w, r)
}
