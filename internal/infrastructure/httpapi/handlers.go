package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// request is the superset of fields a POST body may carry. Decoding is
// lenient: a malformed body or a missing field leaves the zero value in
// place and the operation proceeds under the absorbing contract.
type request struct {
	ProjectID   int    `json:"project_id"`
	TaskID      int    `json:"task_id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NewState    string `json:"new_state"`
	Action      string `json:"action"`
	Dependency  int    `json:"dependency"`
	Comment     string `json:"comment"`
}

func decodeBody(r *http.Request) request {
	var req request
	// Decode errors are absorbed; whatever fields parsed before the
	// error keep their values.
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req
}

// queryInt reads an integer query parameter, zero when absent or
// unparseable.
func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

type createProjectResponse struct {
	ProjectID int `json:"project_id"`
}

type createTaskResponse struct {
	TaskID int `json:"task_id"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.ListProjects())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.GetProject(queryInt(r, "project_id")))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	id, err := s.store.CreateProject(req.Name, req.Description)
	if err != nil {
		s.fatal(w, r, err)
		return
	}
	writeJSON(w, createProjectResponse{ProjectID: id})
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.RenameProject(req.ProjectID, req.Name); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleDescribeProject(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.DescribeProject(req.ProjectID, req.Description); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.GetTask(queryInt(r, "project_id"), queryInt(r, "task_id")))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	id, err := s.store.CreateTask(req.ProjectID, req.Name, req.Description)
	if err != nil {
		s.fatal(w, r, err)
		return
	}
	writeJSON(w, createTaskResponse{TaskID: id})
}

func (s *Server) handleTaskTitle(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.SetTaskTitle(req.ProjectID, req.TaskID, req.Title); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleTaskDescription(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.SetTaskDescription(req.ProjectID, req.TaskID, req.Description); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleTaskDependency(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.ChangeDependency(req.ProjectID, req.TaskID, req.Action, req.Dependency); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleTaskState(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.SetTaskState(req.ProjectID, req.TaskID, req.NewState); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleTaskComment(w http.ResponseWriter, r *http.Request) {
	req := decodeBody(r)
	if err := s.store.CommentTask(req.ProjectID, req.TaskID, req.Comment); err != nil {
		s.fatal(w, r, err)
		return
	}
	writeOK(w)
}

// fatal handles the one failure class the contract models: a durable
// write that did not complete. Diagnostics go server-side; the caller
// gets a bare 500.
func (s *Server) fatal(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("operation aborted", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
