package application

import "github.com/tfaber/taskd/pkg/domain/tracker"

// Snapshot types returned by the store. They are detached copies: callers
// never receive a live reference into the registry.

// ProjectSummary is one row of the project listing.
type ProjectSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TaskSummary is one row of a project's task listing.
type TaskSummary struct {
	Title string        `json:"title"`
	State tracker.State `json:"state"`
	ID    int           `json:"id"`
}

// ProjectSnapshot is the full view of one project.
type ProjectSnapshot struct {
	Name        string        `json:"name"`
	ID          int           `json:"id"`
	Description string        `json:"description"`
	Tasks       []TaskSummary `json:"tasks"`
}

// TaskSnapshot is the full view of one task, log and dependencies
// included.
type TaskSnapshot struct {
	Title        string             `json:"title"`
	ID           int                `json:"id"`
	Description  string             `json:"description"`
	State        tracker.State      `json:"state"`
	Log          []tracker.LogEntry `json:"log"`
	Dependencies []int              `json:"dependencies"`
}

func snapshotProject(p *tracker.Project) ProjectSnapshot {
	snap := ProjectSnapshot{
		Name:        p.Name,
		ID:          p.ID,
		Description: p.Description,
		Tasks:       make([]TaskSummary, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		snap.Tasks = append(snap.Tasks, TaskSummary{Title: t.Title, State: t.State, ID: t.ID})
	}
	return snap
}

func snapshotTask(t *tracker.Task) TaskSnapshot {
	return TaskSnapshot{
		Title:        t.Title,
		ID:           t.ID,
		Description:  t.Description,
		State:        t.State,
		Log:          t.Log.Entries(),
		Dependencies: t.Dependencies.Values(),
	}
}

// emptyProjectSnapshot is the degraded view returned for an unknown
// project id: well-formed, default fields, never an error.
func emptyProjectSnapshot(id int) ProjectSnapshot {
	return ProjectSnapshot{ID: id, Tasks: []TaskSummary{}}
}

// emptyTaskSnapshot is the degraded view for an unknown task.
func emptyTaskSnapshot(id int) TaskSnapshot {
	return TaskSnapshot{
		ID:           id,
		State:        tracker.InitialState,
		Log:          []tracker.LogEntry{},
		Dependencies: []int{},
	}
}
