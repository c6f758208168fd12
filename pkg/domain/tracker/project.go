package tracker

import "time"

// Project is a top-level container of tasks. Tasks are kept in creation
// order; task identifiers are unique within the project but not across
// projects. Projects are never deleted — absence of a delete operation is
// intentional scope.
type Project struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	NextTaskID  Sequence `json:"next_task_id"`
	Tasks       []*Task  `json:"tasks"`
}

// NewTask creates a task with the next identifier in this project's
// scope and appends it in creation order.
func (p *Project) NewTask(title, description string, at time.Time) *Task {
	t := NewTask(p.NextTaskID.Next(), title, description, at)
	p.Tasks = append(p.Tasks, t)
	return t
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	out := *p
	out.Tasks = make([]*Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		out.Tasks = append(out.Tasks, t.Clone())
	}
	return &out
}

// Task returns the task with the given identifier, or nil if the project
// owns no such task.
func (p *Project) Task(id int) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
