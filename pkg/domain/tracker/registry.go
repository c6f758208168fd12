// Package tracker holds the project/task domain model: the project
// registry, the task state machine, dependency sets, and the append-only
// activity log.
package tracker

// Registry owns the full set of projects. Projects are kept in creation
// order; identifiers are issued by the embedded sequences and never
// reused. The registry is a plain value with no locking of its own — the
// store layer serializes all access.
type Registry struct {
	NextProjectID Sequence   `json:"next_project_id"`
	Projects      []*Project `json:"projects"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{Projects: []*Project{}}
}

// NewProject creates a project with the next global identifier and
// appends it in creation order.
func (r *Registry) NewProject(name, description string) *Project {
	p := &Project{
		ID:          r.NextProjectID.Next(),
		Name:        name,
		Description: description,
		Tasks:       []*Task{},
	}
	r.Projects = append(r.Projects, p)
	return p
}

// Project returns the project with the given identifier, or nil.
func (r *Registry) Project(id int) *Project {
	for _, p := range r.Projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Clone returns a deep copy of the registry. The store snapshots the
// acknowledged state through it before applying a mutation, so a failed
// durable write can restore that state instead of leaving the
// unacknowledged change in memory.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		NextProjectID: r.NextProjectID,
		Projects:      make([]*Project, 0, len(r.Projects)),
	}
	for _, p := range r.Projects {
		out.Projects = append(out.Projects, p.Clone())
	}
	return out
}

// Reconcile normalizes a loaded document. Allocator floors are
// re-derived from the identifiers actually present, so counters that lag
// their contents (a hand-edited file) cannot cause identifier reuse. A
// task carrying no state field — older documents never wrote one — gets
// its state derived from the activity log.
func (r *Registry) Reconcile() {
	for _, p := range r.Projects {
		r.NextProjectID.Reconcile(p.ID)
		for _, t := range p.Tasks {
			p.NextTaskID.Reconcile(t.ID)
			if !t.State.IsValid() {
				t.State = t.CurrentState()
			}
		}
	}
}
