// Package application hosts the store: the single serialized owner of
// the project registry. Every read and write goes through it; mutations
// are committed to disk before they are acknowledged.
package application

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tfaber/taskd/pkg/domain/events"
	"github.com/tfaber/taskd/pkg/domain/tracker"
	"github.com/tfaber/taskd/pkg/storage"
)

// DependencyAction selects the dependency mutation.
const (
	DependencyAdd    = "Add"
	DependencyRemove = "Remove"
)

// Store owns the registry under a reader/writer discipline: reads run
// concurrently, mutations exclusively. Each mutation plus its persistence
// commit is one unit; the write lock is held across both so the document
// on disk never runs ahead of or behind an acknowledged state.
//
// Operations on unknown entities are deliberate no-ops, not errors: the
// tracked contract absorbs them and answers success. The only errors a
// Store method returns are fatal ones (a failed durable write).
type Store struct {
	mu        sync.RWMutex
	repo      *storage.FilesystemRepository
	registry  *tracker.Registry
	audit     *storage.FileEventStore
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAudit attaches the append-only audit event log.
func WithAudit(audit *storage.FileEventStore) Option {
	return func(s *Store) { s.audit = audit }
}

// WithPublisher attaches the in-process event publisher (live feed).
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the registry from disk (or starts empty when no document
// exists) and returns a store ready to serve requests.
func Open(repo *storage.FilesystemRepository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	reg, err := repo.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.registry = reg
	return s, nil
}

// Reload re-reads the registry document, replacing the in-memory state.
// Called when the data file was rewritten externally. A document that no
// longer loads keeps the current state. The write lock is held across
// the file read and the swap: a mutation that committed after the read
// would otherwise be overwritten by the stale document.
func (s *Store) Reload() error {
	s.mu.Lock()
	reg, err := s.repo.LoadRegistry()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reload store: %w", err)
	}
	s.registry = reg
	s.mu.Unlock()

	s.emit(&events.Event{Type: events.TypeRegistryReloaded})
	return nil
}

// ListProjects returns id and name of every project in creation order.
func (s *Store) ListProjects() []ProjectSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProjectSummary, 0, len(s.registry.Projects))
	for _, p := range s.registry.Projects {
		out = append(out, ProjectSummary{ID: p.ID, Name: p.Name})
	}
	return out
}

// GetProject returns the full view of one project. An unknown id yields
// a well-formed default snapshot, never an error.
func (s *Store) GetProject(id int) ProjectSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.registry.Project(id)
	if p == nil {
		return emptyProjectSnapshot(id)
	}
	return snapshotProject(p)
}

// GetTask returns the full view of one task, unknown ids degrading to a
// default snapshot.
func (s *Store) GetTask(projectID, taskID int) TaskSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.registry.Project(projectID)
	if p == nil {
		return emptyTaskSnapshot(taskID)
	}
	t := p.Task(taskID)
	if t == nil {
		return emptyTaskSnapshot(taskID)
	}
	return snapshotTask(t)
}

// CreateProject creates a project and returns its identifier.
func (s *Store) CreateProject(name, description string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	undo := s.registry.Clone()
	p := s.registry.NewProject(name, description)
	if err := s.commit(); err != nil {
		s.registry = undo
		return 0, err
	}

	s.emit(&events.Event{
		Type:      events.TypeProjectCreated,
		ProjectID: p.ID,
		Metadata:  map[string]any{"name": name},
	})
	return p.ID, nil
}

// RenameProject sets a project's name. Unknown id: no-op.
func (s *Store) RenameProject(id int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.registry.Project(id)
	if p == nil {
		s.absorb("project.rename", id, -1)
		return nil
	}

	undo := s.registry.Clone()
	p.Name = name
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{
		Type:      events.TypeProjectRenamed,
		ProjectID: id,
		Metadata:  map[string]any{"name": name},
	})
	return nil
}

// DescribeProject sets a project's description. Unknown id: no-op.
func (s *Store) DescribeProject(id int, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.registry.Project(id)
	if p == nil {
		s.absorb("project.describe", id, -1)
		return nil
	}

	undo := s.registry.Clone()
	p.Description = description
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{Type: events.TypeProjectDescribed, ProjectID: id})
	return nil
}

// CreateTask creates a task in the given project and returns its
// identifier. An unknown project absorbs the request and reports
// identifier 0.
func (s *Store) CreateTask(projectID int, title, description string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.registry.Project(projectID)
	if p == nil {
		s.absorb("task.create", projectID, -1)
		return 0, nil
	}

	undo := s.registry.Clone()
	t := p.NewTask(title, description, s.now())
	if err := s.commit(); err != nil {
		s.registry = undo
		return 0, err
	}

	s.emit(&events.Event{
		Type:      events.TypeTaskCreated,
		ProjectID: projectID,
		TaskID:    t.ID,
		Metadata:  map[string]any{"title": title},
	})
	return t.ID, nil
}

// SetTaskTitle sets a task's title. Unknown ids: no-op.
func (s *Store) SetTaskTitle(projectID, taskID int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(projectID, taskID, "task.title")
	if t == nil {
		return nil
	}

	undo := s.registry.Clone()
	t.Title = title
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{Type: events.TypeTaskTitleChanged, ProjectID: projectID, TaskID: taskID})
	return nil
}

// SetTaskDescription sets a task's description. Unknown ids: no-op.
func (s *Store) SetTaskDescription(projectID, taskID int, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(projectID, taskID, "task.describe")
	if t == nil {
		return nil
	}

	undo := s.registry.Clone()
	t.Description = description
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{Type: events.TypeTaskDescribed, ProjectID: projectID, TaskID: taskID})
	return nil
}

// SetTaskState transitions a task to the requested state and appends the
// matching log entry, as one durable unit. Unknown ids or a state outside
// the enumeration: no-op.
func (s *Store) SetTaskState(projectID, taskID int, newState string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := tracker.ParseState(newState)
	if err != nil {
		s.logger.Debug("absorbed request with invalid state",
			"op", "task.state", "project_id", projectID, "task_id", taskID, "state", newState)
		return nil
	}

	t := s.task(projectID, taskID, "task.state")
	if t == nil {
		return nil
	}

	undo := s.registry.Clone()
	if err := t.SetState(target, s.now()); err != nil {
		// The machine accepts every in-enumeration target, so this is
		// an internal invariant break, not a caller condition.
		return fmt.Errorf("set state: %w", err)
	}
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{
		Type:      events.TypeTaskStateChanged,
		ProjectID: projectID,
		TaskID:    taskID,
		Metadata:  map[string]any{"state": string(target)},
	})
	return nil
}

// ChangeDependency applies a dependency action. Add is idempotent,
// Remove of a non-member is a no-op, and the referenced identifier is
// never checked for existence. An unknown action absorbs the request.
func (s *Store) ChangeDependency(projectID, taskID int, action string, dependency int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action != DependencyAdd && action != DependencyRemove {
		s.logger.Debug("absorbed request with unknown dependency action",
			"op", "task.dependency", "project_id", projectID, "task_id", taskID, "action", action)
		return nil
	}

	t := s.task(projectID, taskID, "task.dependency")
	if t == nil {
		return nil
	}

	undo := s.registry.Clone()
	switch action {
	case DependencyAdd:
		t.Dependencies.Add(dependency)
	case DependencyRemove:
		t.Dependencies.Remove(dependency)
	}
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{
		Type:      events.TypeTaskDependencyChanged,
		ProjectID: projectID,
		TaskID:    taskID,
		Metadata:  map[string]any{"action": action, "dependency": dependency},
	})
	return nil
}

// CommentTask appends a comment entry to a task's log. Unknown ids:
// no-op.
func (s *Store) CommentTask(projectID, taskID int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.task(projectID, taskID, "task.comment")
	if t == nil {
		return nil
	}

	undo := s.registry.Clone()
	t.AddComment(comment, s.now())
	if err := s.commit(); err != nil {
		s.registry = undo
		return err
	}

	s.emit(&events.Event{Type: events.TypeTaskCommented, ProjectID: projectID, TaskID: taskID})
	return nil
}

// task resolves a task under the held lock, logging the absorbed request
// when either id is unknown.
func (s *Store) task(projectID, taskID int, op string) *tracker.Task {
	p := s.registry.Project(projectID)
	if p == nil {
		s.absorb(op, projectID, taskID)
		return nil
	}
	t := p.Task(taskID)
	if t == nil {
		s.absorb(op, projectID, taskID)
		return nil
	}
	return t
}

// commit persists the full registry. Callers hold the write lock. A
// failed commit is fatal for the operation: the reply must not be shaped
// until the durable write has completed, and the caller restores its
// pre-mutation snapshot so memory keeps matching the acknowledged
// document.
func (s *Store) commit() error {
	if err := s.repo.SaveRegistry(s.registry); err != nil {
		s.logger.Error("durable write failed", "error", err)
		return fmt.Errorf("commit registry: %w", err)
	}
	return nil
}

// emit records the event in the audit log and hands it to the live
// publisher. Both are best-effort observers; their failure never fails
// the committed mutation.
func (s *Store) emit(event *events.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if s.audit != nil {
		if err := s.audit.Append(event); err != nil {
			s.logger.Warn("audit append failed", "type", event.Type, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(event); err != nil {
			s.logger.Warn("event publish failed", "type", event.Type, "error", err)
		}
	}
}

func (s *Store) absorb(op string, projectID, taskID int) {
	s.logger.Debug("absorbed request for unknown entity",
		"op", op, "project_id", projectID, "task_id", taskID)
}
