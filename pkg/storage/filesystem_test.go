package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tfaber/taskd/pkg/domain/tracker"
)

func buildRegistry(t *testing.T) *tracker.Registry {
	t.Helper()
	at := time.Unix(1724650000, 0).UTC()

	reg := tracker.NewRegistry()
	p := reg.NewProject("P", "d")
	reg.NewProject("Q", "") // empty project, no tasks

	task := p.NewTask("T", "x", at)
	if err := task.SetState(tracker.StateBlocked, at.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	task.AddComment("note", at.Add(2*time.Second))
	task.Dependencies.Add(1)
	task.Dependencies.Add(4)

	p.NewTask("U", "", at) // empty log besides Opened, empty deps
	return reg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	reg := buildRegistry(t)
	if err := repo.SaveRegistry(reg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.LoadRegistry()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// decode(encode(x)) == x, compared through the codec itself so
	// unexported set/log internals participate.
	want, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	got, err := json.MarshalIndent(loaded, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %s\nwant %s", got, want)
	}
}

func TestLoadMissingFileYieldsEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	reg, err := repo.LoadRegistry()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reg.Projects) != 0 {
		t.Errorf("expected empty registry, got %d projects", len(reg.Projects))
	}
	if got := reg.NextProjectID.Peek(); got != 0 {
		t.Errorf("next project id = %d, want 0", got)
	}
}

func TestAllocatorContinuesAfterReload(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	reg := tracker.NewRegistry()
	reg.NewProject("a", "")
	reg.NewProject("b", "")
	if err := repo.SaveRegistry(reg); err != nil {
		t.Fatal(err)
	}

	loaded, err := repo.LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	p := loaded.NewProject("c", "")
	if p.ID != 2 {
		t.Errorf("project id after reload = %d, want 2", p.ID)
	}
}

func TestLoadReconcilesHandEditedCounters(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Counter says 0 but a project with id 3 exists, as a hand-edited
	// document might. The allocator must not reuse 3.
	doc := `{"next_project_id":0,"projects":[{"id":3,"name":"p","description":"","next_task_id":0,"tasks":[]}]}`
	path, err := repo.ResolvePath(RegistryFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := repo.LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if p := reg.NewProject("q", ""); p.ID != 4 {
		t.Errorf("next project id = %d, want 4", p.ID)
	}
}

func TestLoadDerivesOmittedTaskState(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	// A task document needs only id and title; older documents never
	// wrote a state field. The loaded task must still land inside the
	// state enumeration, derived from its log where one exists.
	doc := `{"next_project_id":1,"projects":[{"id":0,"name":"p","description":"","next_task_id":2,"tasks":[` +
		`{"id":0,"title":"bare"},` +
		`{"id":1,"title":"moved","log":[{"timestamp":1724650000,"entry_type":"Opened"},{"timestamp":1724650001,"entry_type":{"StateChangedTo":"Blocked"}}]}` +
		`]}]}`
	path, err := repo.ResolvePath(RegistryFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := repo.LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	tasks := reg.Projects[0].Tasks
	if tasks[0].State != tracker.StateTodo {
		t.Errorf("state of task without log = %q, want %q", tasks[0].State, tracker.StateTodo)
	}
	if tasks[1].State != tracker.StateBlocked {
		t.Errorf("state of task with log = %q, want %q", tasks[1].State, tracker.StateBlocked)
	}
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := repo.SaveRegistry(buildRegistry(t)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, DataDir))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	path, err := repo.ResolvePath(RegistryFile)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		doc  string
	}{
		{"truncated json", `{"next_project_id":1,"projects":[`},
		{"missing required fields", `{"projects":[]}`},
		{"bad state enum", `{"next_project_id":1,"projects":[{"id":0,"name":"p","next_task_id":1,"tasks":[{"id":0,"title":"t","state":"Paused","dependencies":[],"log":[]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(tt.doc), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := repo.LoadRegistry()
			if !errors.Is(err, ErrCorrupt) {
				t.Errorf("error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	for _, name := range []string{"", "../escape.json", "nested/file.json"} {
		if _, err := repo.ResolvePath(name); err == nil {
			t.Errorf("ResolvePath(%q) accepted an invalid path", name)
		}
	}
}
