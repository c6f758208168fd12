package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tfaber/taskd/pkg/storage"
)

func runInTempDir(t *testing.T, args ...string) error {
	t.Helper()

	old, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(old) })
	os.Chdir(t.TempDir())

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)
	return RootCmd.Execute()
}

func TestInitCmd(t *testing.T) {
	if err := runInTempDir(t, "init"); err != nil {
		t.Fatal(err)
	}

	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, storage.DataDir, storage.RegistryFile)); err != nil {
		t.Errorf("registry not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cwd, storage.DataDir, storage.ConfigFile)); err != nil {
		t.Errorf("config not written: %v", err)
	}

	// Second init is a no-op, not an error.
	RootCmd.SetArgs([]string{"init"})
	if err := RootCmd.Execute(); err != nil {
		t.Errorf("re-init failed: %v", err)
	}
}

func TestStatusCmdWithoutInit(t *testing.T) {
	if err := runInTempDir(t, "status"); err == nil {
		t.Error("expected error when no data directory exists")
	}
}

func TestStatusCmdAfterInit(t *testing.T) {
	if err := runInTempDir(t, "init"); err != nil {
		t.Fatal(err)
	}

	RootCmd.SetArgs([]string{"status", "--json"})
	if err := RootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
}
