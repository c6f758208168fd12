package config

import (
	"testing"
	"time"

	"github.com/tfaber/taskd/pkg/storage"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Watch {
		t.Error("watch should default to off")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	want := &Config{
		Addr:          "127.0.0.1:9000",
		Watch:         true,
		WatchDebounce: 250 * time.Millisecond,
		LogFile:       "taskd.log",
	}
	if err := Save(root, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadFillsUnsetFields(t *testing.T) {
	root := t.TempDir()
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}

	if err := Save(root, &Config{Watch: true}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("addr = %q, want default", cfg.Addr)
	}
	if cfg.WatchDebounce != DefaultWatchDebounce {
		t.Errorf("debounce = %v, want default", cfg.WatchDebounce)
	}
	if !cfg.Watch {
		t.Error("watch flag lost")
	}
}

func TestSaveNilConfig(t *testing.T) {
	if err := Save(t.TempDir(), nil); err == nil {
		t.Error("expected error for nil config")
	}
}
