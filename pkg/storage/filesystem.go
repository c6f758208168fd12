// Package storage persists the project registry and the audit event log
// under the workspace data directory.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/tfaber/taskd/pkg/domain/tracker"
)

const DataDir = ".taskd"
const RegistryFile = "registry.json"
const EventsFile = "events.jsonl"
const ConfigFile = "config.yaml"
const LogFile = "taskd.log"

// FilesystemRepository reads and writes the registry document under
// root/.taskd. Writes go to a temporary file first and are renamed over
// the target, so a crashed or concurrent writer never leaves a partially
// written document visible to a load.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// DataPath returns the data directory under the workspace root.
func (r *FilesystemRepository) DataPath() string {
	return filepath.Join(r.root, DataDir)
}

// ResolvePath ensures the path is within the .taskd directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, DataDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, DataDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .taskd directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, DataDir))
	return err == nil
}

// SaveRegistry serializes the full registry as one document and commits
// it atomically. The caller holds the write lock, so the document on disk
// always matches a registry state that actually existed in memory.
func (r *FilesystemRepository) SaveRegistry(reg *tracker.Registry) error {
	path, err := r.ResolvePath(RegistryFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), RegistryFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit registry: %w", err)
	}
	return nil
}

// LoadRegistry parses the persisted document back into the in-memory
// model. A missing file yields an empty registry; a document that fails
// schema validation or decoding is unrecoverable corruption. Transient
// read errors are retried.
func (r *FilesystemRepository) LoadRegistry() (*tracker.Registry, error) {
	retryer := retry.New[*tracker.Registry](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*tracker.Registry, error) {
		path, err := r.ResolvePath(RegistryFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return tracker.NewRegistry(), nil
			}
			return nil, fmt.Errorf("failed to read registry file: %w", err)
		}

		if err := ValidateRegistryDocument(data); err != nil {
			return nil, err
		}

		var reg tracker.Registry
		if err := json.Unmarshal(data, &reg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		reg.Reconcile()
		return &reg, nil
	})
}
