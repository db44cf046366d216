package filesystem

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/gatewaylog"
	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.Gateway = (*ExecutionStore)(nil)

// ErrReadOnly is returned for demo runs against a file store.
var ErrReadOnly = errors.New("demo runs need the X-Ray backend; the execution store is read-only")

type indexFile struct {
	Executions []indexEntry `json:"executions"`
}

type indexEntry struct {
	ExecutionID string `json:"execution_id"`
	Name        string `json:"name"`
	StartedAt   string `json:"started_at"`
}

// ExecutionStore reads executions written by the X-Ray SDK's JSON file
// storage: an index.json listing plus one executions/<id>.json per run.
type ExecutionStore struct {
	rootDir string
	limit   int
	logger  ports.Logger
	clock   ports.Clock
	calls   *gatewaylog.Log
}

// NewExecutionStore creates a store rooted at rootDir. limit caps the
// listing when positive. calls may be nil.
func NewExecutionStore(rootDir string, limit int, logger ports.Logger, clock ports.Clock, calls *gatewaylog.Log) (*ExecutionStore, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	return &ExecutionStore{rootDir: absRoot, limit: limit, logger: logger, clock: clock, calls: calls}, nil
}

// Root returns the absolute storage directory.
func (s *ExecutionStore) Root() string { return s.rootDir }

// ListExecutions returns executions newest started_at first. Entries whose
// file is missing or invalid are skipped.
func (s *ExecutionStore) ListExecutions(_ context.Context) (list []*trace.Execution, err error) {
	call := s.begin("list_executions", filepath.Join(s.rootDir, "index.json"))
	defer func() { s.finish(call, len(list), err) }()

	data, err := os.ReadFile(filepath.Join(s.rootDir, "index.json"))
	if errors.Is(err, os.ErrNotExist) {
		return []*trace.Execution{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}

	entries := idx.Executions
	slices.SortStableFunc(entries, func(a, b indexEntry) int {
		return cmp.Compare(b.StartedAt, a.StartedAt)
	})
	if s.limit > 0 && len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	list = make([]*trace.Execution, 0, len(entries))
	for _, e := range entries {
		exec, err := s.load(e.ExecutionID)
		if err != nil {
			s.logger.Warn("skipping stored execution", "execution_id", e.ExecutionID, "error", err)
			continue
		}
		list = append(list, exec)
	}
	return list, nil
}

// GetExecution loads one execution file.
func (s *ExecutionStore) GetExecution(_ context.Context, id string) (exec *trace.Execution, err error) {
	call := s.begin("get_execution", s.executionPath(id))
	defer func() {
		n := 0
		if exec != nil {
			n = 1
		}
		s.finish(call, n, err)
	}()
	return s.load(id)
}

// RunDemo always fails: the store cannot run the pipeline.
func (s *ExecutionStore) RunDemo(context.Context, demo.Request) (*demo.Response, error) {
	return nil, ErrReadOnly
}

// Health checks that the storage directory is readable.
func (s *ExecutionStore) Health(context.Context) error {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.rootDir)
	}
	return nil
}

func (s *ExecutionStore) load(id string) (*trace.Execution, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", viewer.ErrUnknownExecution, id)
	}
	data, err := os.ReadFile(s.executionPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", viewer.ErrUnknownExecution, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read execution: %w", err)
	}
	exec, err := trace.ParseExecution(data)
	if err != nil {
		return nil, fmt.Errorf("invalid execution file %s: %w", id, err)
	}
	return exec, nil
}

func (s *ExecutionStore) executionPath(id string) string {
	return filepath.Join(s.rootDir, "executions", id+".json")
}

func (s *ExecutionStore) begin(op, path string) *gatewaylog.Call {
	return &gatewaylog.Call{Time: s.clock.Now(), Operation: op, Method: "READ", URL: "file://" + filepath.ToSlash(path)}
}

func (s *ExecutionStore) finish(call *gatewaylog.Call, executions int, err error) {
	call.Duration = s.clock.Now().Sub(call.Time)
	call.Executions = executions
	if err != nil {
		call.Error = err.Error()
	}
	if s.calls != nil {
		s.calls.Record(*call)
	}
}
