package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deepscout/deepscout/logger"
)

// SessionStore writes and reads the artifacts of one research session.
type SessionStore struct {
	root string // output/<session>
}

// NewSessionStore creates (if needed) the session directory under
// outputDir and returns a store rooted there.
func NewSessionStore(outputDir, sessionID string) (*SessionStore, error) {
	root := filepath.Join(outputDir, sessionID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &SessionStore{root: root}, nil
}

// Root returns the session directory path.
func (s *SessionStore) Root() string {
	return s.root
}

// AgentDir returns (and creates) the directory for one agent's files.
func (s *SessionStore) AgentDir(agentID string) (string, error) {
	dir := filepath.Join(s.root, SanitizeName(agentID, "agent"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create agent dir: %w", err)
	}
	return dir, nil
}

// WriteArtifact writes a markdown artifact into the session root and
// returns its path. The name is sanitized before use.
func (s *SessionStore) WriteArtifact(name, content string) (string, error) {
	name = SanitizeName(strings.TrimSuffix(name, ".md"), "artifact") + ".md"
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	logger.Info("artifact written", "path", path, "bytes", len(content))
	return path, nil
}

// ReadArtifact reads a named markdown artifact from the session root.
func (s *SessionStore) ReadArtifact(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListArtifacts returns the names of all markdown artifacts in the session
// root except the ones listed in exclude, sorted for stable ordering.
func (s *SessionStore) ListArtifacts(exclude ...string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list session dir: %w", err)
	}
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") || skip[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// WriteMemory persists an agent's memory snapshot as memory.json inside
// that agent's directory.
func (s *SessionStore) WriteMemory(agentID string, data []byte) error {
	dir, err := s.AgentDir(agentID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "memory.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write memory snapshot: %w", err)
	}
	return nil
}
