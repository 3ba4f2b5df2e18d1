package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known artifact names inside a session directory.
const (
	ReportFile       = "report.md"
	ResearchPlanFile = "research_plan.md"
)

// Artifact is one named markdown artifact with its content.
type Artifact struct {
	Name    string
	Content string
}

// OpenSessionStore returns a store over an existing session directory,
// failing when the session does not exist.
func OpenSessionStore(outputDir, sessionID string) (*SessionStore, error) {
	root := filepath.Join(outputDir, sessionID)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("session %q not found under %s", sessionID, outputDir)
	}
	return &SessionStore{root: root}, nil
}

// ReadReport returns the final report of the session.
func (s *SessionStore) ReadReport() (string, error) {
	return s.ReadArtifact(ReportFile)
}

// ReadResearchPlan returns the saved research plan, empty when none was
// written.
func (s *SessionStore) ReadResearchPlan() (string, error) {
	content, err := s.ReadArtifact(ResearchPlanFile)
	if os.IsNotExist(err) {
		return "", nil
	}
	return content, err
}

// SubReports returns every markdown artifact other than the report and
// plan, sorted by name with contents loaded.
func (s *SessionStore) SubReports() ([]Artifact, error) {
	names, err := s.ListArtifacts(ReportFile, ResearchPlanFile)
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(names))
	for _, name := range names {
		content, err := s.ReadArtifact(name)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Name: name, Content: content})
	}
	return artifacts, nil
}
