// Package prompts manages the editable prompt templates driving the pipeline.
// Templates are process-wide state: loaded once at startup, mutated only
// through Update, which snapshots the outgoing text to an append-only backup
// before the active version changes.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"pivotnote/internal/logger"
)

// Template names recognized by the store.
const (
	TemplateAnalysis         = "analysis"
	TemplateAssemblyIndia    = "assembly_india"
	TemplateAssemblyUSA      = "assembly_usa"
	TemplateDeepDiveResearch = "deepdive_research"
	TemplateDeepDiveScript   = "deepdive_script"
)

var knownTemplates = map[string]string{
	TemplateAnalysis:         defaultAnalysisTemplate,
	TemplateAssemblyIndia:    defaultAssemblyIndiaTemplate,
	TemplateAssemblyUSA:      defaultAssemblyUSATemplate,
	TemplateDeepDiveResearch: defaultDeepDiveResearchTemplate,
	TemplateDeepDiveScript:   defaultDeepDiveScriptTemplate,
}

// TemplateNames returns the recognized template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(knownTemplates))
	for name := range knownTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var backupPattern = regexp.MustCompile(`^(.+)\.v(\d+)\.\d{8}_\d{6}\.txt$`)

// Store is a file-backed prompt template store with backup-on-change
// versioning. Backups survive process restarts; mutations are serialized so a
// reader never observes a backup without its matching active version.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore opens (or creates) a prompt store rooted at dir and seeds any
// missing templates with their defaults.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, "backups"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create prompt directory: %w", err)
	}

	s := &Store{dir: dir}
	for name, text := range knownTemplates {
		path := s.activePath(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return nil, fmt.Errorf("failed to seed template %q: %w", name, err)
			}
			logger.Debug("seeded default prompt template", "name", name)
		}
	}
	return s, nil
}

func (s *Store) activePath(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// Get returns the active text of the named template.
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readActive(name)
}

func (s *Store) readActive(name string) (string, error) {
	if _, ok := knownTemplates[name]; !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	data, err := os.ReadFile(s.activePath(name))
	if err != nil {
		return "", fmt.Errorf("failed to read template %q: %w", name, err)
	}
	return string(data), nil
}

// Update replaces the active text of the named template, snapshotting the
// current text to a backup first. It returns the new version number
// (1-based across the template's whole history).
func (s *Store) Update(name, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := knownTemplates[name]; !ok {
		return 0, fmt.Errorf("unknown template %q", name)
	}
	if text == "" {
		return 0, fmt.Errorf("template %q: new text cannot be empty", name)
	}

	current, err := os.ReadFile(s.activePath(name))
	version := 1
	if err == nil {
		backupVersion := s.highestBackupVersion(name) + 1
		stamp := time.Now().Format("20060102_150405")
		backupName := fmt.Sprintf("%s.v%d.%s.txt", name, backupVersion, stamp)
		backupPath := filepath.Join(s.dir, "backups", backupName)
		if err := os.WriteFile(backupPath, current, 0o644); err != nil {
			return 0, fmt.Errorf("failed to back up template %q: %w", name, err)
		}
		version = backupVersion + 1
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read current template %q: %w", name, err)
	}

	if err := os.WriteFile(s.activePath(name), []byte(text), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write template %q: %w", name, err)
	}
	logger.Info("prompt template updated", "name", name, "version", version)
	return version, nil
}

// GetVersion returns the exact historical text of the named template.
// Version numbers start at 1; the highest version is the active text.
func (s *Store) GetVersion(name string, version int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := knownTemplates[name]; !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	if version < 1 {
		return "", fmt.Errorf("template %q: version must be >= 1, got %d", name, version)
	}

	latest := s.highestBackupVersion(name) + 1
	if version == latest {
		return s.readActive(name)
	}
	if version > latest {
		return "", fmt.Errorf("template %q: version %d does not exist (latest is %d)", name, version, latest)
	}

	path, err := s.backupPath(name, version)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %q version %d: %w", name, version, err)
	}
	return string(data), nil
}

// Versions returns the number of versions recorded for the template,
// including the active one.
func (s *Store) Versions(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := knownTemplates[name]; !ok {
		return 0, fmt.Errorf("unknown template %q", name)
	}
	return s.highestBackupVersion(name) + 1, nil
}

func (s *Store) highestBackupVersion(name string) int {
	entries, err := os.ReadDir(filepath.Join(s.dir, "backups"))
	if err != nil {
		return 0
	}
	highest := 0
	for _, e := range entries {
		m := backupPattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != name {
			continue
		}
		v, err := strconv.Atoi(m[2])
		if err == nil && v > highest {
			highest = v
		}
	}
	return highest
}

func (s *Store) backupPath(name string, version int) (string, error) {
	dir := filepath.Join(s.dir, "backups")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list backups: %w", err)
	}
	var matches []string
	for _, e := range entries {
		m := backupPattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != name {
			continue
		}
		if v, err := strconv.Atoi(m[2]); err == nil && v == version {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("template %q: no backup for version %d", name, version)
	}
	// Same version written twice within a second is impossible through Update,
	// but pick a deterministic winner anyway.
	sort.Strings(matches)
	return filepath.Join(dir, matches[0]), nil
}
