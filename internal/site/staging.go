package site

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/prismicgen/internal/logfields"
)

// rename is replaced in tests to simulate a failing promote.
var rename = os.Rename

// stage is an isolated sibling directory the build is written into before
// it replaces the build directory.
type stage struct {
	dir    string
	final  string
	logger *slog.Logger
}

func beginStaging(buildDir string, logger *slog.Logger) (*stage, error) {
	dir := buildDir + "_stage"
	// Leftovers from an interrupted run must not leak into this one.
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear staging directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	logger.Debug("Initialized staging directory", "staging", dir, "final", buildDir)
	return &stage{dir: dir, final: buildDir, logger: logger}, nil
}

// finalize promotes the staging directory to the build directory:
//  1. Move the existing build directory (if any) to <build>.prev.
//  2. Rename staging to the build directory, restoring the backup on failure.
//  3. Remove the backup.
func (s *stage) finalize() error {
	if s.dir == "" {
		return fmt.Errorf("no staging directory initialized")
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("staging directory missing: %w", err)
	}

	prev := s.final + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		s.logger.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	backedUp := false
	if _, err := os.Stat(s.final); err == nil {
		if err := rename(s.final, prev); err != nil {
			return fmt.Errorf("backup existing build: %w", err)
		}
		backedUp = true
	}
	if err := rename(s.dir, s.final); err != nil {
		if backedUp {
			if rbErr := rename(prev, s.final); rbErr != nil {
				s.logger.Error("Failed to restore previous build",
					logfields.Path(s.final), logfields.Error(rbErr))
				return fmt.Errorf("promote staging: %w (restore previous build: %v)", err, rbErr)
			}
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	s.dir = ""
	if err := os.RemoveAll(prev); err != nil {
		s.logger.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	s.logger.Debug("Promoted staging directory", logfields.Path(s.final))
	return nil
}

// abort removes the staging directory after a failed write.
func (s *stage) abort() {
	if s.dir == "" {
		return
	}
	dir := s.dir
	s.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("Failed to remove staging directory after abort", "staging", dir, logfields.Error(err))
	}
}
