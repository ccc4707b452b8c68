package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"molt/internal/logging"
	"molt/internal/version"
)

type service struct {
	repository    selfupdate.Repository
	updater       *selfupdate.Updater
	backupManager *backupManager

	// State management
	mu            sync.RWMutex
	state         State
	latestRelease *selfupdate.Release
	lastChecked   *time.Time
	lastError     error

	// Disabled state
	enabled        bool
	disabledReason string

	logger *slog.Logger
}

// NewService creates a new updater service. The service comes back
// disabled (not nil) when self-update cannot work: source builds,
// missing repository slug, or no write permission to the binary.
func NewService(opts *Options) (Service, error) {
	logger := logging.GetLogger("updater")

	disabled := func(reason string) Service {
		logger.Warn("Update service disabled", "reason", reason)
		return &service{
			enabled:        false,
			disabledReason: reason,
			state:          StateIdle,
			logger:         logger,
		}
	}

	// Source builds have no release to compare against
	if version.Version == "dev" {
		return disabled("built from source, install a release binary to use self-update"), nil
	}

	if opts.Repository == "" {
		return disabled("no release repository configured"), nil
	}

	// Check write permission to the binary's directory
	canWrite, reason := checkWritePermission()
	if !canWrite {
		return disabled(reason), nil
	}

	// Create GitHub source
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	// Parse repository slug
	repo := selfupdate.ParseSlug(opts.Repository)

	// Create updater
	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	// Create backup manager
	backupMgr, err := newBackupManager(logger)
	if err != nil {
		logger.Warn("Failed to create backup manager", "error", err)
	}

	svc := &service{
		repository:    repo,
		updater:       updater,
		backupManager: backupMgr,
		state:         StateIdle,
		enabled:       true,
		logger:        logger,
	}

	return svc, nil
}

func checkWritePermission() (bool, string) {
	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Sprintf("failed to get executable path: %v", err)
	}

	// Resolve symlinks
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return false, fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	dir := filepath.Dir(exe)

	// Try creating temp file in same directory
	tmp := filepath.Join(dir, ".molt.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return true, ""
}

// IsEnabled returns whether the update service is operational.
func (s *service) IsEnabled() bool {
	return s.enabled
}

// DisabledReason returns why the update service is disabled.
// Returns empty string if the service is enabled.
func (s *service) DisabledReason() string {
	return s.disabledReason
}

// CheckForUpdate queries GitHub for the latest release and compares
// it against the current version. Returns update info without downloading.
func (s *service) CheckForUpdate(ctx context.Context) (*UpdateInfo, error) {
	if !s.enabled {
		return nil, newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	if !s.transitionTo(StateChecking, StateIdle, StateAvailable, StateError) {
		return nil, newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot check for updates in state %s", s.getState()), nil)
	}

	currentVersion := version.Version

	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	if err != nil {
		s.setError(err)
		return nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastChecked = &now
	s.mu.Unlock()

	if !found {
		s.setError(fmt.Errorf("repository not found or has no releases"))
		return nil, newError(ErrCodeNotFound, "repository not found or has no releases", nil)
	}

	if !release.GreaterThan(currentVersion) {
		s.transitionTo(StateIdle)
		return &UpdateInfo{
			CurrentVersion:  currentVersion,
			LatestVersion:   release.Version(),
			UpdateAvailable: false,
		}, nil
	}

	// Store release for later download
	s.mu.Lock()
	s.latestRelease = release
	s.mu.Unlock()
	s.transitionTo(StateAvailable)

	return &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.Version(),
		ReleaseNotes:    release.ReleaseNotes,
		ReleaseURL:      release.URL,
		PublishedAt:     release.PublishedAt,
		AssetSize:       release.AssetByteSize,
		UpdateAvailable: true,
	}, nil
}

// ApplyUpdate downloads and applies the latest update. Creates a backup
// of the current binary first, then replaces it in place. The running
// process keeps executing the old code until the next start.
func (s *service) ApplyUpdate(ctx context.Context) error {
	if !s.enabled {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	// If in idle state, check for updates first
	if s.getState() == StateIdle {
		info, err := s.CheckForUpdate(ctx)
		if err != nil {
			return err
		}
		if !info.UpdateAvailable {
			return newError(ErrCodeNoUpdate, "no update available", nil)
		}
	}

	if !s.transitionTo(StateDownloading, StateAvailable) {
		return newError(ErrCodeInvalidState,
			fmt.Sprintf("cannot apply update in state %s", s.getState()), nil)
	}

	// Create backup before applying
	if s.backupManager != nil {
		if err := s.backupManager.createBackup(); err != nil {
			s.setError(err)
			return newError(ErrCodeBackupFailed, "failed to create backup", err)
		}
	}

	s.transitionTo(StateApplying)

	// Get executable path
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		s.setError(err)
		s.attemptRollback()
		return newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}

	s.mu.RLock()
	release := s.latestRelease
	s.mu.RUnlock()

	// Apply the update
	if err := s.updater.UpdateTo(ctx, release, exe); err != nil {
		s.setError(err)
		s.attemptRollback()
		return newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	s.transitionTo(StateApplied)
	s.logger.Info("Update applied, restart molt to run the new version",
		"version", release.Version())

	return nil
}

// Rollback restores the previously backed up binary version.
func (s *service) Rollback(_ context.Context) error {
	if !s.enabled {
		return newError(ErrCodeDisabled, s.disabledReason, nil)
	}

	if s.backupManager == nil || !s.backupManager.hasBackup() {
		return newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}

	if err := s.backupManager.restore(); err != nil {
		return newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}

	s.transitionTo(StateRolledBack)
	s.logger.Info("Rollback completed, restart molt to run the restored version",
		"version", s.backupManager.backupVersion())

	return nil
}

// GetStatus returns the current update state including version info,
// any errors, and backup availability.
func (s *service) GetStatus(_ context.Context) *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &Status{
		State:          s.state,
		CurrentVersion: version.Version,
		LastChecked:    s.lastChecked,
	}

	if s.latestRelease != nil {
		status.TargetVersion = s.latestRelease.Version()
	}

	if s.lastError != nil {
		status.Error = s.lastError.Error()
	}

	if s.backupManager != nil {
		status.BackupAvailable = s.backupManager.hasBackup()
		status.BackupVersion = s.backupManager.backupVersion()
	}

	return status
}

func (s *service) transitionTo(newState State, validFromStates ...State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(validFromStates) > 0 && !slices.Contains(validFromStates, s.state) {
		return false
	}

	s.logger.Debug("State transition", "from", s.state, "to", newState)
	s.state = newState
	s.lastError = nil
	return true
}

func (s *service) getState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *service) setError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.state = StateError
	s.mu.Unlock()
}

func (s *service) attemptRollback() {
	if s.backupManager == nil || !s.backupManager.hasBackup() {
		s.logger.Error("No backup available for automatic rollback")
		return
	}

	if err := s.backupManager.restore(); err != nil {
		s.logger.Error("Failed to restore backup", "error", err)
		return
	}

	s.transitionTo(StateRolledBack)
	s.logger.Info("Automatic rollback completed")
}
