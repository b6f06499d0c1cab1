package types

import "time"

const (
	// ExportDir is the sub-path of a backup folder holding the document store export.
	ExportDir = "firestore"
	// UsersFile is the identity directory snapshot inside a backup folder.
	UsersFile = "auth/users.json"
)

type (
	StorageCredentials struct {
		Type          string `json:"type" validate:"oneof=File S3"`
		Endpoint      string `json:"endpoint" validate:"required_if=Type S3"`
		AccessKeyID   string `json:"access_key_id" validate:"required_if=Type S3"`
		SecretKey     string `json:"secret_key" validate:"required_if=Type S3"`
		Region        string `json:"region"`
		Bucket        string `json:"bucket" validate:"required_if=Type S3"`
		Secure        bool   `json:"secure"`
		RootDir       string `json:"root_dir" validate:"required_if=Type File"`
		RetentionDays int    `json:"retention_days" validate:"gte=0"`
	}

	// Heartbeat is the system marker document touched right before every export.
	Heartbeat struct {
		LastExportAt  time.Time `json:"lastExportAt"`
		CorrelationID string    `json:"correlationId"`
	}

	BackupResult struct {
		CorrelationID string `json:"correlationId"`
		Path          string `json:"path"`
		UserCount     int    `json:"userCount"`
	}

	// Signals are the liveness checks run against an imported backup.
	Signals struct {
		HeartbeatFound bool `json:"heartbeatFound"`
		UsersFound     bool `json:"usersFound"`
	}

	// CleanupResult is the outcome of emptying the isolated environment. A
	// Warning never fails the smoke test it belongs to.
	CleanupResult struct {
		Collections int   `json:"collections"`
		Deleted     int   `json:"deleted"`
		Warning     error `json:"-"`
	}

	SmokeTestResult struct {
		CorrelationID string        `json:"correlationId"`
		Path          string        `json:"path"`
		Signals       Signals       `json:"signals"`
		Cleanup       CleanupResult `json:"cleanup"`
	}
)

// Passed reports whether the imported backup looks alive. Either signal is
// enough: a backup missing only one of them still passes.
func (s Signals) Passed() bool {
	return s.HeartbeatFound || s.UsersFound
}

func (c CleanupResult) OK() bool {
	return c.Warning == nil
}
