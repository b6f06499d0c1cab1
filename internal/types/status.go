package types

import "time"

type RunStatus string

const (
	StatusSuccess RunStatus = "SUCCESS"
	StatusFailed  RunStatus = "FAILED"
)

const (
	StatusCollection    = "backup_status"
	StatusDocumentID    = "latest"
	HeartbeatCollection = "_system"
	HeartbeatDocumentID = "heartbeat"
	UsersCollection     = "users"
)

type (
	// BackupStatus is the singleton record read by the dashboard and the
	// liveness alert. Backup and smoke test fields are owned by different
	// pipelines and only ever written through their own outcome type.
	BackupStatus struct {
		LastBackupTimestamp    *time.Time `json:"lastBackupTimestamp,omitempty"`
		LastBackupStatus       RunStatus  `json:"lastBackupStatus,omitempty"`
		LastBackupPath         *string    `json:"lastBackupPath"`
		LastBackupError        *string    `json:"lastBackupError"`
		BackupCorrelationID    string     `json:"backupCorrelationId,omitempty"`
		LastSmokeTestTimestamp *time.Time `json:"lastSmokeTestTimestamp,omitempty"`
		LastSmokeTestStatus    RunStatus  `json:"lastSmokeTestStatus,omitempty"`
		LastSmokeTestError     *string    `json:"lastSmokeTestError"`
		SmokeTestCorrelationID string     `json:"smokeTestCorrelationId,omitempty"`
		UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
	}

	BackupOutcome struct {
		At            time.Time
		Status        RunStatus
		Path          string
		Error         string
		CorrelationID string
	}

	SmokeTestOutcome struct {
		At            time.Time
		Status        RunStatus
		Error         string
		CorrelationID string
	}

	Health struct {
		Status                 string     `json:"status"`
		LastBackupTimestamp    *time.Time `json:"lastBackupTimestamp,omitempty"`
		LastBackupStatus       RunStatus  `json:"lastBackupStatus,omitempty"`
		LastSmokeTestTimestamp *time.Time `json:"lastSmokeTestTimestamp,omitempty"`
		LastSmokeTestStatus    RunStatus  `json:"lastSmokeTestStatus,omitempty"`
	}
)

// Fields returns the backup family of the status record. A failed run keeps
// the previous path so the verifier still targets the last good backup.
func (o BackupOutcome) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"lastBackupTimestamp": o.At,
		"lastBackupStatus":    o.Status,
		"backupCorrelationId": o.CorrelationID,
		"updatedAt":           o.At,
	}
	if o.Status == StatusSuccess {
		fields["lastBackupPath"] = o.Path
		fields["lastBackupError"] = nil
	} else {
		fields["lastBackupError"] = o.Error
	}
	return fields
}

func (o SmokeTestOutcome) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"lastSmokeTestTimestamp": o.At,
		"lastSmokeTestStatus":    o.Status,
		"smokeTestCorrelationId": o.CorrelationID,
		"lastSmokeTestError":     nil,
		"updatedAt":              o.At,
	}
	if o.Status != StatusSuccess {
		fields["lastSmokeTestError"] = o.Error
	}
	return fields
}
