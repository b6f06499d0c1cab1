package api

import "time"

type (
	TriggerResult struct {
		Success       bool   `json:"success"`
		CorrelationID string `json:"correlationId"`
		Path          string `json:"path"`
		Error         string `json:"error"`
		ErrorCode     string `json:"errorCode"`
	}

	BackupStatus struct {
		LastBackupTimestamp    *time.Time `json:"lastBackupTimestamp"`
		LastBackupStatus       string     `json:"lastBackupStatus"`
		LastBackupPath         *string    `json:"lastBackupPath"`
		LastBackupError        *string    `json:"lastBackupError"`
		BackupCorrelationID    string     `json:"backupCorrelationId"`
		LastSmokeTestTimestamp *time.Time `json:"lastSmokeTestTimestamp"`
		LastSmokeTestStatus    string     `json:"lastSmokeTestStatus"`
		LastSmokeTestError     *string    `json:"lastSmokeTestError"`
		SmokeTestCorrelationID string     `json:"smokeTestCorrelationId"`
	}

	Health struct {
		Status              string     `json:"status"`
		LastBackupTimestamp *time.Time `json:"lastBackupTimestamp"`
		LastBackupStatus    string     `json:"lastBackupStatus"`
	}
)
