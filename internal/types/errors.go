package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline and gateway failures. Kinds are errors
// themselves so callers can match them with errors.Is.
type ErrorKind string

const (
	KindExport           ErrorKind = "export-failed"
	KindDirectoryList    ErrorKind = "directory-list-failed"
	KindSnapshotWrite    ErrorKind = "snapshot-write-failed"
	KindImport           ErrorKind = "import-failed"
	KindVerification     ErrorKind = "verification-failed"
	KindNoBackup         ErrorKind = "no-backup"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindPermissionDenied ErrorKind = "permission-denied"
	KindInternal         ErrorKind = "internal"
)

func (k ErrorKind) Error() string {
	return string(k)
}

type PipelineError struct {
	Kind          ErrorKind
	CorrelationID string
	Err           error
}

func NewPipelineError(kind ErrorKind, correlationID string, err error) *PipelineError {
	return &PipelineError{Kind: kind, CorrelationID: correlationID, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s [%s]", e.Kind, e.CorrelationID)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Kind, e.CorrelationID, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind carried by err, or KindInternal.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
