package types

// TriggerResult is the payload returned by the manual trigger entry points.
type TriggerResult struct {
	Success       bool   `json:"success"`
	CorrelationID string `json:"correlationId"`
	Path          string `json:"path,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
}

func FailedTrigger(err error, correlationID string) TriggerResult {
	return TriggerResult{
		Success:       false,
		CorrelationID: correlationID,
		Error:         err.Error(),
		ErrorCode:     string(KindOf(err)),
	}
}
