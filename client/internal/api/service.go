package api

import (
	"context"
	"errors"
)

type (
	Service interface {
		TriggerBackup(ctx context.Context) (TriggerResult, error)
		TriggerSmokeTest(ctx context.Context) (TriggerResult, error)
		Status(ctx context.Context) (BackupStatus, error)
		Health(ctx context.Context) (Health, error)
	}

	// Factory builds a Service from the saved login, so commands that do not
	// talk to the server work before login.
	Factory func() (Service, error)
)

type service struct {
	apiClient Client
}

func NewService(apiClient Client) Service {
	return service{apiClient: apiClient}
}

func (s service) TriggerBackup(ctx context.Context) (TriggerResult, error) {
	return s.trigger(ctx, "backups")
}

func (s service) TriggerSmokeTest(ctx context.Context) (TriggerResult, error) {
	return s.trigger(ctx, "smoke-tests")
}

// trigger returns the result payload even when the run failed, so callers
// can show the correlation id.
func (s service) trigger(ctx context.Context, path string) (TriggerResult, error) {
	var result TriggerResult
	err := s.apiClient.Do(ctx, Params{
		Method:   "POST",
		Path:     path,
		Response: &result,
	})

	var statusErr *StatusError
	if errors.As(err, &statusErr) && result.CorrelationID != "" {
		return result, nil
	}
	return result, err
}

func (s service) Status(ctx context.Context) (BackupStatus, error) {
	var response struct {
		Data BackupStatus `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     "status",
		Response: &response,
	})
	return response.Data, err
}

func (s service) Health(ctx context.Context) (Health, error) {
	var response struct {
		Data Health `json:"data"`
	}

	err := s.apiClient.Do(ctx, Params{
		Method:   "GET",
		Path:     "health",
		Response: &response,
	})

	var statusErr *StatusError
	if errors.As(err, &statusErr) && response.Data.Status != "" {
		return response.Data, nil
	}
	return response.Data, err
}
