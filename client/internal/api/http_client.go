package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type (
	Config struct {
		Host  string
		Token string
	}

	Params struct {
		Method      string
		Path        string
		Body        interface{}
		Response    interface{}
		QueryParams map[string]string
		Headers     map[string]string
	}

	Client interface {
		// Do sends the request and decodes the body into Response. Error
		// responses are decoded too before a *StatusError is returned, since
		// trigger failures carry their correlation id in the body.
		Do(ctx context.Context, param Params) error
	}

	StatusError struct {
		Code    int
		Message string
	}

	client struct {
		httpClient *http.Client
		baseUrl    string
		token      string
	}
)

func NewClient(cfg Config) Client {
	host := cfg.Host
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	if !strings.HasSuffix(host, "v1/") {
		host += "v1/"
	}

	return &client{
		// pipelines run synchronously on the server and may take minutes
		httpClient: &http.Client{Timeout: 15 * time.Minute},
		baseUrl:    host,
		token:      cfg.Token,
	}
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Code)
	}
	return e.Message
}

func (c client) Do(ctx context.Context, param Params) error {
	requestUrl, err := url.Parse(c.baseUrl + param.Path)
	if err != nil {
		return err
	}

	if len(param.QueryParams) > 0 {
		values := url.Values{}
		for k, v := range param.QueryParams {
			values.Add(k, v)
		}
		requestUrl.RawQuery = values.Encode()
	}

	var body io.Reader
	if param.Body != nil {
		bodyBin, err := json.Marshal(param.Body)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(bodyBin)
	}

	req, err := http.NewRequestWithContext(ctx, param.Method, requestUrl.String(), body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range param.Headers {
		req.Header.Set(k, v)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if param.Response != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, param.Response); err != nil && resp.StatusCode < 300 {
			return err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp.StatusCode, responseBody)
	}
	return nil
}

// parseError reads the message of both the envelope ({"message": ...}) and
// the trigger payload ({"error": ...}).
func (c client) parseError(code int, b []byte) error {
	var errorResponse map[string]interface{}
	_ = json.Unmarshal(b, &errorResponse)

	statusErr := &StatusError{Code: code}
	for _, key := range []string{"message", "error"} {
		if v, ok := errorResponse[key].(string); ok && v != "" {
			statusErr.Message = v
			break
		}
	}
	return statusErr
}
