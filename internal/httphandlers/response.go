package httphandlers

import (
	"encoding/json"
	"net/http"
	"warden/internal/auth"
	"warden/internal/types"
)

const (
	authorizationHeader = "X-Access-Token"
)

type (
	response struct {
		Error   bool        `json:"error"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}
)

func serverError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, err)
}

func ok(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, response{
		Error:   false,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, errorCode int, err error) {
	errmsg := ""
	if err != nil {
		errmsg = err.Error()
	}

	writeJSON(w, errorCode, response{
		Error:   true,
		Message: errmsg,
	})
}

// writeTrigger writes a trigger result as is; the payload carries its own
// success flag and error code.
func writeTrigger(w http.ResponseWriter, result types.TriggerResult) {
	code := http.StatusOK
	if !result.Success {
		code = statusCode(types.ErrorKind(result.ErrorCode))
	}
	writeJSON(w, code, result)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	data, _ := json.Marshal(v)
	_, _ = w.Write(data)
}

func statusCode(kind types.ErrorKind) int {
	switch kind {
	case types.KindUnauthenticated:
		return http.StatusUnauthorized
	case types.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// tokenOf reads the bearer token, falling back to the access token header
// older clients send.
func tokenOf(r *http.Request) string {
	if token := auth.ExtractBearer(r); token != "" {
		return token
	}
	return r.Header.Get(authorizationHeader)
}
