package sheets

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/okian/tally/internal/domain/model"
)

// readEnvelope covers `{data: [...]}` and `{success, data, error}`.
type readEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// decodeRows accepts a bare array, `{data: [...]}` or `{success, data}`.
// Array elements that are not objects become nil rows.
func decodeRows(raw json.RawMessage) ([]model.RemoteRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, goerr.Wrap(ErrMalformedResponse, "empty payload")
	}

	switch raw[0] {
	case '[':
		return decodeArray(raw)
	case '{':
		var env readEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, goerr.Wrap(ErrMalformedResponse, "decode envelope", goerr.V("cause", err.Error()))
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) > 0 && data[0] == '[' {
			return decodeArray(data)
		}
		if env.Success != nil && !*env.Success {
			return nil, goerr.Wrap(ErrRejected, firstNonEmpty(env.Error, env.Message, "read failed"))
		}
		return nil, goerr.Wrap(ErrMalformedResponse, "envelope has no data array")
	default:
		return nil, goerr.Wrap(ErrMalformedResponse, "payload is neither array nor object")
	}
}

func decodeArray(raw json.RawMessage) ([]model.RemoteRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, goerr.Wrap(ErrMalformedResponse, "decode array", goerr.V("cause", err.Error()))
	}
	rows := make([]model.RemoteRecord, 0, len(items))
	for _, item := range items {
		var row model.RemoteRecord
		if err := json.Unmarshal(item, &row); err != nil {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteResult is the backend's answer to a write action.
type WriteResult struct {
	Status      string `json:"status,omitempty"`
	Success     bool   `json:"success"`
	ID          string `json:"id,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	IsDuplicate bool   `json:"isDuplicate,omitempty"`
}

type writeEnvelope struct {
	Status      string `json:"status"`
	Success     *bool  `json:"success"`
	ID          any    `json:"id"`
	Message     string `json:"message"`
	Error       string `json:"error"`
	IsDuplicate bool   `json:"isDuplicate"`
}

// decodeWrite accepts `{status, id?, message?, isDuplicate?}` or `{success, error?}`.
func decodeWrite(raw json.RawMessage) (WriteResult, error) {
	var env writeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return WriteResult{}, goerr.Wrap(ErrMalformedResponse, "decode write result", goerr.V("cause", err.Error()))
	}
	if env.Status == "" && env.Success == nil {
		return WriteResult{}, goerr.Wrap(ErrMalformedResponse, "write result has neither status nor success")
	}
	res := WriteResult{
		Status:      env.Status,
		ID:          idString(env.ID),
		Message:     env.Message,
		Error:       env.Error,
		IsDuplicate: env.IsDuplicate,
	}
	if env.Success != nil {
		res.Success = *env.Success
	} else {
		res.Success = strings.EqualFold(env.Status, "success")
	}
	return res, nil
}

// err converts an unsuccessful result into ErrDuplicate or ErrRejected.
func (r WriteResult) err() error {
	switch {
	case r.Success:
		return nil
	case r.IsDuplicate:
		return goerr.Wrap(ErrDuplicate, firstNonEmpty(r.Message, "record already exists"))
	default:
		return goerr.Wrap(ErrRejected, firstNonEmpty(r.Message, r.Error, "unknown error"), goerr.V("status", r.Status))
	}
}

func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
