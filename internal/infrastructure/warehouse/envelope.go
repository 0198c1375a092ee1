package warehouse

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Envelope is the outer response structure every SDC operation returns.
// Request-level validity and operation-level success are reported
// separately: a request can be accepted (IsValid "True") and still fail
// (Result not "SUCCESS").
type Envelope struct {
	OperationResult OperationResult `json:"OperationResult"`
}

// OperationResult carries request validation and the operation outcome
type OperationResult struct {
	Request RequestStatus `json:"Request"`
	Result  Outcome       `json:"Result"`
}

// RequestStatus reports whether the request passed validation.
// IsValid is the literal string "True" or "False", not a JSON boolean.
type RequestStatus struct {
	IsValid string        `json:"IsValid"`
	Errors  RequestErrors `json:"Errors"`
}

// RequestErrors wraps the error detail node
type RequestErrors struct {
	Error ErrorList `json:"Error"`
}

// RequestError is a single request validation error
type RequestError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// ErrorList tolerates the API returning either a single error object or
// a list of them under the same key
type ErrorList []RequestError

// UnmarshalJSON accepts both `{"Message":...}` and `[{"Message":...}]`
func (l *ErrorList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []RequestError
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var single RequestError
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*l = ErrorList{single}
	return nil
}

// Outcome is the operation-level result. Data is kept raw because the
// API returns an object for some operations and a list for others.
type Outcome struct {
	Result string          `json:"Result"`
	Data   json.RawMessage `json:"Data"`
}

// Valid reports whether the request passed validation
func (e *Envelope) Valid() bool {
	return e.OperationResult.Request.IsValid == "True"
}

// Succeeded reports whether the request was valid and the operation
// completed with result SUCCESS
func (e *Envelope) Succeeded() bool {
	return e.Valid() && e.OperationResult.Result.Result == "SUCCESS"
}

// ErrorMessages returns the request validation error messages
func (e *Envelope) ErrorMessages() []string {
	errs := e.OperationResult.Request.Errors.Error
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, re := range errs {
		msgs = append(msgs, re.Message)
	}
	return msgs
}

// HasErrorContaining reports whether any request error message contains
// the given substring
func (e *Envelope) HasErrorContaining(substr string) bool {
	for _, msg := range e.ErrorMessages() {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// DataList decodes Result.Data into a slice target. A single object is
// treated as a one-element list.
func (e *Envelope) DataList(out any) error {
	data := bytes.TrimSpace(e.OperationResult.Result.Data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '{' {
		wrapped := make([]byte, 0, len(data)+2)
		wrapped = append(wrapped, '[')
		wrapped = append(wrapped, data...)
		wrapped = append(wrapped, ']')
		return json.Unmarshal(wrapped, out)
	}
	return json.Unmarshal(data, out)
}

// DataObject decodes Result.Data into a struct target. When the API
// returns a list, the first element is used.
func (e *Envelope) DataObject(out any) error {
	data := bytes.TrimSpace(e.OperationResult.Result.Data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return json.Unmarshal(items[0], out)
	}
	return json.Unmarshal(data, out)
}

// FlexID is an identifier field the API serializes inconsistently,
// sometimes as a JSON number and sometimes as a string
type FlexID string

// UnmarshalJSON accepts both `123` and `"123"`
func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// Int returns the numeric value, 0 when empty or non-numeric
func (f FlexID) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return n
}

func (f FlexID) String() string {
	return string(f)
}
