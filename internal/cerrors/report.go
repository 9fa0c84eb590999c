package cerrors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emojicode/ecc/internal/token"
)

// Report is the canonical structured diagnostic. Every error and warning the
// compiler produces is built as one of these so the driver can interrupt the
// current declaration, keep compiling siblings, and still emit either the
// text stream or the JSON stream from the same values.
type Report struct {
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Message  string         `json:"message"`
	Pos      token.Pos      `json:"pos"`
	Warning  bool           `json:"warning,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Error implements the error interface so a Report can travel through
// ordinary Go error-returning code.
func (r *Report) Error() string {
	return r.String()
}

// String renders "<file>:<line>:<col>: <message>", with a "warning:" prefix
// for warnings.
func (r *Report) String() string {
	if r.Warning {
		return fmt.Sprintf("%s: warning: %s", r.Pos, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Pos, r.Message)
}

// ToJSON renders the report as a deterministic JSON object.
func (r *Report) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds an error-severity report.
func New(code, phase, message string, pos token.Pos) *Report {
	return &Report{Code: code, Phase: phase, Message: message, Pos: pos}
}

// Newf builds an error-severity report with a formatted message.
func Newf(code, phase string, pos token.Pos, format string, args ...any) *Report {
	return New(code, phase, fmt.Sprintf(format, args...), pos)
}

// Warn builds a warning-severity report.
func Warn(code, phase, message string, pos token.Pos) *Report {
	return &Report{Code: code, Phase: phase, Message: message, Pos: pos, Warning: true}
}

// Warnf builds a warning-severity report with a formatted message.
func Warnf(code, phase string, pos token.Pos, format string, args ...any) *Report {
	return Warn(code, phase, fmt.Sprintf(format, args...), pos)
}

// WithData attaches structured data and returns the same report for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// As extracts a *Report from an error chain.
func As(err error) (*Report, bool) {
	var r *Report
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
