// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

// Process names used in event details; the browser routes events by them.
const (
	ProcessLetters    = "processEngagementLetters"
	ProcessSettings   = "userSettings"
	ProcessEntities   = "checkEntities"
	ProcessPrint      = "printToPDF"
	ProcessSignatures = "addSignatures"
)

// StepDetail accompanies processing events.
type StepDetail struct {
	Process string `json:"process"`
	Method  string `json:"method"`
	Message string `json:"message"`
}

// ErrorDetail accompanies process-error events.
type ErrorDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Process string `json:"process"`
	Method  string `json:"method"`
}

// ResultDetail accompanies process-results events, one per file.
type ResultDetail struct {
	Process  string `json:"process"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Output   string `json:"output,omitempty"`
}

// ProgressDetail accompanies progress events. Value is the fraction of
// files handled so far.
type ProgressDetail struct {
	Process string  `json:"process"`
	Value   float64 `json:"value"`
}
