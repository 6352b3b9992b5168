package domain

import "time"

// ResultStatus is the classification assigned to a lab value by the remote
// extraction service. The client treats it as authoritative and never
// recomputes it from the measured value.
type ResultStatus string

const (
	StatusNormal ResultStatus = "Normal"
	StatusHigh   ResultStatus = "High"
	StatusLow    ResultStatus = "Low"
)

// LabResult is one extracted parameter: measured value, unit, and the
// server-side classification against the reference range.
type LabResult struct {
	Value  float64      `json:"value"`
	Unit   string       `json:"unit"`
	Status ResultStatus `json:"status"`
}

// Report is a single uploaded document plus its server-derived lab analysis.
// Reports are created by a successful upload or bulk fetch and never mutated
// afterwards. An empty LabResults map means extraction found nothing, which
// is distinct from "not yet analyzed".
type Report struct {
	ReportID             string               `json:"report_id"`
	UserID               string               `json:"user_id"`
	FileName             string               `json:"file_name"`
	UploadTime           time.Time            `json:"upload_time"`
	LabResults           map[string]LabResult `json:"lab_results"`
	ExtractedTextPreview string               `json:"extracted_text_preview,omitempty"`
}

// HasAbnormalValues reports whether any lab result deviates from Normal.
// False for reports with no extracted values.
func (r *Report) HasAbnormalValues() bool {
	for _, lr := range r.LabResults {
		if lr.Status != StatusNormal {
			return true
		}
	}
	return false
}
