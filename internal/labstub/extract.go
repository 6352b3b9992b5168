package labstub

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"

	"github.com/medisage/medisage-client/internal/core/domain"
)

// referenceRanges is the stub's classification policy, matching the ranges
// the production extraction service applies.
var referenceRanges = map[string]struct {
	Low  float64
	High float64
	Unit string
}{
	"WBC":   {4000, 11000, "/cmm"},
	"RBC":   {4.2, 5.9, "mill/cmm"},
	"HbA1c": {4.0, 5.6, "%"},
	"SGPT":  {7, 56, "U/L"},
}

var (
	rbcPattern   = regexp.MustCompile(`(?i)RBC[:\s]+([\d.]+)`)
	wbcPattern   = regexp.MustCompile(`(?i)WBC[:\s]+([\d,.]+)`)
	hba1cPattern = regexp.MustCompile(`(?i)HbA1c[:\s]+([\d.]+)`)
	sgptPattern  = regexp.MustCompile(`(?i)(?:SGPT|ALT)[:\s]+([\d.]+)`)
)

// ExtractText pulls plain text out of a PDF document. Image uploads return
// an empty string: the stub carries no OCR engine, so photos are accepted
// but produce an empty analysis.
func ExtractText(fileName string, data []byte) (string, error) {
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return "", nil
	}
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var builder strings.Builder
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// ParseLabValues scans extracted text for the recognized parameters and
// classifies each against its reference range. Parameters that do not appear
// are simply absent from the result.
func ParseLabValues(text string) map[string]domain.LabResult {
	results := make(map[string]domain.LabResult)

	if m := rbcPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			results["RBC"] = classify("RBC", v)
		}
	}
	if m := wbcPattern.FindStringSubmatch(text); m != nil {
		// Thousands separators show up in counts like "11,000".
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			results["WBC"] = classify("WBC", v)
		}
	}
	if m := hba1cPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			results["HbA1c"] = classify("HbA1c", v)
		}
	}
	if m := sgptPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			results["SGPT"] = classify("SGPT", v)
		}
	}

	return results
}

func classify(parameter string, value float64) domain.LabResult {
	rr, ok := referenceRanges[parameter]
	if !ok {
		return domain.LabResult{Value: value}
	}
	status := domain.StatusNormal
	switch {
	case value < rr.Low:
		status = domain.StatusLow
	case value > rr.High:
		status = domain.StatusHigh
	}
	return domain.LabResult{Value: value, Unit: rr.Unit, Status: status}
}

// previewLimit caps extracted_text_preview at 200 characters.
const previewLimit = 200

func preview(text string) string {
	if len(text) <= previewLimit {
		return text
	}
	// Back off to a rune boundary so the cut never emits invalid UTF-8.
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
