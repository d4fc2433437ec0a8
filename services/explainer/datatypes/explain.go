// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the JSON wire format of the explainer API.
//
// Field names on the wire are snake_case and are mapped explicitly from the
// analysis types, so internal naming can change without breaking clients.
package datatypes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/AleutianAI/CodeExplainer/services/explainer/analysis"
	"github.com/go-playground/validator/v10"
)

// MaxCodeBytes bounds the size of a submission.
const MaxCodeBytes = 1 << 20

var explainValidate *validator.Validate

func init() {
	explainValidate = validator.New()
	_ = explainValidate.RegisterValidation("maxbytes", validateMaxBytes)

	// Report wire names ("code") instead of Go field names ("Code").
	explainValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateMaxBytes checks byte length, not rune count.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxCodeBytes
}

// =============================================================================
// Request
// =============================================================================

// ExplainRequest is the body of POST /api/explain.
//
// # Fields
//
//   - Code: Required. May be empty or whitespace; it must be present.
//   - Language: Optional. Accepted and ignored.
//   - IncludeImprovements: Optional. Absent means true; an explicit null
//     means false.
//
// Pointers distinguish "absent" from the zero value.
type ExplainRequest struct {
	Code                *string  `json:"code" validate:"required,maxbytes"`
	Language            *string  `json:"language,omitempty"`
	IncludeImprovements NullBool `json:"include_improvements,omitzero"`
}

// NullBool is a JSON boolean that remembers whether it was present and
// whether it was null. The zero value is "absent".
type NullBool struct {
	Present bool
	Value   *bool
}

// Bool returns a present, non-null NullBool.
func Bool(v bool) NullBool {
	return NullBool{Present: true, Value: &v}
}

// IsZero reports whether the field was absent, for omitzero.
func (b NullBool) IsZero() bool { return !b.Present }

// UnmarshalJSON is only called when the key is present, including for null.
func (b *NullBool) UnmarshalJSON(data []byte) error {
	b.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		b.Value = nil
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b.Value = &v
	return nil
}

func (b NullBool) MarshalJSON() ([]byte, error) {
	if b.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*b.Value)
}

// Validate runs the validator tags and returns a readable error.
func (r *ExplainRequest) Validate() error {
	err := explainValidate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", fe.Field())
	case "maxbytes":
		return fmt.Sprintf("%s: exceeds %d bytes", fe.Field(), MaxCodeBytes)
	default:
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}

// SourceCode returns the submitted code, or "" if it was absent.
func (r *ExplainRequest) SourceCode() string {
	if r.Code == nil {
		return ""
	}
	return *r.Code
}

// WantsImprovements applies the include_improvements default: absent is
// true, null is false.
func (r *ExplainRequest) WantsImprovements() bool {
	if !r.IncludeImprovements.Present {
		return true
	}
	return r.IncludeImprovements.Value != nil && *r.IncludeImprovements.Value
}

// =============================================================================
// Response
// =============================================================================

// LineExplanation is one entry of ExplainResponse.Explanations.
type LineExplanation struct {
	LineNumber  int      `json:"line_number"`
	Code        string   `json:"code"`
	Explanation string   `json:"explanation"`
	Suggestions []string `json:"suggestions"`
}

// Improvements is the optional whole-submission summary.
type Improvements struct {
	TimeComplexity  *string  `json:"time_complexity"`
	SpaceComplexity *string  `json:"space_complexity"`
	BestPractices   []string `json:"best_practices"`
	ErrorFixes      []string `json:"error_fixes"`
}

// ExplainResponse is the 200 body of POST /api/explain.
type ExplainResponse struct {
	Complexity      string            `json:"complexity"`
	TimeComplexity  string            `json:"time_complexity"`
	SpaceComplexity string            `json:"space_complexity"`
	Explanations    []LineExplanation `json:"explanations"`
	Improvements    *Improvements     `json:"improvements"`
}

// NewExplainResponse maps an analysis result to the wire format.
//
// Empty per-line suggestion lists become null; explanations is always an
// array; improvements is null when the result carries none.
func NewExplainResponse(res analysis.Result) *ExplainResponse {
	out := &ExplainResponse{
		Complexity:      string(res.Complexity.Level),
		TimeComplexity:  res.Complexity.Time,
		SpaceComplexity: res.Complexity.Space,
		Explanations:    make([]LineExplanation, 0, len(res.Explanations)),
	}

	for _, e := range res.Explanations {
		line := LineExplanation{
			LineNumber:  e.LineNumber,
			Code:        e.Source,
			Explanation: e.Explanation,
		}
		if len(e.Suggestions) > 0 {
			line.Suggestions = e.Suggestions
		}
		out.Explanations = append(out.Explanations, line)
	}

	if imp := res.Improvements; imp != nil {
		out.Improvements = &Improvements{
			TimeComplexity:  imp.TimeNote,
			SpaceComplexity: imp.SpaceNote,
			BestPractices:   nonNil(imp.BestPractices),
			ErrorFixes:      nonNil(imp.ErrorFixes),
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}
