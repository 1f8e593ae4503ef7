package server

import (
	"time"

	"github.com/CK6170/densevec-go/models"
)

// APIError is the canonical error envelope returned by JSON endpoints.
// Code carries the engine outcome when the failure came from a vector
// operation.
type APIError struct {
	Error string           `json:"error"`
	Code  models.ErrorCode `json:"code,omitempty"`
}

// HealthResponse is returned by /api/health to confirm the server is running.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Vectors   int       `json:"vectors"`
}

// CreateVectorRequest creates a vector from values. Name is optional and is
// used as the key when the workspace is downloaded.
type CreateVectorRequest struct {
	Name   string    `json:"name,omitempty"`
	Values []float64 `json:"values"`
}

// SetDataRequest re-seeds an existing vector. Values must match its dimension.
type SetDataRequest struct {
	Values []float64 `json:"values"`
}

// ElementRequest writes one element.
type ElementRequest struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// ElementResponse is returned when reading one element.
type ElementResponse struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// ScaleRequest multiplies a vector in place.
type ScaleRequest struct {
	By float64 `json:"by"`
}

// VectorResponse is a snapshot of one workspace vector.
type VectorResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Dim           int       `json:"dim"`
	AllocatedSize int       `json:"allocatedSize"`
	Values        []float64 `json:"values"`
}

// OpRequest runs a two-operand (or, for norm, one-operand) operation.
//
// Op is one of add, sub, dot, equals, norm, copy, move, inc, dec, clone.
// For copy and move A is the destination and B the source; move removes B
// from the workspace when it succeeds. Norm names the kind (see
// models.ParseNorm) and defaults to second.
type OpRequest struct {
	Op   string  `json:"op"`
	A    string  `json:"a"`
	B    string  `json:"b,omitempty"`
	Norm string  `json:"norm,omitempty"`
	Tol  float64 `json:"tol,omitempty"`
	Name string  `json:"name,omitempty"`
}

// OpResponse carries whichever result the operation produced.
type OpResponse struct {
	Op     string           `json:"op"`
	Code   models.ErrorCode `json:"code"`
	Value  *float64         `json:"value,omitempty"`
	Equal  *bool            `json:"equal,omitempty"`
	Vector *VectorResponse  `json:"vector,omitempty"`
}

// UploadResponse lists the vectors created from an uploaded vector file.
type UploadResponse struct {
	Vectors []VectorResponse `json:"vectors"`
}

// LogRecord is the data of a "log" WebSocket message.
type LogRecord struct {
	Level    models.Level     `json:"level"`
	Code     models.ErrorCode `json:"code"`
	File     string           `json:"file,omitempty"`
	Function string           `json:"function,omitempty"`
	Line     int              `json:"line,omitempty"`
}
