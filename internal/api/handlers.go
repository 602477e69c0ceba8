package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"schemalens/app"
	"schemalens/domain/dataset"
	"schemalens/domain/schema"
	"schemalens/internal/errors"
	"schemalens/internal/export"
)

// analysisOptions mirrors app.Options with pointer fields so requests can
// leave any option unset and pick up the server defaults.
type analysisOptions struct {
	SampleSize          *int     `json:"sampleSize,omitempty"`
	ConfidenceThreshold *float64 `json:"confidenceThreshold,omitempty"`
	DetectSpecialTypes  *bool    `json:"detectSpecialTypes,omitempty"`
	IncludeStatistics   *bool    `json:"includeStatistics,omitempty"`
	DetectOutliers      *bool    `json:"detectOutliers,omitempty"`
	ValidateReferences  *bool    `json:"validateReferences,omitempty"`
}

func (s *Server) resolveOptions(req *analysisOptions) app.Options {
	opts := app.DefaultOptions()
	opts.SampleSize = s.defaults.SampleSize
	opts.ConfidenceThreshold = s.defaults.ConfidenceThreshold
	opts.DetectSpecialTypes = s.defaults.DetectSpecialTypes
	opts.IncludeStatistics = s.defaults.IncludeStatistics
	if req == nil {
		return opts
	}
	if req.SampleSize != nil {
		opts.SampleSize = *req.SampleSize
	}
	if req.ConfidenceThreshold != nil {
		opts.ConfidenceThreshold = *req.ConfidenceThreshold
	}
	if req.DetectSpecialTypes != nil {
		opts.DetectSpecialTypes = *req.DetectSpecialTypes
	}
	if req.IncludeStatistics != nil {
		opts.IncludeStatistics = *req.IncludeStatistics
	}
	if req.DetectOutliers != nil {
		opts.DetectOutliers = *req.DetectOutliers
	}
	if req.ValidateReferences != nil {
		opts.ValidateReferences = *req.ValidateReferences
	}
	return opts
}

type inferRequest struct {
	Records []dataset.Record `json:"records"`
	Options *analysisOptions `json:"options,omitempty"`
}

func (s *Server) handleInferSchema(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body must be JSON with a records array"))
		return
	}
	sch, err := s.analyzer.InferSchema(req.Records, s.resolveOptions(req.Options))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

type analyzeRequest struct {
	Records []dataset.Record      `json:"records"`
	Schema  *schema.DatasetSchema `json:"schema,omitempty"`
	Options *analysisOptions      `json:"options,omitempty"`
}

func (s *Server) handleAnalyzeQuality(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body must be JSON with a records array"))
		return
	}
	report, err := s.analyzer.AnalyzeDataQuality(req.Records, req.Schema, s.resolveOptions(req.Options))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type exportRequest struct {
	Records           []dataset.Record      `json:"records,omitempty"`
	Schema            *schema.DatasetSchema `json:"schema,omitempty"`
	Options           *analysisOptions      `json:"options,omitempty"`
	RequiredByDefault bool                  `json:"requiredByDefault"`
	Format            string                `json:"format,omitempty"`
}

func (s *Server) handleExportSchema(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body must be JSON"))
		return
	}
	sch, err := s.resolveSchema(req.Schema, req.Records, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.analyzer.ConvertToSchemaDefinition(sch, export.Options{
		RequiredByDefault: req.RequiredByDefault,
		Format:            req.Format,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type describeRequest struct {
	Records []dataset.Record      `json:"records,omitempty"`
	Schema  *schema.DatasetSchema `json:"schema,omitempty"`
	Options *analysisOptions      `json:"options,omitempty"`
}

func (s *Server) handleDescribeSchema(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("request body must be JSON"))
		return
	}
	sch, err := s.resolveSchema(req.Schema, req.Records, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	md := s.analyzer.GetSchemaDescription(sch)

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(renderMarkdown(md))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}

// resolveSchema uses the supplied schema or infers one from the records
func (s *Server) resolveSchema(sch *schema.DatasetSchema, records []dataset.Record, opts *analysisOptions) (*schema.DatasetSchema, error) {
	if sch != nil {
		return sch, nil
	}
	if records == nil {
		return nil, errors.InvalidInput("either schema or records must be supplied")
	}
	return s.analyzer.InferSchema(records, s.resolveOptions(opts))
}

func renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.Render(doc, renderer)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeUnsupportedFormat:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
