package schemabuild

import (
	"math"
	"testing"

	"schemalens/domain/dataset"
	"schemalens/domain/schema"
)

func TestInferEmptyRecords(t *testing.T) {
	b := NewBuilder(nil)

	sch := b.Infer([]dataset.Record{}, DefaultConfig())
	if sch == nil {
		t.Fatal("expected a schema, got nil")
	}
	if sch.RecordCount != 0 || sch.SampledRecordCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", sch.RecordCount, sch.SampledRecordCount)
	}
	if sch.HasCompleteSchema() {
		t.Error("empty input should yield no fields")
	}
}

func TestInferKeyUnionAndNullability(t *testing.T) {
	b := NewBuilder(nil)
	records := []dataset.Record{
		{"id": 1, "email": "a@b.com"},
		{"id": 2},
		{"id": 3, "email": "c@d.com"},
	}

	sch := b.Infer(records, DefaultConfig())
	if len(sch.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(sch.Fields))
	}

	id, ok := sch.Field("id")
	if !ok {
		t.Fatal("missing id field")
	}
	if !id.Required || id.Nullable {
		t.Errorf("id required/nullable = %v/%v, want true/false", id.Required, id.Nullable)
	}
	if id.Type != schema.TypeInteger {
		t.Errorf("id type = %s, want integer", id.Type)
	}

	email, ok := sch.Field("email")
	if !ok {
		t.Fatal("missing email field")
	}
	if email.Required || !email.Nullable {
		t.Errorf("email required/nullable = %v/%v, want false/true", email.Required, email.Nullable)
	}
	if email.Type != schema.TypeEmail {
		t.Errorf("email type = %s, want email", email.Type)
	}
	// 2 emails over 3 sampled records, the absent entry diluting confidence
	if math.Abs(email.Confidence-2.0/3.0) > 1e-9 {
		t.Errorf("email confidence = %g, want 2/3", email.Confidence)
	}
	if math.Abs(email.NullPercent-1.0/3.0) > 1e-9 {
		t.Errorf("email null percent = %g, want 1/3", email.NullPercent)
	}
}

func TestInferPrimaryKeyCandidate(t *testing.T) {
	b := NewBuilder(nil)
	records := []dataset.Record{
		{"id": 1, "status": "open"},
		{"id": 2, "status": "open"},
		{"id": 3, "status": "closed"},
	}

	sch := b.Infer(records, DefaultConfig())

	id, _ := sch.Field("id")
	if !id.IsPrimaryKeyCandidate {
		t.Error("fully unique id column should be a primary key candidate")
	}
	if id.Cardinality != schema.CardinalityHigh {
		t.Errorf("id cardinality = %s, want high", id.Cardinality)
	}

	status, _ := sch.Field("status")
	if status.IsPrimaryKeyCandidate {
		t.Error("repeating status column should not be a primary key candidate")
	}
}

func TestInferNoPrimaryKeyWithNulls(t *testing.T) {
	b := NewBuilder(nil)
	records := []dataset.Record{
		{"id": 1},
		{"id": nil},
		{"id": 3},
	}

	sch := b.Infer(records, DefaultConfig())
	id, _ := sch.Field("id")
	if id.IsPrimaryKeyCandidate {
		t.Error("a column with nulls cannot be a primary key candidate")
	}
}

func TestInferSamplingCap(t *testing.T) {
	b := NewBuilder(nil)
	records := make([]dataset.Record, 50)
	for i := range records {
		records[i] = dataset.Record{"n": i}
	}

	cfg := DefaultConfig()
	cfg.SampleSize = 10
	sch := b.Infer(records, cfg)

	if sch.RecordCount != 50 {
		t.Errorf("record count = %d, want 50", sch.RecordCount)
	}
	if sch.SampledRecordCount != 10 {
		t.Errorf("sampled count = %d, want 10", sch.SampledRecordCount)
	}
	n, _ := sch.Field("n")
	if n.TotalCount != 10 {
		t.Errorf("field total count = %d, want the sampled 10", n.TotalCount)
	}
}

func TestInferStatisticsToggle(t *testing.T) {
	b := NewBuilder(nil)
	records := []dataset.Record{{"n": 1}, {"n": 2}}

	cfg := DefaultConfig()
	cfg.IncludeStatistics = false
	sch := b.Infer(records, cfg)
	n, _ := sch.Field("n")
	if n.Statistics != nil {
		t.Error("statistics should be omitted when disabled")
	}

	cfg.IncludeStatistics = true
	sch = b.Infer(records, cfg)
	n, _ = sch.Field("n")
	if n.Statistics == nil || n.Statistics.Numeric == nil {
		t.Error("expected numeric statistics when enabled")
	}
}

func TestInferUUIDColumnIsIdentifier(t *testing.T) {
	b := NewBuilder(nil)
	records := []dataset.Record{
		{"token": "550e8400-e29b-41d4-a716-446655440000"},
		{"token": "6fa459ea-ee8a-3ca4-894e-db77e160355e"},
	}

	sch := b.Infer(records, DefaultConfig())
	token, _ := sch.Field("token")
	if token.Type != schema.TypeIdentifier {
		t.Errorf("token type = %s, want identifier", token.Type)
	}
	if !token.IsPrimaryKeyCandidate {
		t.Error("fully unique identifier column should be a primary key candidate")
	}
}
