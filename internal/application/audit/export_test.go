package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxlens/backend/internal/domain/audit"
	"github.com/uxlens/backend/internal/domain/catalog"
)

func exportRecord(t *testing.T) *audit.Record {
	t.Helper()
	report := audit.BuildFallback(audit.StateDegradedL2, catalog.PageTypeLanding, false)
	return &audit.Record{
		ID:            uuid.New(),
		PageType:      catalog.PageTypeLanding,
		TargetURL:     "https://example.com",
		State:         report.AnalysisState,
		Model:         "test-model",
		CorrelationID: "corr-1",
		Report:        report,
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestExporter_JSON(t *testing.T) {
	exporter := NewExporter()
	rec := exportRecord(t)

	data, contentType, err := exporter.Export(rec, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, rec.ID.String(), doc["audit_id"])
	assert.Equal(t, "landing", doc["page_type"])
	assert.Equal(t, "degraded_l2", doc["analysis_state"])
	assert.NotNil(t, doc["report"])
}

func TestExporter_HTML(t *testing.T) {
	exporter := NewExporter()
	rec := exportRecord(t)

	data, contentType, err := exporter.Export(rec, FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", contentType)

	html := string(data)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, rec.Report.Issues[0].Title)
	assert.Contains(t, html, "https://example.com")
	// Degraded reports carry the checklist banner
	assert.Contains(t, html, "standing review checklist")
}

func TestExporter_HTMLEscapesUntrustedText(t *testing.T) {
	exporter := NewExporter()
	rec := exportRecord(t)
	rec.Report.Summary.Notes = `<script>alert("x")</script>`
	rec.Report.Issues[0].Problem = `"quoted" & <b>bold</b>`

	data, _, err := exporter.Export(rec, FormatHTML)
	require.NoError(t, err)

	html := string(data)
	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestExporter_UnknownFormat(t *testing.T) {
	exporter := NewExporter()

	_, _, err := exporter.Export(exportRecord(t), "pdf")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported export format"))
}
