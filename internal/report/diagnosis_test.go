package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"prithvipulse/models"
)

func sampleResult() models.DiagnosisResult {
	return models.DiagnosisResult{
		DiseaseName:          "Tomato - Early Blight",
		Confidence:           0.91,
		Treatment:            []string{"Remove infected leaves", "Spray copper fungicide"},
		PreventativeMeasures: []string{"Rotate crops"},
		LocalName:            "Tomato",
		VisualAdvice:         &models.VisualAdvice{MedicineName: "Mancozeb 75% WP"},
		Source:               "Gemini 3 Vision",
		IsPlant:              true,
		VisualSymptoms:       "Concentric rings",
	}
}

func TestDiagnosisMarkdown(t *testing.T) {
	md := DiagnosisMarkdown(sampleResult(), models.Outcome{RequestID: "req-1", Source: models.SourceBackend})

	assert.True(t, strings.HasPrefix(md, "# Tomato - Early Blight\n"))
	assert.Contains(t, md, "| Confidence | 91% |")
	assert.Contains(t, md, "| Status | Diseased |")
	assert.Contains(t, md, "1. Remove infected leaves")
	assert.Contains(t, md, "2. Spray copper fungicide")
	assert.Contains(t, md, "- Rotate crops")
	assert.Contains(t, md, "**Mancozeb 75% WP**")
	assert.NotContains(t, md, "could not be reached")
}

func TestDiagnosisMarkdownFallbackNote(t *testing.T) {
	result := models.DiagnosisResult{DiseaseName: "Cannot connect to backend server", Treatment: []string{"✓ Restart"}, Source: "Error"}
	md := DiagnosisMarkdown(result, models.Outcome{Source: models.SourceFallback, Failure: models.FailureTransport})

	assert.Contains(t, md, "| Status | Not assessed |")
	assert.Contains(t, md, "could not be reached (transport)")
}

func TestDiagnosisHTMLEscapesBackendText(t *testing.T) {
	tests := []struct {
		name        string
		diseaseName string
		treatment   string
		contains    []string
		notContains []string
	}{
		{
			name:        "script in disease name",
			diseaseName: "Leaf <script>alert(1)</script> spot",
			treatment:   "Spray copper fungicide",
			contains:    []string{"<title>Diagnosis - Leaf &lt;script&gt;alert(1)&lt;/script&gt; spot</title>"},
			notContains: []string{"<script>", "&amp;lt;"},
		},
		{
			name:        "markdown link and emphasis in treatment",
			diseaseName: "Leaf Spot",
			treatment:   "Use *neem* [oil](javascript:x)",
			contains:    []string{"<title>Diagnosis - Leaf Spot</title>"},
			notContains: []string{`href="javascript`, "<em>neem</em>"},
		},
		{
			name:        "comparison signs are escaped once",
			diseaseName: "Rust & Blight",
			treatment:   "Keep dose < 5 g/L and > 2 g/L",
			contains:    []string{"<title>Diagnosis - Rust &amp; Blight</title>", "&lt; 5 g/L and &gt; 2 g/L"},
			notContains: []string{"&amp;lt;", "&amp;gt;", "&amp;amp;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sampleResult()
			result.DiseaseName = tt.diseaseName
			result.Treatment = []string{tt.treatment}

			page := string(DiagnosisHTML(result, models.Outcome{}))

			assert.Contains(t, page, "<html")
			assert.Contains(t, page, "<h1")
			for _, want := range tt.contains {
				assert.Contains(t, page, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, page, unwanted)
			}
		})
	}
}
