package app

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"prithvipulse/internal/errors"
	"prithvipulse/models"
)

const (
	defaultDiseaseName = "Unknown"
	defaultCropName    = "Unknown Crop"
	defaultTreatment   = "Consult agricultural expert"
	defaultPrevention  = "Follow integrated pest management"
	defaultMedicine    = "Consult local agricultural expert"
	defaultSource      = "AI Diagnostic System"
	notPlantSource     = "Gemini 3 Vision"
	errorSource        = "Error"
	cropNameSeparator  = " - "
	preventionJoiner   = " | "
)

// NormalizeDiagnosis converts a raw /scan_disease body into a DiagnosisResult.
//
// The backend speaks two vocabularies (camelCase and a snake_case analysis
// shape); every field is read through an explicit precedence chain. The second
// return value is FailureSemantic when the payload itself reports a failure.
// A body that is not a JSON object is a DECODE_ERROR.
//
// The function is pure: equal input always yields an equal result.
func NormalizeDiagnosis(raw []byte) (models.DiagnosisResult, models.FailureClass, error) {
	if !gjson.ValidBytes(raw) {
		return models.DiagnosisResult{}, models.FailureDecode, errors.Decode(fmt.Errorf("body is not valid JSON"))
	}
	data := gjson.ParseBytes(raw)
	if !data.IsObject() {
		return models.DiagnosisResult{}, models.FailureDecode, errors.Decode(fmt.Errorf("body is %s, want object", data.Type))
	}

	// is_plant is permissive: only an explicit false rejects the image
	if plant := data.Get("is_plant"); plant.Type == gjson.False {
		return notPlantResult(data), models.FailureSemantic, nil
	}

	if truthy(data.Get("error")) {
		return analysisFailedResult(data), models.FailureSemantic, nil
	}

	return successResult(data), models.FailureNone, nil
}

func notPlantResult(data gjson.Result) models.DiagnosisResult {
	return models.DiagnosisResult{
		Healthy:     false,
		DiseaseName: "Not a Plant Leaf",
		Confidence:  0,
		Treatment: []string{
			"Please upload a clear photo of a crop leaf",
			"Ensure the leaf is the main focus of the image",
			"Try again with better lighting",
		},
		PreventativeMeasures: []string{},
		LocalName:            "Invalid Image",
		AdviceTitle:          "No Plant Detected",
		Source:               firstString(data, notPlantSource, "source"),
		IsPlant:              false,
		VisualSymptoms:       "Image does not contain a recognizable plant leaf",
	}
}

func analysisFailedResult(data gjson.Result) models.DiagnosisResult {
	var steps []string
	if truthy(data.Get("gemini_error")) {
		steps = []string{
			"Gemini 3 failed: Check API key configuration",
			"Fallback model attempted but also failed",
			"Try again in a few moments, or upload a different leaf image",
		}
	} else {
		steps = []string{
			"Error analyzing image. Please try again with:",
			"- A clearer, well-lit photo",
			"- Focus on the affected area of the leaf",
			"- A JPG or PNG file",
		}
	}

	return models.DiagnosisResult{
		Healthy:              false,
		DiseaseName:          "Analysis Failed",
		Confidence:           0,
		Treatment:            steps,
		PreventativeMeasures: []string{},
		LocalName:            "Error",
		AdviceTitle:          "Could Not Diagnose",
		Source:               firstString(data, errorSource, "source"),
		IsPlant:              false,
	}
}

func successResult(data gjson.Result) models.DiagnosisResult {
	diseaseName := firstString(data, defaultDiseaseName, "diseaseName", "diagnosis_name")

	treatment := firstStringArray(data, "treatment", "physical_actions_checklist")
	if len(treatment) == 0 {
		treatment = []string{defaultTreatment}
	}

	measures := firstStringArray(data, "preventativeMeasures")
	if len(measures) == 0 {
		measures = []string{firstString(data, defaultPrevention, "preventative_measures")}
	}

	return models.DiagnosisResult{
		Healthy:              firstBool(data, false, "healthy", "is_healthy"),
		DiseaseName:          diseaseName,
		Confidence:           clampConfidence(data.Get("confidence")),
		Treatment:            treatment,
		PreventativeMeasures: measures,
		LocalName:            cropName(diseaseName),
		AdviceTitle:          diseaseName,
		VisualAdvice: &models.VisualAdvice{
			Title:        diseaseName,
			MedicineName: firstString(data, defaultMedicine, "chemical_prescription.specific_active_ingredients.0"),
			Treatment:    diseaseName,
			Prevention:   strings.Join(measures, preventionJoiner),
			Steps:        treatmentSteps(treatment),
		},
		Source:         firstString(data, defaultSource, "source"),
		IsPlant:        true,
		VisualSymptoms: firstString(data, "", "visual_symptoms", "professional_summary"),
		Method:         firstString(data, "", "method"),
	}
}

// cropName takes the crop part of "<crop> - <disease>". Names without the
// separator carry no crop.
func cropName(diseaseName string) string {
	crop, _, found := strings.Cut(diseaseName, cropNameSeparator)
	crop = strings.TrimSpace(crop)
	if !found || crop == "" {
		return defaultCropName
	}
	return crop
}

func clampConfidence(v gjson.Result) float64 {
	if v.Type != gjson.Number && v.Type != gjson.String {
		return 0
	}
	c := v.Float()
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// firstString returns the first non-empty string found along paths
func firstString(data gjson.Result, def string, paths ...string) string {
	for _, p := range paths {
		if v := data.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return def
}

// firstStringArray returns the first path holding an array, with non-string
// and blank elements dropped
func firstStringArray(data gjson.Result, paths ...string) []string {
	for _, p := range paths {
		v := data.Get(p)
		if !v.IsArray() {
			continue
		}
		out := []string{}
		for _, item := range v.Array() {
			if item.Type == gjson.String && strings.TrimSpace(item.Str) != "" {
				out = append(out, item.Str)
			}
		}
		return out
	}
	return nil
}

func firstBool(data gjson.Result, def bool, paths ...string) bool {
	for _, p := range paths {
		switch data.Get(p).Type {
		case gjson.True:
			return true
		case gjson.False:
			return false
		}
	}
	return def
}

// truthy follows the loose truthiness the backend markers are written with
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

var stepIconKeywords = []struct {
	icon     string
	keywords []string
}{
	{models.IconCut, []string{"prune", "remove", "cut", "destroy", "uproot"}},
	{models.IconSpray, []string{"spray", "fungicide", "pesticide", "insecticide", "apply"}},
	{models.IconDroplets, []string{"drip", "oil", "solution"}},
	{models.IconWater, []string{"water", "irrigat"}},
	{models.IconEye, []string{"monitor", "inspect", "observe", "check", "scout"}},
	{models.IconSun, []string{"sun", "light", "dry"}},
	{models.IconPackage, []string{"fertiliz", "compost", "manure", "npk"}},
}

// stepIcon picks an illustration tag for a treatment line
func stepIcon(line string) string {
	lower := strings.ToLower(line)
	for _, entry := range stepIconKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.icon
			}
		}
	}
	return models.IconLeaf
}

func treatmentSteps(lines []string) []models.TreatmentStep {
	steps := make([]models.TreatmentStep, 0, len(lines))
	for i, line := range lines {
		steps = append(steps, models.TreatmentStep{
			Action:      fmt.Sprintf("Step %d", i+1),
			Description: line,
			Icon:        stepIcon(line),
		})
	}
	return steps
}
