package models

import (
	"fmt"
)

// Icon tags understood by the treatment step cards
const (
	IconSpray    = "spray"
	IconCut      = "cut"
	IconWater    = "water"
	IconLeaf     = "leaf"
	IconPackage  = "package"
	IconEye      = "eye"
	IconSun      = "sun"
	IconDroplets = "droplets"
)

// DiagnosisResult is the canonical outcome of a leaf-image diagnosis.
//
// DiseaseName may be composite ("<crop> - <disease>"); LocalName then holds the
// crop part. Confidence is always within [0,1].
type DiagnosisResult struct {
	Healthy              bool          `json:"healthy"`
	DiseaseName          string        `json:"diseaseName"`
	Confidence           float64       `json:"confidence"`
	Treatment            []string      `json:"treatment"`
	PreventativeMeasures []string      `json:"preventativeMeasures"`
	LocalName            string        `json:"localName,omitempty"`
	AdviceTitle          string        `json:"adviceTitle,omitempty"`
	VisualAdvice         *VisualAdvice `json:"visualAdvice,omitempty"`
	Source               string        `json:"source"`
	IsPlant              bool          `json:"is_plant"`
	VisualSymptoms       string        `json:"visual_symptoms,omitempty"`
	Method               string        `json:"method,omitempty"`
}

// VisualAdvice is the card-oriented summary rendered next to a diagnosis
type VisualAdvice struct {
	Title        string          `json:"title"`
	MedicineName string          `json:"medicine_name"`
	Treatment    string          `json:"treatment,omitempty"`
	Prevention   string          `json:"prevention,omitempty"`
	Steps        []TreatmentStep `json:"steps"`
}

// TreatmentStep is one illustrated instruction
type TreatmentStep struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Validate checks the DiagnosisResult invariants.
func (d DiagnosisResult) Validate() error {
	if d.DiseaseName == "" {
		return fmt.Errorf("diseaseName is empty")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %.3f outside [0,1]", d.Confidence)
	}
	if !d.IsPlant && d.Healthy {
		return fmt.Errorf("non-plant result marked healthy")
	}
	if !d.IsPlant && len(d.Treatment) == 0 {
		return fmt.Errorf("non-plant result carries no guidance")
	}
	return nil
}

// Clone returns a deep copy so callers can mutate the result freely.
func (d DiagnosisResult) Clone() DiagnosisResult {
	out := d
	out.Treatment = cloneStrings(d.Treatment)
	out.PreventativeMeasures = cloneStrings(d.PreventativeMeasures)
	if d.VisualAdvice != nil {
		advice := *d.VisualAdvice
		advice.Steps = append([]TreatmentStep(nil), d.VisualAdvice.Steps...)
		out.VisualAdvice = &advice
	}
	return out
}

// ImageUpload is the payload of a diagnosis request
type ImageUpload struct {
	Filename string
	Content  []byte
	Language string
}

// SizeKB reports the upload size in kilobytes
func (u ImageUpload) SizeKB() float64 {
	return float64(len(u.Content)) / 1024
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
