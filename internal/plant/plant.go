package plant

import (
	"fmt"
	"math"

	"github.com/oapi-codegen/runtime/types"
)

// MaxImageBytes is the largest file accepted for identification (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

// AlternatesCap is the number of alternate suggestions kept for display.
const AlternatesCap = 3

// SelectedImage is the currently chosen file plus its decoded preview.
// At most one exists at a time; a new selection replaces it wholesale.
type SelectedImage struct {
	ID         string
	File       types.File
	PreviewURL string
}

// ClassifierSignal is the normalized output of the secondary (local) model.
type ClassifierSignal struct {
	Label          string
	Confidence     float64 // fraction in [0,1]
	VisualAnalysis string  // optional
}

// PlantDetails holds the optional descriptive data of a suggestion.
type PlantDetails struct {
	CommonNames []string
	Description string
	Toxicity    string
	EdibleParts string
}

// PlantSuggestion is one candidate species.
type PlantSuggestion struct {
	Name        string
	Probability float64 // fraction in [0,1]
	Details     *PlantDetails
}

// LocalTestResult is the output of the secondary-only test endpoint.
type LocalTestResult struct {
	IsPlant           bool     `json:"is_plant"`
	DetectedAs        string   `json:"detected_as"`
	Confidence        float64  `json:"confidence"`
	ConfidencePercent string   `json:"confidence_percent"`
	VisualAnalysis    []string `json:"visual_analysis"`
	Message           string   `json:"message,omitempty"`
}

// ModelInfo is the metadata served by the model-info endpoint.
type ModelInfo struct {
	Model           string `json:"model"`
	InputSize       string `json:"input_size,omitempty"`
	PretrainedOn    string `json:"pretrained_on,omitempty"`
	PlantCategories int    `json:"plant_categories,omitempty"`
	Note            string `json:"note,omitempty"`
}

// Percent formats a fraction as a percentage with one decimal digit.
// Exact ties round away from zero (87.25 -> 87.3); %.1f alone would round
// them to even.
func Percent(fraction float64) string {
	scaled := fraction * 100
	tenths := scaled * 10
	// The FMA residue is zero only when scaled*10 is exact, so a .5 here is a real tie.
	if tenths-math.Floor(tenths) == 0.5 && math.FMA(scaled, 10, -tenths) == 0 {
		scaled = math.Round(tenths) / 10
	}
	return fmt.Sprintf("%.1f%%", scaled)
}
