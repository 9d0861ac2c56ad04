// Package interpret turns a decoded identify response into a plant.Outcome.
//
// The identify endpoint answers with several payload shapes: an error
// envelope that may carry the local model's signal under cnn_info,
// efficientnet_analysis or at the top level, a list of suggestions, or
// neither. Decode classifies the shape once; Outcome maps it to a variant.
package interpret

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shahar-caura/plantid/internal/plant"
)

// SignalSource names the payload field a classifier signal was read from.
type SignalSource string

const (
	SourceCNNInfo      SignalSource = "cnn_info"
	SourceEfficientNet SignalSource = "efficientnet_analysis"
	SourcePayload      SignalSource = "payload"
)

// Signals maps each source present in the payload to its decoded signal.
type Signals map[SignalSource]*plant.ClassifierSignal

// Payload is the tagged union of identify response shapes.
type Payload interface {
	payload()
}

// ErrorPayload carries a top-level error indicator.
type ErrorPayload struct {
	Message    string
	Suggestion string
	Signals    Signals
}

// SuggestionsPayload carries a non-empty suggestion list.
type SuggestionsPayload struct {
	Suggestions []plant.PlantSuggestion
	Signals     Signals
}

// UnknownPayload is any other shape, including an empty suggestion list.
type UnknownPayload struct {
	Raw json.RawMessage
}

func (ErrorPayload) payload()       {}
func (SuggestionsPayload) payload() {}
func (UnknownPayload) payload()     {}

// Decode classifies a response body. Only malformed JSON is an error.
func Decode(data []byte) (Payload, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("interpret: response is not valid JSON")
	}
	trimmed := bytes.TrimSpace(data)
	if !isObject(trimmed) {
		return UnknownPayload{Raw: trimmed}, nil
	}

	var raw rawPayload
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("interpret: decoding response: %w", err)
	}

	signals := Signals{}
	for src, field := range map[SignalSource]json.RawMessage{
		SourceCNNInfo:      raw.CNNInfo,
		SourceEfficientNet: raw.EfficientNet,
	} {
		if sig := decodeSignal(field); sig != nil {
			signals[src] = sig
		}
	}

	if truthy(raw.Error) {
		signals[SourcePayload] = normalizeSignal(raw.rawSignal)
		return ErrorPayload{
			Message:    errorText(raw.Error),
			Suggestion: string(raw.Suggestion),
			Signals:    signals,
		}, nil
	}

	if suggestions := decodeSuggestions(raw.Suggestions); len(suggestions) > 0 {
		return SuggestionsPayload{Suggestions: suggestions, Signals: signals}, nil
	}

	return UnknownPayload{Raw: trimmed}, nil
}

// Outcome maps a decoded payload to the variant that gets rendered.
func Outcome(p Payload) plant.Outcome {
	switch p := p.(type) {
	case ErrorPayload:
		return plant.PartialFailure{
			ErrorMessage: p.Message,
			Classifier:   resolveSignal(p.Signals, true, SourceCNNInfo, SourceEfficientNet, SourcePayload),
			Suggestion:   p.Suggestion,
		}
	case SuggestionsPayload:
		alternates := p.Suggestions[1:]
		if len(alternates) > plant.AlternatesCap {
			alternates = alternates[:plant.AlternatesCap]
		}
		return plant.Success{
			Primary:    p.Suggestions[0],
			Alternates: append([]plant.PlantSuggestion(nil), alternates...),
			Classifier: resolveSignal(p.Signals, false, SourceEfficientNet, SourceCNNInfo),
		}
	default:
		return plant.EmptyResult{}
	}
}

// Interpret decodes data and returns its outcome.
func Interpret(data []byte) (plant.Outcome, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Outcome(p), nil
}

// resolveSignal returns the first signal found in order. With requireLabel
// set, signals without a label are skipped.
func resolveSignal(signals Signals, requireLabel bool, order ...SignalSource) *plant.ClassifierSignal {
	for _, src := range order {
		sig, ok := signals[src]
		if !ok || sig == nil {
			continue
		}
		if requireLabel && sig.Label == "" {
			continue
		}
		out := *sig
		return &out
	}
	return nil
}

func decodeSignal(raw json.RawMessage) *plant.ClassifierSignal {
	if !isObject(raw) {
		return nil
	}
	var rs rawSignal
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil
	}
	return normalizeSignal(rs)
}

func normalizeSignal(rs rawSignal) *plant.ClassifierSignal {
	return &plant.ClassifierSignal{
		Label:          strings.TrimSpace(string(rs.Label)),
		Confidence:     float64(rs.Confidence),
		VisualAnalysis: strings.Join(rs.VisualAnalysis, " | "),
	}
}

func decodeSuggestions(raw json.RawMessage) []plant.PlantSuggestion {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]plant.PlantSuggestion, 0, len(items))
	for _, item := range items {
		var rs rawSuggestion
		if isObject(item) {
			_ = json.Unmarshal(item, &rs)
		}
		out = append(out, normalizeSuggestion(rs))
	}
	return out
}

func normalizeSuggestion(rs rawSuggestion) plant.PlantSuggestion {
	name := string(rs.PlantName)
	if name == "" {
		name = string(rs.Name)
	}
	s := plant.PlantSuggestion{
		Name:        strings.TrimSpace(name),
		Probability: float64(rs.Probability),
	}
	if d := rs.Details; d != nil {
		desc := string(d.Description)
		if desc == "" {
			desc = string(d.WikiDescription)
		}
		s.Details = &plant.PlantDetails{
			CommonNames: []string(d.CommonNames),
			Description: desc,
			Toxicity:    string(d.Toxicity),
			EdibleParts: string(d.EdibleParts),
		}
	}
	return s
}

// errorText returns the error indicator as display text.
func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(bytes.TrimSpace(raw))
}
