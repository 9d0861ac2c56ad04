package interpret

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexText decodes a field the service sends as a string, a list of
// strings, or a {"value": ...} object. It never fails.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = flexText(s)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var s flexText
			_ = s.UnmarshalJSON(item)
			if s != "" {
				parts = append(parts, string(s))
			}
		}
		*t = flexText(strings.Join(parts, ", "))
	case '{':
		var obj struct {
			Value flexText `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err == nil {
			*t = obj.Value
		}
	default:
		// Numbers and booleans keep their literal text.
		*t = flexText(data)
	}
	return nil
}

// flexNumber decodes a number that may arrive quoted. Anything else is 0.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = flexNumber(f)
			return nil
		}
	}
	*n = 0
	return nil
}

// flexList decodes a string list that may arrive as one string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []flexText
		if err := json.Unmarshal(data, &items); err != nil {
			*l = nil
			return nil
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				out = append(out, string(it))
			}
		}
		*l = out
		return nil
	}
	var s flexText
	_ = s.UnmarshalJSON(data)
	if s == "" {
		*l = nil
	} else {
		*l = flexList{string(s)}
	}
	return nil
}

type rawSignal struct {
	Label          flexText   `json:"label"`
	Confidence     flexNumber `json:"confidence"`
	VisualAnalysis flexList   `json:"visual_analysis"`
}

type rawDetails struct {
	CommonNames     flexList `json:"common_names"`
	Description     flexText `json:"description"`
	WikiDescription flexText `json:"wiki_description"`
	Toxicity        flexText `json:"toxicity"`
	EdibleParts     flexText `json:"edible_parts"`
}

type rawSuggestion struct {
	PlantName   flexText    `json:"plant_name"`
	Name        flexText    `json:"name"`
	Probability flexNumber  `json:"probability"`
	Details     *rawDetails `json:"plant_details"`
}

// rawPayload is the union of every field the identify endpoint may send.
// Nested objects stay raw so a malformed branch cannot fail the whole decode.
type rawPayload struct {
	Error        json.RawMessage `json:"error"`
	Suggestion   flexText        `json:"suggestion"`
	Suggestions  json.RawMessage `json:"suggestions"`
	CNNInfo      json.RawMessage `json:"cnn_info"`
	EfficientNet json.RawMessage `json:"efficientnet_analysis"`
	rawSignal
}

// truthy reports whether a raw JSON value would count as set: not absent,
// null, false, zero or an empty string.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`, "0":
		return false
	}
	if raw[0] >= '0' && raw[0] <= '9' || raw[0] == '-' {
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
	return true
}

// isObject reports whether raw holds a JSON object.
func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
