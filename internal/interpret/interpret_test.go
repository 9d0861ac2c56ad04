package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahar-caura/plantid/internal/plant"
)

func interpret(t *testing.T, body string) plant.Outcome {
	t.Helper()
	out, err := Interpret([]byte(body))
	require.NoError(t, err)
	return out
}

func TestInterpret_ErrorWithCNNInfo(t *testing.T) {
	out := interpret(t, `{
		"error": "A imagem pode não conter uma planta clara",
		"suggestion": "Tente uma foto mais próxima das folhas ou flores.",
		"cnn_info": {"label": "Rosa", "confidence": 0.87, "is_plant": false, "visual_analysis": "Cores vivas | Alto contraste"}
	}`)

	pf, ok := out.(plant.PartialFailure)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "A imagem pode não conter uma planta clara", pf.ErrorMessage)
	assert.Equal(t, "Tente uma foto mais próxima das folhas ou flores.", pf.Suggestion)
	require.NotNil(t, pf.Classifier)
	assert.Equal(t, "Rosa", pf.Classifier.Label)
	assert.Equal(t, "87.0%", plant.Percent(pf.Classifier.Confidence))
	assert.Equal(t, "Cores vivas | Alto contraste", pf.Classifier.VisualAnalysis)
}

func TestInterpret_ErrorSignalFallbackOrder(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantNil   bool
	}{
		{
			name:      "cnn_info wins over efficientnet_analysis",
			body:      `{"error":"x","cnn_info":{"label":"daisy"},"efficientnet_analysis":{"label":"tulip"}}`,
			wantLabel: "daisy",
		},
		{
			name:      "cnn_info without label falls through",
			body:      `{"error":"x","cnn_info":{"confidence":0.5},"efficientnet_analysis":{"label":"tulip"}}`,
			wantLabel: "tulip",
		},
		{
			name:      "top-level label is last resort",
			body:      `{"error":"x","label":"fern","confidence":0.2}`,
			wantLabel: "fern",
		},
		{
			name:    "no usable label anywhere",
			body:    `{"error":"x","cnn_info":{"label":""}}`,
			wantNil: true,
		},
		{
			name:      "cnn_info of the wrong type is ignored",
			body:      `{"error":"x","cnn_info":"broken","efficientnet_analysis":{"label":"oak"}}`,
			wantLabel: "oak",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, ok := interpret(t, tt.body).(plant.PartialFailure)
			require.True(t, ok)
			if tt.wantNil {
				assert.Nil(t, pf.Classifier)
				return
			}
			require.NotNil(t, pf.Classifier)
			assert.Equal(t, tt.wantLabel, pf.Classifier.Label)
		})
	}
}

func TestInterpret_ErrorTakesPrecedenceOverSuggestions(t *testing.T) {
	out := interpret(t, `{"error":"quota","suggestions":[{"plant_name":"Aloe Vera","probability":0.9}]}`)
	_, ok := out.(plant.PartialFailure)
	assert.True(t, ok, "got %T", out)
}

func TestInterpret_FalsyErrorIsIgnored(t *testing.T) {
	for _, body := range []string{
		`{"error":"","suggestions":[]}`,
		`{"error":null,"suggestions":[]}`,
		`{"error":false}`,
		`{"error":0}`,
	} {
		_, ok := interpret(t, body).(plant.EmptyResult)
		assert.True(t, ok, body)
	}
}

func TestInterpret_NonStringError(t *testing.T) {
	pf, ok := interpret(t, `{"error":{"message":"upstream down"}}`).(plant.PartialFailure)
	require.True(t, ok)
	assert.Equal(t, "upstream down", pf.ErrorMessage)

	pf, ok = interpret(t, `{"error":true}`).(plant.PartialFailure)
	require.True(t, ok)
	assert.Equal(t, "true", pf.ErrorMessage)
}

func TestInterpret_Success(t *testing.T) {
	out := interpret(t, `{
		"suggestions": [
			{"plant_name": "Aloe Vera", "probability": 0.92,
			 "plant_details": {"common_names": ["babosa", "aloe"], "description": {"value": "A succulent."},
			                   "toxicity": "Mild", "edible_parts": ["leaves"]}},
			{"plant_name": "Agave", "probability": 0.31}
		],
		"efficientnet_analysis": {"label": "pot", "confidence": 0.41}
	}`)

	s, ok := out.(plant.Success)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "Aloe Vera", s.Primary.Name)
	assert.Equal(t, "92.0%", plant.Percent(s.Primary.Probability))
	require.NotNil(t, s.Primary.Details)
	assert.Equal(t, []string{"babosa", "aloe"}, s.Primary.Details.CommonNames)
	assert.Equal(t, "A succulent.", s.Primary.Details.Description)
	assert.Equal(t, "Mild", s.Primary.Details.Toxicity)
	assert.Equal(t, "leaves", s.Primary.Details.EdibleParts)

	require.Len(t, s.Alternates, 1)
	assert.Equal(t, "Agave", s.Alternates[0].Name)
	assert.Equal(t, "31.0%", plant.Percent(s.Alternates[0].Probability))

	require.NotNil(t, s.Classifier)
	assert.Equal(t, "pot", s.Classifier.Label)
}

func TestInterpret_AlternatesCappedAtThree(t *testing.T) {
	out := interpret(t, `{"suggestions":[
		{"plant_name":"a","probability":0.6},
		{"plant_name":"b","probability":0.2},
		{"plant_name":"c","probability":0.1},
		{"plant_name":"d","probability":0.05},
		{"plant_name":"e","probability":0.03},
		{"plant_name":"f","probability":0.02}
	]}`)

	s, ok := out.(plant.Success)
	require.True(t, ok)
	require.Len(t, s.Alternates, 3)
	assert.Equal(t, "b", s.Alternates[0].Name)
	assert.Equal(t, "d", s.Alternates[2].Name)
}

func TestInterpret_SuccessSignalFallback(t *testing.T) {
	s := interpret(t, `{"suggestions":[{"plant_name":"x"}],"cnn_info":{"label":"leaf"}}`).(plant.Success)
	require.NotNil(t, s.Classifier)
	assert.Equal(t, "leaf", s.Classifier.Label)

	s = interpret(t, `{"suggestions":[{"plant_name":"x"}],"efficientnet_analysis":{"confidence":0.3},"cnn_info":{"label":"leaf"}}`).(plant.Success)
	require.NotNil(t, s.Classifier)
	assert.Empty(t, s.Classifier.Label, "efficientnet_analysis is taken even without a label")

	s = interpret(t, `{"suggestions":[{"plant_name":"x"}]}`).(plant.Success)
	assert.Nil(t, s.Classifier)
}

func TestInterpret_MissingFieldsDefault(t *testing.T) {
	s := interpret(t, `{"suggestions":[{}]}`).(plant.Success)
	assert.Empty(t, s.Primary.Name)
	assert.Equal(t, "0.0%", plant.Percent(s.Primary.Probability))
	assert.Nil(t, s.Primary.Details)
}

func TestInterpret_WikiDescriptionFallback(t *testing.T) {
	s := interpret(t, `{"suggestions":[{"plant_name":"x","plant_details":{"wiki_description":{"value":"From the wiki."}}}]}`).(plant.Success)
	require.NotNil(t, s.Primary.Details)
	assert.Equal(t, "From the wiki.", s.Primary.Details.Description)
}

func TestInterpret_Empty(t *testing.T) {
	for _, body := range []string{`{"suggestions":[]}`, `{}`, `[]`, `"ok"`, `{"suggestions":"nope"}`} {
		_, ok := interpret(t, body).(plant.EmptyResult)
		assert.True(t, ok, body)
	}
}

func TestDecode_UnknownArmKeepsRaw(t *testing.T) {
	p, err := Decode([]byte(` {"suggestions":[]} `))
	require.NoError(t, err)
	u, ok := p.(UnknownPayload)
	require.True(t, ok)
	assert.JSONEq(t, `{"suggestions":[]}`, string(u.Raw))
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode([]byte("<html>502 Bad Gateway</html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestInterpret_QuotedNumbers(t *testing.T) {
	pf := interpret(t, `{"error":"x","cnn_info":{"label":"Rosa","confidence":"0.5","visual_analysis":["a","b"]}}`).(plant.PartialFailure)
	require.NotNil(t, pf.Classifier)
	assert.Equal(t, "50.0%", plant.Percent(pf.Classifier.Confidence))
	assert.Equal(t, "a | b", pf.Classifier.VisualAnalysis)
}
