package render

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/shahar-caura/plantid/internal/plant"
)

// Placeholder text used when the service leaves a field out.
const (
	UnidentifiedPlant = "Unidentified plant"
	UnknownName       = "Unknown"
	NotDetected       = "Not detected"
	NoDescription     = "Description not available."
	GenericError      = "Identification error"
	LocalNote         = "This test runs only the local model, without the external identification API."
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("outcome").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// View is rendered result content.
type View struct {
	HTML template.HTML
	// ScrollIntoView asks the page to smooth-scroll the result to the top.
	ScrollIntoView bool
}

type signalData struct {
	Label          string
	Confidence     string
	VisualAnalysis string
}

type suggestionData struct {
	Name        string
	Probability string
}

type successData struct {
	Name        string
	CommonNames []string
	Probability string
	Signal      signalData
	Description string
	Toxicity    string
	EdibleParts string
	Alternates  []suggestionData
}

type partialData struct {
	Message    string
	Signal     *signalData
	Suggestion string
}

type localData struct {
	plant.LocalTestResult
	Note string
}

// HTML renders an outcome. It has no side effects; equal outcomes give
// equal views.
func HTML(o plant.Outcome) View {
	switch o := o.(type) {
	case plant.Success:
		return View{HTML: execute("success", successView(o)), ScrollIntoView: true}
	case plant.PartialFailure:
		return View{HTML: execute("partial", partialView(o))}
	case plant.TransportFailure:
		return View{HTML: execute("transport", o.Message)}
	default:
		return View{HTML: execute("empty", nil)}
	}
}

// Local renders the result of the local model test.
func Local(r plant.LocalTestResult) View {
	return View{HTML: execute("local", localData{LocalTestResult: r, Note: LocalNote})}
}

// LocalFailure renders a failed local model test.
func LocalFailure(message string) View {
	return View{HTML: execute("local-failure", message)}
}

func successView(o plant.Success) successData {
	d := successData{
		Name:        orDefault(o.Primary.Name, UnidentifiedPlant),
		Probability: plant.Percent(o.Primary.Probability),
		Description: NoDescription,
	}
	if det := o.Primary.Details; det != nil {
		d.CommonNames = det.CommonNames
		d.Description = orDefault(det.Description, NoDescription)
		d.Toxicity = strings.TrimSpace(det.Toxicity)
		d.EdibleParts = strings.TrimSpace(det.EdibleParts)
	}

	if o.Classifier != nil {
		d.Signal = signalView(*o.Classifier)
	} else {
		d.Signal = signalData{Label: NotDetected, Confidence: plant.Percent(0)}
	}

	for _, alt := range o.Alternates {
		d.Alternates = append(d.Alternates, suggestionData{
			Name:        orDefault(alt.Name, UnknownName),
			Probability: plant.Percent(alt.Probability),
		})
	}
	return d
}

func partialView(o plant.PartialFailure) partialData {
	d := partialData{
		Message:    orDefault(o.ErrorMessage, GenericError),
		Suggestion: strings.TrimSpace(o.Suggestion),
	}
	if o.Classifier != nil {
		s := signalView(*o.Classifier)
		d.Signal = &s
	}
	return d
}

func signalView(s plant.ClassifierSignal) signalData {
	return signalData{
		Label:          orDefault(s.Label, NotDetected),
		Confidence:     plant.Percent(s.Confidence),
		VisualAnalysis: s.VisualAnalysis,
	}
}

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are fixed at build time; a failure here is a programming error.
		return template.HTML("<p>" + template.HTMLEscapeString(err.Error()) + "</p>")
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
