package plant

// Outcome describes how one identification request resolved.
// Exactly one variant is produced per request/response cycle.
type Outcome interface {
	outcome()
}

// Success is a response carrying at least one suggestion.
type Success struct {
	Primary    PlantSuggestion
	Alternates []PlantSuggestion // at most AlternatesCap entries
	Classifier *ClassifierSignal // nil when the payload had none
}

// PartialFailure is a response with an explicit error indicator.
type PartialFailure struct {
	ErrorMessage string
	Classifier   *ClassifierSignal
	Suggestion   string
}

// EmptyResult is a response with no usable suggestions.
type EmptyResult struct{}

// TransportFailure means no well-formed response was received.
type TransportFailure struct {
	Message string
}

func (Success) outcome()          {}
func (PartialFailure) outcome()   {}
func (EmptyResult) outcome()      {}
func (TransportFailure) outcome() {}
