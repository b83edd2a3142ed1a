package request

// Fixed parameters of a hybrid semantic query.
const (
	QueryTypeSemantic  = "semantic"
	VectorKindText     = "text"
	CaptionsExtractive = "extractive"
	MaxAnswers         = 3
)

// VectorQuery asks the search service to vectorize Text and match it against Fields.
type VectorQuery struct {
	Kind   string
	Text   string
	Fields []string
}

// Hybrid is a combined semantic + vector query against one index.
type Hybrid struct {
	Index                 string
	Search                string
	Count                 bool
	VectorQueries         []VectorQuery
	QueryType             string
	SemanticConfiguration string
	Captions              string
	MaxAnswers            int
}

// NewHybrid builds the hybrid query for a request.
func NewHybrid(r Request) Hybrid {
	return Hybrid{
		Index:  r.Index(),
		Search: r.Query(),
		Count:  true,
		VectorQueries: []VectorQuery{{
			Kind:   VectorKindText,
			Text:   r.Query(),
			Fields: r.Fields(),
		}},
		QueryType:             QueryTypeSemantic,
		SemanticConfiguration: r.SemanticConfiguration(),
		Captions:              CaptionsExtractive,
		MaxAnswers:            MaxAnswers,
	}
}
