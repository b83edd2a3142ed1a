package request

import "strings"

// Request is a search over one index, built from a resolved query.
type Request struct {
	query                 string
	index                 string
	fields                []string
	semanticConfiguration string
}

// New creates a search request. Empty field names are dropped.
func New(query, index string, fields []string, semanticConfiguration string) Request {
	var ff []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			ff = append(ff, f)
		}
	}
	return Request{
		query:                 query,
		index:                 index,
		fields:                ff,
		semanticConfiguration: semanticConfiguration,
	}
}

// Query returns the resolved search text.
func (r Request) Query() string { return r.query }

// Index returns the target index name.
func (r Request) Index() string { return r.index }

// Fields returns the vector fields the text query is matched against.
func (r Request) Fields() []string { return r.fields }

// SemanticConfiguration returns the semantic ranker configuration name.
func (r Request) SemanticConfiguration() string { return r.semanticConfiguration }

// IsEmpty reports whether there is nothing to search for.
func (r Request) IsEmpty() bool { return r.query == "" }
