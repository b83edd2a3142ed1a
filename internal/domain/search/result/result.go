package result

// Document is a search hit as returned by the search provider: field name to value.
type Document map[string]any

// Provider-internal keys removed before documents leave the service.
const (
	KeyScore         = "@search.score"
	KeyRerankerScore = "@search.rerankerScore"
	KeyChunkID       = "chunk_id"
	KeyParentID      = "parent_id"
)

var internalKeys = [...]string{KeyScore, KeyRerankerScore, KeyChunkID, KeyParentID}

// Clean strips provider-internal keys from every document, keeping order and all
// other fields. Input documents are not modified. Never returns nil.
func Clean(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, cleanOne(d))
	}
	return out
}

func cleanOne(d Document) Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	for _, k := range internalKeys {
		delete(c, k)
	}
	return c
}
