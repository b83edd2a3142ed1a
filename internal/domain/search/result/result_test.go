package result

import (
	"reflect"
	"testing"
)

func TestClean_RemovesInternalKeys(t *testing.T) {
	docs := []Document{{
		"@search.score":         0.9,
		"@search.rerankerScore": 2.1,
		"chunk_id":              "x",
		"parent_id":             "p",
		"title":                 "T",
	}}

	got := Clean(docs)

	want := []Document{{"title": "T"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean() = %v, want %v", got, want)
	}
}

func TestClean_MissingKeysIsNotAnError(t *testing.T) {
	docs := []Document{{"title": "A"}, {"title": "B", "chunk_id": "c"}}

	got := Clean(docs)

	want := []Document{{"title": "A"}, {"title": "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clean() = %v, want %v", got, want)
	}
}

func TestClean_PreservesOrder(t *testing.T) {
	docs := []Document{{"n": 1}, {"n": 2}, {"n": 3}}

	got := Clean(docs)
	for i, d := range got {
		if d["n"] != i+1 {
			t.Errorf("doc %d has n=%v", i, d["n"])
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	docs := []Document{
		{"@search.score": 1.0, "title": "A", "content": "a"},
		{"parent_id": "p", "title": "B"},
	}

	once := Clean(docs)
	twice := Clean(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Clean is not idempotent: %v vs %v", once, twice)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	doc := Document{"chunk_id": "x", "title": "T"}

	_ = Clean([]Document{doc})

	if _, ok := doc["chunk_id"]; !ok {
		t.Error("input document was modified")
	}
}

func TestClean_NeverNil(t *testing.T) {
	if got := Clean(nil); got == nil {
		t.Error("Clean(nil) returned nil")
	}
}
