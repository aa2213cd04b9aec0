package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterDoc(t *testing.T) {
	doc := filterDoc([]Condition{
		{Field: "title", Op: OpContainsFold, Value: "love"},
		{Field: "songType", Op: OpEquals, Value: "single"},
	})

	if len(doc) != 2 {
		t.Fatalf("expected 2 elements, got %d: %+v", len(doc), doc)
	}

	title := doc[0]
	if title.Key != "title" {
		t.Fatalf("expected title key, got %q", title.Key)
	}
	re, ok := title.Value.(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex value, got %T", title.Value)
	}
	if re.Pattern != "love" || re.Options != "i" {
		t.Fatalf("unexpected regex: %+v", re)
	}

	songType := doc[1]
	if songType.Key != "songType" || songType.Value != "single" {
		t.Fatalf("unexpected equality condition: %+v", songType)
	}
}

// Metacharacters in user input must match literally, not as regex syntax.
func TestFilterDocEscapesRegex(t *testing.T) {
	doc := filterDoc([]Condition{
		{Field: "title", Op: OpContainsFold, Value: "what's up? (remix)"},
	})

	re := doc[0].Value.(primitive.Regex)
	want := `what's up\? \(remix\)`
	if re.Pattern != want {
		t.Fatalf("expected pattern %q, got %q", want, re.Pattern)
	}
}

func TestFilterDocEmpty(t *testing.T) {
	doc := filterDoc(nil)
	if len(doc) != 0 {
		t.Fatalf("expected empty filter, got %+v", doc)
	}
	if _, err := bson.Marshal(doc); err != nil {
		t.Fatalf("empty filter must marshal: %v", err)
	}
}
