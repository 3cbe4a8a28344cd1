package cohesion

import "testing"

func TestLexical_IdenticalText(t *testing.T) {
	l := NewLexical()
	score := l.Score("database indexing improves query performance", "database indexing improves query performance")
	if score < 0.999 {
		t.Errorf("expected near 1.0 for identical text, got %f", score)
	}
}

func TestLexical_DisjointText(t *testing.T) {
	l := NewLexical()
	score := l.Score("database indexing query performance", "garden roses bloom spring")
	if score != 0 {
		t.Errorf("expected 0 for disjoint text, got %f", score)
	}
}

func TestLexical_PartialOverlap(t *testing.T) {
	l := NewLexical()
	score := l.Score("database indexing improves performance", "database tuning improves latency")
	if score <= 0 || score >= 1 {
		t.Errorf("expected score strictly between 0 and 1, got %f", score)
	}
}

func TestLexical_StopwordsOnly(t *testing.T) {
	l := NewLexical()
	if score := l.Score("the and of", "the and of"); score != 0 {
		t.Errorf("expected 0 when both units are all stopwords, got %f", score)
	}
}

func TestLexical_EmptyInput(t *testing.T) {
	l := NewLexical()
	if score := l.Score("", "database indexing"); score != 0 {
		t.Errorf("expected 0 for empty input, got %f", score)
	}
}

func TestLexical_CaseInsensitive(t *testing.T) {
	l := NewLexical()
	score := l.Score("Database Indexing", "database indexing")
	if score < 0.999 {
		t.Errorf("expected near 1.0 regardless of case, got %f", score)
	}
}
