package faq

import "testing"

func TestAnswerExactMatch(t *testing.T) {
	r := New()

	answer, ok := r.Answer("hello")
	if !ok {
		t.Fatal("exact prompt should match")
	}
	if answer != "Hi there! Welcome to the server!" {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestAnswerIsCaseAndSpaceInsensitive(t *testing.T) {
	r := New()

	if _, ok := r.Answer("  HELLO  "); !ok {
		t.Error("casing and surrounding whitespace should not prevent a match")
	}
}

func TestAnswerFuzzyMatch(t *testing.T) {
	r := New()

	// "helo" is one edit from "hello": similarity 0.8, above the cutoff.
	answer, ok := r.Answer("helo")
	if !ok {
		t.Fatal("near-miss should still match")
	}
	if answer != "Hi there! Welcome to the server!" {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestAnswerRejectsNoise(t *testing.T) {
	r := New()

	cases := []string{
		"h",                    // too short
		"!daily",               // command prefix
		"qqqqqqqqqqqqqqqqqqqq", // nothing close
		"",
	}
	for _, input := range cases {
		if answer, ok := r.Answer(input); ok {
			t.Errorf("input %q should not match, got %q", input, answer)
		}
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"hello", "hello", 1},
		{"helo", "hello", 0.8},
		{"", "", 1},
		{"abc", "xyz", 0},
	}
	for _, tc := range cases {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestReactionChance(t *testing.T) {
	r := New()

	// Over many draws roughly 10% should fire. Bound loosely so the test
	// never flakes.
	hits := 0
	for i := 0; i < 2000; i++ {
		if _, ok := r.Reaction(); ok {
			hits++
		}
	}
	if hits == 0 || hits > 600 {
		t.Errorf("reaction rate wildly off: %d hits in 2000 draws", hits)
	}
}
