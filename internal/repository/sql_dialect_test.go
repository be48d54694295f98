package repository

import (
	"testing"
)

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres should use ILIKE, got %s", got)
	}
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite should use LIKE, got %s", got)
	}
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("nil db should default to sqlite LIKE, got %s", got)
	}
}

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", "invoice_number", " ", "location")
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := `(invoice_number ILIKE ? ESCAPE '\' OR location ILIKE ? ESCAPE '\')`
	if condition != want {
		t.Fatalf("condition mismatch, want %s got %s", want, condition)
	}
	if condition, argCount := buildLikeConditionByDialect("sqlite"); condition != "" || argCount != 0 {
		t.Fatalf("empty columns should produce empty condition, got %q/%d", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs(containsPattern(" NF-1 "), 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%NF-1%" {
			t.Fatalf("args[%d] want %%NF-1%% got %v", idx, arg)
		}
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		" NF_1 ":  `%NF\_1%`,
		"100%":    `%100\%%`,
		`a\b`:     `%a\\b%`,
		"ABC1D23": "%ABC1D23%",
	}
	for input, want := range cases {
		if got := containsPattern(input); got != want {
			t.Fatalf("containsPattern(%q) want %s got %s", input, want, got)
		}
	}
}
