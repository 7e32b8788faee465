package main

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestResolveCategory(t *testing.T) {
	vocab := []string{"Kids Supplies 👶", "Wardrobe", "Home Maintenance & Decor", sentinel}

	cases := []struct {
		in   string
		want string
	}{
		{"Wardrobe", "Wardrobe"},
		{"Kids Supplies 👶", "Kids Supplies 👶"},
		// Emoji and case dropped by the model.
		{"kids supplies", "Kids Supplies 👶"},
		{"KIDS SUPPLIES 👶", "Kids Supplies 👶"},
		// Substring in either direction.
		{"Home Maintenance", "Home Maintenance & Decor"},
		{"Home Maintenance & Decor (misc)", "Home Maintenance & Decor"},
		// Nothing usable falls to the sentinel.
		{"Cryptocurrency", sentinel},
		{"", sentinel},
		{"👶", sentinel},
	}
	for _, c := range cases {
		if got := resolveCategory(c.in, vocab); got != c.want {
			t.Errorf("resolveCategory(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAIMapping(t *testing.T) {
	t.Run("plainJSON", func(t *testing.T) {
		m, err := parseAIMapping(`{"0": "Wardrobe", "1": "Groceries"}`)
		if err != nil {
			t.Fatalf("parseAIMapping error: %v", err)
		}
		if m["0"] != "Wardrobe" || m["1"] != "Groceries" {
			t.Errorf("parseAIMapping = %v", m)
		}
	})

	t.Run("fencedWithChatter", func(t *testing.T) {
		text := "Sure, here you go:\n```json\n{\"0\": \"Wardrobe\"}\n```\nLet me know!"
		m, err := parseAIMapping(text)
		if err != nil {
			t.Fatalf("parseAIMapping error: %v", err)
		}
		if m["0"] != "Wardrobe" {
			t.Errorf("parseAIMapping = %v", m)
		}
	})

	t.Run("emptyObject", func(t *testing.T) {
		m, err := parseAIMapping("{}")
		if err != nil {
			t.Fatalf("parseAIMapping error: %v", err)
		}
		if len(m) != 0 {
			t.Errorf("parseAIMapping = %v, want empty", m)
		}
	})

	t.Run("noBraces", func(t *testing.T) {
		if _, err := parseAIMapping("I could not categorize these."); err == nil {
			t.Error("parseAIMapping should fail without a JSON object")
		}
	})

	t.Run("malformedJSON", func(t *testing.T) {
		if _, err := parseAIMapping(`{"0": "Wardrobe"`); err == nil {
			t.Error("parseAIMapping should fail on malformed JSON")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := parseAIMapping("   "); err == nil {
			t.Error("parseAIMapping should fail on an empty response")
		}
	})
}

func TestClassifyBatches(t *testing.T) {
	vocab := []string{"Wardrobe", "Groceries"}
	memos := []string{"m0", "m1", "m2", "m3"}

	t.Run("nilClassifier", func(t *testing.T) {
		got := classifyBatches(context.Background(), nil, memos, vocab, 2, 100)
		for i := range memos {
			if got[i] != sentinel {
				t.Errorf("memo %d = %q, want sentinel", i, got[i])
			}
		}
	})

	t.Run("failedBatchStaysSentinel", func(t *testing.T) {
		var calls int
		classify := func(ctx context.Context, prompt string) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("rate limited")
			}
			return `{"0": "Wardrobe", "1": "groceries"}`, nil
		}
		got := classifyBatches(context.Background(), classify, memos, vocab, 2, 100)
		if calls != 2 {
			t.Fatalf("classify called %d times, want 2", calls)
		}
		// First batch failed, defaults stand.
		if got[0] != sentinel || got[1] != sentinel {
			t.Errorf("failed batch = %q, %q, want sentinels", got[0], got[1])
		}
		// Second batch indexes are offset by the batch start.
		if got[2] != "Wardrobe" || got[3] != "Groceries" {
			t.Errorf("second batch = %q, %q, want Wardrobe, Groceries", got[2], got[3])
		}
	})

	t.Run("outOfRangeIndexIgnored", func(t *testing.T) {
		classify := func(ctx context.Context, prompt string) (string, error) {
			return `{"0": "Wardrobe", "7": "Groceries", "x": "Groceries"}`, nil
		}
		got := classifyBatches(context.Background(), classify, memos[:2], vocab, 10, 100)
		if got[0] != "Wardrobe" || got[1] != sentinel {
			t.Errorf("got %v, want index 0 resolved and 1 sentinel", got)
		}
	})
}

func TestVerifyCategories(t *testing.T) {
	vocab := []string{"Wardrobe", "Groceries"}
	items := []verifyItem{
		{ID: "t1", Memo: "running shoes", Category: "Groceries"},
		{ID: "t2", Memo: "bananas", Category: "Groceries"},
	}

	classify := func(ctx context.Context, prompt string) (string, error) {
		return `{"t1": "Wardrobe", "t2": "Something Unknown"}`, nil
	}
	fixes := verifyCategories(context.Background(), classify, items, vocab)
	if fixes["t1"] != "Wardrobe" {
		t.Errorf("fixes[t1] = %q, want Wardrobe", fixes["t1"])
	}
	// Unresolvable suggestions are dropped, not applied as the sentinel.
	if _, ok := fixes["t2"]; ok {
		t.Errorf("fixes[t2] = %q, want absent", fixes["t2"])
	}

	if got := verifyCategories(context.Background(), nil, items, vocab); len(got) != 0 {
		t.Errorf("nil classifier should propose no fixes, got %v", got)
	}
}

func TestBuildClassifyPrompt(t *testing.T) {
	prompt := buildClassifyPrompt([]string{"USB cable", "diapers"}, []string{"Tech", "Kids"}, 50)
	for _, want := range []string{"0. USB cable", "1. diapers", "- Tech", "- Kids"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
