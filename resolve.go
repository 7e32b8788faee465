package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Batch sizes keep each request inside the model's context and output
// limits; they are payload bounds, not concurrency.
const (
	convertBatchSize = 30
	applyBatchSize   = 25

	convertPromptMemoLen = 300
	applyPromptMemoLen   = 250
	verifyPromptMemoLen  = 200
)

// normalizeCategory strips decorative symbol glyphs (emoji and friends) and
// surrounding whitespace, lower-casing the rest, so a model echo like
// "Kids Supplies 👶" can be matched to "Kids Supplies".
func normalizeCategory(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.So, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// resolveCategory coerces a free-text model response into the closed
// vocabulary: verbatim match, then normalized match, then normalized
// substring in either direction, then the sentinel.
func resolveCategory(response string, vocabulary []string) string {
	response = strings.TrimSpace(response)
	for _, c := range vocabulary {
		if response == c {
			return c
		}
	}
	norm := normalizeCategory(response)
	if norm == "" {
		return sentinel
	}
	for _, c := range vocabulary {
		if normalizeCategory(c) == norm {
			return c
		}
	}
	for _, c := range vocabulary {
		cn := normalizeCategory(c)
		if cn == "" {
			continue
		}
		if strings.Contains(cn, norm) || strings.Contains(norm, cn) {
			return c
		}
	}
	return sentinel
}

var fenceRe = regexp.MustCompile("```(?:json)?")

// parseAIMapping decodes a model reply expected to be a JSON object. The
// reply is untrusted: markdown fences are stripped and the object is located
// by its outermost braces before decoding. Any failure at any stage is one
// error; there is no partial result.
func parseAIMapping(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty response")
	}
	text = fenceRe.ReplaceAllString(text, "")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.Errorf("no JSON object found in response: %.80q", text)
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, errors.Wrap(err, "unable to decode response JSON")
	}
	return out, nil
}

func categoryList(vocabulary []string) string {
	var b strings.Builder
	for _, c := range vocabulary {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

// buildClassifyPrompt asks for a category per memo, indexed by position.
func buildClassifyPrompt(memos []string, vocabulary []string, memoLen int) string {
	var items strings.Builder
	for i, m := range memos {
		fmt.Fprintf(&items, "%d. %s\n", i, truncate(m, memoLen))
	}

	return fmt.Sprintf(`You are a budget categorization assistant. For each Amazon purchase below, determine the most appropriate budget category based on what the product actually is.

AVAILABLE CATEGORIES:
%s
ITEMS TO CATEGORIZE:
%s
INSTRUCTIONS:
1. Understand what each product actually is (not just keyword matching)
2. Consider the context:
   - Kids clothing, toys, books for children -> "Kids Supplies"
   - Adult clothing, shoes, accessories, footwear -> "Wardrobe"
   - Movie rentals, one-off streaming purchases -> "Family Fun & Dates"; recurring services -> "Subscriptions (Monthly)"
   - Health supplements, vitamins for adults -> "Medicine & Vitamins"
   - Light fixtures, sconces, bulbs -> "Light Fixtures" if available, else "Home Maintenance & Decor"
   - Coffee tables, ottomans, furniture -> "Coffee Table & Side Tables" if available, else "Home Maintenance & Decor"
   - Cleaning supplies, kitchenware, tools -> "Home Maintenance & Decor"
   - Gift cards -> "Gifts & Giving"
   - Spiritual or meditation books -> "Retreats"
   - Tech gadgets (chargers, mice, electronics for personal use) -> the owner's Fun Money category or appropriate
   - Personal-care items, beverages, drink mixes -> "Groceries" or the appropriate personal category
3. For mixed orders (multiple items), pick the category of the highest-value or primary item
4. If truly uncertain, use "Uncategorized"

Return ONLY a JSON object mapping item index to category name.
CRITICAL: You MUST use the EXACT category name from the list above, including any emojis.
Example:
{"0": "Kids Supplies", "1": "Wardrobe"}

JSON response:`, categoryList(vocabulary), items.String())
}

// classifyBatches assigns a vocabulary category to every memo by index. Each
// batch is one synchronous model call; a failed batch defaults its members
// to the sentinel and the remaining batches still run. A nil classify means
// everything is the sentinel.
func classifyBatches(ctx context.Context, classify classifyFunc, memos []string,
	vocabulary []string, batchSize, memoLen int) map[int]string {

	result := make(map[int]string, len(memos))
	for i := range memos {
		result[i] = sentinel
	}
	if classify == nil || len(memos) == 0 {
		return result
	}

	for start := 0; start < len(memos); start += batchSize {
		end := min(start+batchSize, len(memos))
		batch := memos[start:end]

		text, err := classify(ctx, buildClassifyPrompt(batch, vocabulary, memoLen))
		if err != nil {
			warnc("AI categorization failed for batch at %d: %v\n", start, err)
			continue
		}
		mapping, err := parseAIMapping(text)
		if err != nil {
			warnc("AI response unusable for batch at %d: %v\n", start, err)
			continue
		}
		for k, v := range mapping {
			idx, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil || idx < 0 || idx >= len(batch) {
				continue
			}
			result[start+idx] = resolveCategory(v, vocabulary)
		}
	}
	return result
}

// verifyItem is one remote transaction submitted for category verification.
type verifyItem struct {
	ID       string
	Memo     string
	Category string
}

// buildVerifyPrompt asks the model to flag transactions whose current
// category is wrong, keyed by transaction id. Correct ones are omitted.
func buildVerifyPrompt(items []verifyItem, vocabulary []string) string {
	var lines strings.Builder
	for _, it := range items {
		fmt.Fprintf(&lines, "ID:%s | Current: %s | Memo: %s\n",
			it.ID, it.Category, truncate(it.Memo, verifyPromptMemoLen))
	}

	return fmt.Sprintf(`You are a budget categorization assistant. For each Amazon transaction below, determine the CORRECT category based on what the product actually is.

AVAILABLE CATEGORIES:
%s
TRANSACTIONS TO VERIFY:
%s
INSTRUCTIONS:
1. Understand what each product actually is (reason about it, don't just keyword match)
2. If the memo is too short or vague (like just "Amazon..."), keep the current category unchanged
3. Only suggest a change if you're confident the current category is WRONG

Return ONLY a JSON object mapping transaction ID to the CORRECT category.
Only include transactions that need to be CHANGED (don't include ones that are already correct).
Use EXACT category names from the list above, including any emojis.
If all categories are correct, return: {}

JSON response:`, categoryList(vocabulary), lines.String())
}

// verifyCategories returns proposed fixes keyed by transaction id, already
// coerced into the vocabulary. Failed batches contribute no fixes.
func verifyCategories(ctx context.Context, classify classifyFunc, items []verifyItem,
	vocabulary []string) map[string]string {

	fixes := make(map[string]string)
	if classify == nil {
		return fixes
	}
	for start := 0; start < len(items); start += applyBatchSize {
		end := min(start+applyBatchSize, len(items))
		batch := items[start:end]

		text, err := classify(ctx, buildVerifyPrompt(batch, vocabulary))
		if err != nil {
			warnc("AI verification failed for batch at %d: %v\n", start, err)
			continue
		}
		mapping, err := parseAIMapping(text)
		if err != nil {
			warnc("AI verification response unusable for batch at %d: %v\n", start, err)
			continue
		}
		for id, v := range mapping {
			cat := resolveCategory(v, vocabulary)
			if cat == sentinel {
				continue
			}
			fixes[id] = cat
		}
	}
	return fixes
}
