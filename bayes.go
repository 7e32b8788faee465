package main

import (
	"math"
	"strings"

	"github.com/jbrukh/bayesian"
)

// memoClassifier is a local assist trained on the account's already
// categorized transactions. It runs before the AI path: a prediction above
// the confidence threshold saves a model call, everything else falls
// through. With the default threshold above 1.0 every memo falls through.
type memoClassifier struct {
	classes []bayesian.Class
	cl      *bayesian.Classifier
}

// memoTerms lowercases and tokenizes a memo for learning and scoring.
func memoTerms(memo string) []string {
	memo = strings.ToLower(memo)
	memo = strings.ReplaceAll(memo, "*", " ")
	return strings.Fields(memo)
}

// trainMemoClassifier learns memo -> category from transactions that already
// carry a usable category. Returns nil when there is not enough signal
// (fewer than two categories) to classify at all.
func trainMemoClassifier(txns []ledgerTxn) *memoClassifier {
	byCategory := make(map[string][][]string)
	for _, t := range txns {
		cat := strings.TrimSpace(t.CategoryName)
		if cat == "" || cat == sentinel || cat == "Split" {
			continue
		}
		terms := memoTerms(t.Memo)
		if len(terms) == 0 {
			continue
		}
		byCategory[cat] = append(byCategory[cat], terms)
	}
	if len(byCategory) < 2 {
		return nil
	}

	m := &memoClassifier{}
	for cat := range byCategory {
		m.classes = append(m.classes, bayesian.Class(cat))
	}
	m.cl = bayesian.NewClassifierTfIdf(m.classes...)
	for cat, docs := range byCategory {
		for _, terms := range docs {
			m.cl.Learn(terms, bayesian.Class(cat))
		}
	}
	m.cl.ConvertTermsFreqToTfIdf()
	return m
}

// predict returns the top category and its softmax-normalized confidence.
func (m *memoClassifier) predict(memo string) (string, float64) {
	terms := memoTerms(memo)
	if len(terms) == 0 {
		return "", 0
	}
	scores, _, _ := m.cl.LogScores(terms)
	if len(scores) == 0 {
		return "", 0
	}

	best := 0
	maxScore := scores[0]
	for i, s := range scores {
		if s > maxScore {
			maxScore = s
			best = i
		}
	}
	var sumExp float64
	for _, s := range scores {
		sumExp += math.Exp(s - maxScore)
	}
	if sumExp == 0 {
		return "", 0
	}
	return string(m.classes[best]), 1 / sumExp
}
