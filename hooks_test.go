package seotoolkit

import (
	"reflect"
	"testing"
)

func TestChainPriorityOrder(t *testing.T) {
	chain := NewChain[[]string, struct{}]()
	chain.Add(10, func(acc []string, _ struct{}) []string { return append(acc, "first-at-10") })
	chain.Add(5, func(acc []string, _ struct{}) []string { return append(acc, "at-5") })
	chain.Add(10, func(acc []string, _ struct{}) []string { return append(acc, "second-at-10") })

	got := chain.Apply(nil, struct{}{})
	want := []string{"at-5", "first-at-10", "second-at-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply order = %v, want %v", got, want)
	}
}

func TestChainRegistrationOrderWithinPriority(t *testing.T) {
	chain := NewChain[string, struct{}]()
	// Later registrations at equal priority run later, so they see (and may
	// replace) the earlier result.
	chain.Add(10, func(string, struct{}) string { return "early" })
	chain.Add(10, func(string, struct{}) string { return "late" })

	if got := chain.Apply("", struct{}{}); got != "late" {
		t.Errorf("Apply = %q, want %q", got, "late")
	}
}

func TestChainLen(t *testing.T) {
	chain := NewChain[int, int]()
	if chain.Len() != 0 {
		t.Errorf("Len = %d, want 0", chain.Len())
	}
	chain.Add(1, func(acc, _ int) int { return acc })
	if chain.Len() != 1 {
		t.Errorf("Len = %d, want 1", chain.Len())
	}
}
