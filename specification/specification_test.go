/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package specification

import "testing"

type order struct {
	Total  float64
	Status string
}

func TestCombinators(t *testing.T) {
	large := ByFunc[order](func(o order) bool { return o.Total >= 100 })
	open := ByFunc[order](func(o order) bool { return o.Status == "open" })

	bigOpen := order{Total: 250, Status: "open"}
	smallOpen := order{Total: 10, Status: "open"}
	bigClosed := order{Total: 250, Status: "closed"}

	if !large.IsSatisfiedBy(bigOpen) || large.IsSatisfiedBy(smallOpen) {
		t.Fatal("ByFunc predicate misbehaves")
	}

	and := And(large, open)
	if !and.IsSatisfiedBy(bigOpen) {
		t.Error("And should match when both sides match")
	}
	if and.IsSatisfiedBy(smallOpen) || and.IsSatisfiedBy(bigClosed) {
		t.Error("And should not match when a side fails")
	}

	or := Or(large, open)
	if !or.IsSatisfiedBy(smallOpen) || !or.IsSatisfiedBy(bigClosed) {
		t.Error("Or should match when either side matches")
	}
	if or.IsSatisfiedBy(order{Total: 10, Status: "closed"}) {
		t.Error("Or should not match when both sides fail")
	}

	not := Not(open)
	if not.IsSatisfiedBy(bigOpen) || !not.IsSatisfiedBy(bigClosed) {
		t.Error("Not should invert the inner specification")
	}

	nested := And(large, Not(open))
	if !nested.IsSatisfiedBy(bigClosed) || nested.IsSatisfiedBy(bigOpen) {
		t.Error("nested combinators should compose")
	}
}
