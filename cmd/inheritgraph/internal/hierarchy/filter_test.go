// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hierarchy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/inheritgraph/cmd/inheritgraph/internal/classmap"
)

// chain builds {A:{B}, B:{C}, C:{}}.
func chain() classmap.ClassMap {
	m := classmap.ClassMap{}
	m.Set("A", "B")
	m.Set("B", "C")
	m.Set("C")
	return m
}

// robots builds a small hierarchy with a diamond, a mixin and a pure base:
//
//	Walker  -> Robot, LegsMixin
//	Roller  -> Robot, WheelsMixin
//	Hybrid  -> Walker, Roller
//	Robot   -> Machine
//	Machine -> Thread        (Thread is never a key)
//	Drone   -> Machine
//	LegsMixin, WheelsMixin -> {}
func robots() classmap.ClassMap {
	m := classmap.ClassMap{}
	m.Set("Walker", "Robot", "LegsMixin")
	m.Set("Roller", "Robot", "WheelsMixin")
	m.Set("Hybrid", "Walker", "Roller")
	m.Set("Robot", "Machine")
	m.Set("Machine", "Thread")
	m.Set("Drone", "Machine")
	m.Set("LegsMixin")
	m.Set("WheelsMixin")
	return m
}

func assertClosed(t *testing.T, m classmap.ClassMap) {
	t.Helper()
	for k, bases := range m {
		for b := range bases {
			assert.Truef(t, m.Has(b), "base %q of %q is not a key", b, k)
		}
	}
}

func TestFilter_IncludeChainScenario(t *testing.T) {
	got := Filter(chain(), classmap.NewNameSet("B"), nil)

	want := classmap.ClassMap{}
	want.Set("A", "B")
	want.Set("B", "C")
	want.Set("C")
	assert.True(t, want.Equal(got), "got %v", got)
}

func TestFilter_ExcludeChainScenario(t *testing.T) {
	got := Filter(chain(), nil, classmap.NewNameSet("B"))

	want := classmap.ClassMap{}
	want.Set("C")
	assert.True(t, want.Equal(got), "got %v", got)
}

func TestFilter_NoRootsIsNoOp(t *testing.T) {
	m := robots().Without(classmap.NewNameSet("Thread"))

	got := Filter(m, nil, nil)

	assert.Equal(t, m.Keys(), got.Keys())
	assert.Equal(t, m.Edges(), got.Edges())
}

func TestFilter_NoRootsOnOpenMapKeepsEdges(t *testing.T) {
	m := robots()

	got := Filter(m, classmap.NewNameSet(), classmap.NewNameSet())

	assert.Equal(t, m.Edges(), got.Edges())
	// Thread was only a base; it is reconnected as an isolated key.
	assert.True(t, got.Has("Thread"))
	assert.Empty(t, got.Bases("Thread"))
	assertClosed(t, got)
}

func TestFilter_IncludeLeafReconnectsSharedBase(t *testing.T) {
	got := Filter(robots(), classmap.NewNameSet("Walker", "Roller"), nil)

	assert.Equal(t, []string{"Hybrid", "LegsMixin", "Robot", "Roller", "Walker", "WheelsMixin"}, got.Keys())
	// Robot is a pure base pulled back in; its own base Machine is not a
	// pure base of the result, so the chain stops there.
	assert.Empty(t, got.Bases("Robot"))
	assertClosed(t, got)
}

func TestFilter_ReconnectsChainOfPureBases(t *testing.T) {
	m := classmap.ClassMap{}
	m.Set("Leaf", "Mid", "Top")
	m.Set("Mid", "Top")
	m.Set("Top")

	got := Filter(m, classmap.NewNameSet("Leaf"), nil)

	want := classmap.ClassMap{}
	want.Set("Leaf", "Mid", "Top")
	want.Set("Mid", "Top")
	want.Set("Top")
	assert.True(t, want.Equal(got), "got %v", got)
}

func TestFilter_IncludeMembership(t *testing.T) {
	m := robots()
	include := classmap.NewNameSet("Robot")

	got := Filter(m, include, nil)
	anc := NewAncestry(m)

	// Keys either match an include root themselves or are pure bases
	// referenced by a matching key.
	referenced := make(classmap.NameSet)
	for k, bases := range got {
		if anc.HasAnyAncestor(k, include) {
			referenced = referenced.Union(bases)
		}
	}
	for _, k := range got.Keys() {
		assert.Truef(t, anc.HasAnyAncestor(k, include) || referenced.Has(k),
			"%q is neither matched nor referenced by a match", k)
	}
	assert.Equal(t, []string{"Hybrid", "LegsMixin", "Machine", "Robot", "Roller", "Walker", "WheelsMixin"}, got.Keys())
	assert.NotContains(t, got.Keys(), "Drone")
}

func TestFilter_ExcludeMembership(t *testing.T) {
	m := robots()
	exclude := classmap.NewNameSet("Walker", "WheelsMixin")

	got := Filter(m, nil, exclude)
	anc := NewAncestry(m)

	for _, k := range got.Keys() {
		assert.Falsef(t, anc.HasAnyAncestor(k, exclude), "%q has an excluded ancestor", k)
	}
	assert.Equal(t, []string{"Drone", "LegsMixin", "Machine", "Robot", "Thread"}, got.Keys())
	assertClosed(t, got)
}

func TestFilter_UnknownRootsMatchNothing(t *testing.T) {
	m := robots()

	assert.Empty(t, Filter(m, classmap.NewNameSet("Nope"), nil))

	got := Filter(m, nil, classmap.NewNameSet("Nope"))
	assert.Equal(t, m.Edges(), got.Edges())
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	m := robots()
	before := m.Clone()

	_ = Filter(m, classmap.NewNameSet("Walker"), classmap.NewNameSet("LegsMixin"))

	assert.True(t, before.Equal(m))
}

func TestFilter_ClosureInvariant(t *testing.T) {
	m := robots()
	cases := []struct {
		name    string
		include []string
		exclude []string
	}{
		{"none", nil, nil},
		{"include robot", []string{"Robot"}, nil},
		{"include mixin", []string{"LegsMixin"}, nil},
		{"exclude machine", nil, []string{"Machine"}},
		{"include and exclude", []string{"Machine"}, []string{"Roller"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(m, classmap.NewNameSet(tc.include...), classmap.NewNameSet(tc.exclude...))
			assertClosed(t, got)
		})
	}
}

func TestFilter_CyclicInputTerminates(t *testing.T) {
	m := classmap.ClassMap{}
	m.Set("A", "B")
	m.Set("B", "A")
	m.Set("C", "A")

	got := Filter(m, classmap.NewNameSet("Z"), nil)
	assert.Empty(t, got)

	got = Filter(m, classmap.NewNameSet("A"), nil)
	assert.Equal(t, []string{"A", "B", "C"}, got.Keys())
}

func TestFilterStrict(t *testing.T) {
	got, err := FilterStrict(chain(), classmap.NewNameSet("B"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, got.Keys())

	m := chain()
	m.Set("C", "A")
	_, err = FilterStrict(m, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicHierarchy))

	var cycErr *CycleError
	require.True(t, errors.As(err, &cycErr))
	assert.Equal(t, [][]string{{"A", "B", "C"}}, cycErr.Cycles)
	assert.Contains(t, err.Error(), "A -> B -> C -> A")
}
