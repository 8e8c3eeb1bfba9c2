/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package gc

import (
	"errors"
	"testing"
)

func newTestHeap(t *testing.T, regionSize int) *Heap {
	t.Helper()
	config := DefaultConfig()
	if regionSize > 0 {
		config.RegionSize = regionSize
	}
	h, err := NewHeap(config)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	t.Cleanup(h.Release)
	return h
}

// expectFatal runs f and checks that it panics with a FatalError.
func expectFatal(t *testing.T, what string, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Errorf("%s: expected a fatal error, got none", what)
			return
		}
		err, ok := r.(error)
		var fatal FatalError
		if !ok || !errors.As(err, &fatal) {
			t.Errorf("%s: expected FatalError, got %v", what, r)
		}
	}()
	f()
}

func TestHeapInitAndRelease(t *testing.T) {
	h := newTestHeap(t, 0)
	for _, a := range []Atom{h.Nil(), h.True(), h.False()} {
		if a == 0 {
			t.Fatalf("singleton not allocated")
		}
	}
	if h.Tag(h.Nil()) != TagNil || h.Tag(h.True()) != TagTrue || h.Tag(h.False()) != TagFalse {
		t.Errorf("singleton tags: %s %s %s", h.Tag(h.Nil()), h.Tag(h.True()), h.Tag(h.False()))
	}
	if h.Bool(true) != h.True() || h.Bool(false) != h.False() {
		t.Errorf("Bool does not return the singletons")
	}
	if n := len(h.Uncollected().Regions()); n != 1 {
		t.Errorf("uncollected regions = %d, want 1", n)
	}
	h.Release()
	h.Release()
	if h.Stats().MappedBytes != 0 {
		t.Errorf("MappedBytes after Release = %d", h.Stats().MappedBytes)
	}
}

func TestConfigValidation(t *testing.T) {
	config := DefaultConfig()
	config.RegionSize = 1000
	h, err := NewHeap(config)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	defer h.Release()
	if h.Config().RegionSize != Granularity {
		t.Errorf("RegionSize = %d, want rounding up to %d", h.Config().RegionSize, Granularity)
	}

	config.RegionSize = maxRegionSize + 1
	if _, err := NewHeap(config); err == nil {
		t.Errorf("oversized region accepted")
	}
	config = DefaultConfig()
	config.CollectAfter = -1
	if _, err := NewHeap(config); err == nil {
		t.Errorf("negative threshold accepted")
	}
}

func TestAllocPlacement(t *testing.T) {
	h := newTestHeap(t, 0)

	num := h.NewInt(7)
	space := h.NewSpace()
	if space.first == nil || space.first != space.last {
		t.Fatalf("new space should hold exactly one region")
	}
	region := space.last
	if num != makeAtom(region.id, 0) {
		t.Errorf("integer record at %v, want start of region %d", num, region.id)
	}

	str, data := h.Alloc(TagString, 13)
	if str != makeAtom(region.id, tagInfos[TagInt].size) {
		t.Errorf("string record at %v, want right behind the integer", str)
	}
	if len(data) != 13 {
		t.Fatalf("data length %d, want 13", len(data))
	}
	copy(data, "hello atom b!")
	// data grows downward from the end of the region, 8 byte aligned
	if got := h.Text(str); got != "hello atom b!" {
		t.Errorf("Text = %q", got)
	}
	wantFree := region.Size() - int(tagInfos[TagInt].size) - int(tagInfos[TagString].size) - 16
	if region.FreeBytes() != wantFree {
		t.Errorf("FreeBytes = %d, want %d", region.FreeBytes(), wantFree)
	}
	if h.CollectionPending() {
		t.Errorf("first region of new space must not request a collection")
	}
}

func TestAllocGrowsRegionAndRequestsCollection(t *testing.T) {
	h := newTestHeap(t, 64*1024)
	h.NewInt(1) // maps the first new region
	h.pending = false
	first := h.NewSpace().last
	for first.FreeBytes() > 4*1024 {
		a, data := h.Alloc(TagString, 4*1024)
		if a == 0 || len(data) != 4*1024 {
			t.Fatalf("filler allocation failed")
		}
	}
	if h.CollectionPending() {
		t.Fatalf("collection requested before growth")
	}
	h.Alloc(TagString, 4*1024)
	if !h.CollectionPending() {
		t.Errorf("growth did not request a collection")
	}
	s := h.NewSpace()
	if s.first == s.last || s.first.next != s.last {
		t.Errorf("expected a second region linked after the first")
	}
}

func TestOversizedAllocation(t *testing.T) {
	h := newTestHeap(t, 64*1024)
	big := make([]byte, 200*1024)
	for i := range big {
		big[i] = byte(i)
	}
	a := h.NewString(string(big))
	r, _ := h.locate(a)
	if r.Size() < 200*1024 || r.Size()%Granularity != 0 {
		t.Errorf("oversized region has %d bytes", r.Size())
	}
	if h.Text(a) != string(big) {
		t.Errorf("oversized string corrupted")
	}
}

func TestCollectAfterThreshold(t *testing.T) {
	config := DefaultConfig()
	config.CollectAfter = 1024
	h, err := NewHeap(config)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()
	h.NewInt(0)
	h.pending = false
	for i := 0; i < 100 && !h.CollectionPending(); i++ {
		h.NewInt(int64(i))
	}
	if !h.CollectionPending() {
		t.Errorf("threshold of 1024 bytes never requested a collection")
	}
}

func TestRecordConstructors(t *testing.T) {
	h := newTestHeap(t, 0)
	i := h.NewInt(-42)
	s := h.NewString("text")
	p := h.NewPair(i, s)
	e := h.NewError("bad %d", 3)
	env := h.NewEnv(nil)
	l := h.NewLambda(h.Nil(), p, env)
	b := h.NewBuiltin(func() int { return 5 })
	sy := h.NewSyntax("opaque")

	if h.Int(i) != -42 {
		t.Errorf("Int = %d", h.Int(i))
	}
	if h.First(p) != i || h.Rest(p) != s {
		t.Errorf("pair fields wrong")
	}
	if !h.IsError(e) || h.Text(e) != "bad 3" {
		t.Errorf("error record: %s %q", h.Tag(e), h.Text(e))
	}
	if h.LambdaParams(l) != h.Nil() || h.LambdaBody(l) != p || h.LambdaEnv(l) != env {
		t.Errorf("lambda fields wrong")
	}
	if fn, ok := h.Native(b).(func() int); !ok || fn() != 5 {
		t.Errorf("builtin lost its procedure")
	}
	if h.Native(sy) != "opaque" || h.Tag(sy) != TagSyntax {
		t.Errorf("syntax record wrong")
	}
	h.SetFirst(p, s)
	h.SetRest(p, i)
	if h.First(p) != s || h.Rest(p) != i {
		t.Errorf("SetFirst/SetRest had no effect")
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Int on a string did not panic")
			}
		}()
		h.Int(s)
	}()
	expectFatal(t, "unknown region", func() { h.Tag(makeAtom(999, 0)) })
	expectFatal(t, "null handle", func() { h.Tag(0) })
}

func TestSymbolsAreInterned(t *testing.T) {
	h := newTestHeap(t, 0)
	a := h.Symbol("lambda")
	b := h.Symbol("lambda")
	c := h.Symbol("lambada")
	if a != b {
		t.Errorf("same name interned twice: %v %v", a, b)
	}
	if a == c {
		t.Errorf("different names share a record")
	}
	r, _ := h.locate(a)
	if r.space != h.Uncollected() {
		t.Errorf("symbol lives in %s space", r.space.Name())
	}
	if h.Text(a) != "lambda" || h.Tag(a) != TagSymbol {
		t.Errorf("symbol content wrong")
	}
	h.Symbol("list")
	got := h.SymbolsWithPrefix("la")
	if len(got) != 2 || got[0] != "lambada" || got[1] != "lambda" {
		t.Errorf("SymbolsWithPrefix(la) = %v", got)
	}
	if _, ok := h.LookupSymbol("nope"); ok {
		t.Errorf("LookupSymbol created or found an unknown symbol")
	}
	if h.SymbolCount() != 3 {
		t.Errorf("SymbolCount = %d, want 3", h.SymbolCount())
	}
}

func TestEnvChain(t *testing.T) {
	h := newTestHeap(t, 0)
	x, y := h.Symbol("x"), h.Symbol("y")
	outer := h.NewEnv(nil)
	inner := h.NewEnv(outer)
	outer.Define(x, h.NewInt(1))
	inner.Define(y, h.NewInt(2))

	if v, ok := inner.Lookup(x); !ok || h.Int(v) != 1 {
		t.Errorf("x not found through parent")
	}
	if _, ok := outer.Lookup(y); ok {
		t.Errorf("y leaked into the parent")
	}
	inner.Define(x, h.NewInt(3))
	if v, _ := inner.Lookup(x); h.Int(v) != 3 {
		t.Errorf("shadowing failed")
	}
	if v, _ := outer.Lookup(x); h.Int(v) != 1 {
		t.Errorf("shadowing changed the parent")
	}
	if !outer.Assign(x, h.NewInt(4)) {
		t.Errorf("Assign of bound symbol failed")
	}
	if outer.Assign(y, h.Nil()) {
		t.Errorf("Assign of unbound symbol succeeded")
	}
	if unbound := h.Resolve(inner, h.Symbol("z")); !h.IsError(unbound) || h.Text(unbound) != "no binding for symbol z" {
		t.Errorf("Resolve of unbound symbol: %s", h.Text(unbound))
	}
	h.DestroyEnv(inner)
	if h.EnvCount() != 1 {
		t.Errorf("EnvCount = %d, want 1", h.EnvCount())
	}
}

func TestOversizedAllocationKeepsRecycledRegions(t *testing.T) {
	h := newTestHeap(t, 64*1024)
	var keep Atom
	for i := 0; i < 6000; i++ {
		keep = h.NewPair(h.NewInt(int64(i)), h.Nil())
	}
	keep = h.Nil()
	h.Collect([]*Atom{&keep}, nil)
	h.Collect([]*Atom{&keep}, nil)
	recycled := h.Stats().NewRegions
	if recycled < 3 {
		t.Fatalf("only %d recycled regions in new space", recycled)
	}
	mapped := h.Stats().MappedBytes

	big := h.NewString(string(make([]byte, 200*1024)))
	bigRegion, _ := h.locate(big)
	for i := 0; i < (recycled-1)*1500; i++ {
		h.NewPair(h.NewInt(int64(i)), h.Nil())
	}
	st := h.Stats()
	if st.NewRegions != recycled+1 {
		t.Errorf("new space has %d regions, want %d recycled plus the oversized one", st.NewRegions, recycled)
	}
	if st.MappedBytes != mapped+int64(bigRegion.Size()) {
		t.Errorf("mapped bytes grew from %d to %d, only the %d byte region was needed", mapped, st.MappedBytes, bigRegion.Size())
	}
}

func TestNativeTableIsShared(t *testing.T) {
	h := newTestHeap(t, 0)
	type declaration struct{ name string }
	d := &declaration{"first"}
	a, b := h.NewBuiltin(d), h.NewSyntax(d)
	if len(h.natives) != 1 {
		t.Errorf("wrapping one declaration twice used %d native slots", len(h.natives))
	}
	if h.Native(a) != any(d) || h.Native(b) != any(d) {
		t.Errorf("native records lost their declaration")
	}
	h.NewBuiltin(func() {})
	h.NewBuiltin(func() {})
	if len(h.natives) != 3 {
		t.Errorf("native slots = %d, want 3", len(h.natives))
	}
}
