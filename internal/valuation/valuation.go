// Package valuation implements the variable and memory valuations of spec
// §4.6: V: Var -> (Dom, Region) with TOP as the default on absent keys, and
// a partitioned memory store M: (Region, Offset, Width) -> Dom supporting
// get, strong set, and weakUpdate.
//
// Grounded on the teacher's pkg/cpu/state.go, which keeps CPU state as a
// small struct of named fields plus a flat memory array and exposes it
// through get/set accessors guarded by bounds checks; here the fixed
// concrete struct becomes two maps (because the key space — arbitrary RTL
// variables and abstract memory locations — isn't a small fixed set), and
// "bounds checks" become the absent-key-is-TOP convention from spec §7.
package valuation

import (
	"github.com/jakstab-go/rtlabstract/internal/bdd"
	"github.com/jakstab-go/rtlabstract/internal/domain"
	"github.com/jakstab-go/rtlabstract/internal/region"
)

// Var identifies an RTL variable: a named register or pseudo-register at a
// fixed bit width.
type Var struct {
	Name  string
	Width uint8
}

// RegisterInfo locates a register's bits within its physical family, e.g.
// AL occupies bits [0,8) of family "A", AH occupies [8,16), EAX occupies
// [0,32), RAX occupies [0,64) — all of family "A". Two variables overlap
// (are covering/covered) iff they share a family and their bit ranges
// intersect.
type RegisterInfo struct {
	Family string
	Offset uint8
	Width  uint8
}

// RegisterTable resolves variable names to their physical placement. Names
// absent from the table are assumed to occupy their own disjoint family
// (the common case for pseudo-registers and temporaries introduced by the
// RTL lifter, which never alias anything).
type RegisterTable map[string]RegisterInfo

// DefaultX86RegisterTable models the classic x86 general-purpose register
// aliasing (spec §4.6's own example: writing EAX invalidates AX, AL, AH,
// and RAX).
func DefaultX86RegisterTable() RegisterTable {
	t := RegisterTable{}
	type spec struct {
		name   string
		family string
		offset uint8
		width  uint8
	}
	entries := []spec{
		{"al", "A", 0, 8}, {"ah", "A", 8, 8}, {"ax", "A", 0, 16}, {"eax", "A", 0, 32}, {"rax", "A", 0, 64},
		{"bl", "B", 0, 8}, {"bh", "B", 8, 8}, {"bx", "B", 0, 16}, {"ebx", "B", 0, 32}, {"rbx", "B", 0, 64},
		{"cl", "C", 0, 8}, {"ch", "C", 8, 8}, {"cx", "C", 0, 16}, {"ecx", "C", 0, 32}, {"rcx", "C", 0, 64},
		{"dl", "D", 0, 8}, {"dh", "D", 8, 8}, {"dx", "D", 0, 16}, {"edx", "D", 0, 32}, {"rdx", "D", 0, 64},
		{"sil", "SI", 0, 8}, {"si", "SI", 0, 16}, {"esi", "SI", 0, 32}, {"rsi", "SI", 0, 64},
		{"dil", "DI", 0, 8}, {"di", "DI", 0, 16}, {"edi", "DI", 0, 32}, {"rdi", "DI", 0, 64},
		{"bpl", "BP", 0, 8}, {"bp", "BP", 0, 16}, {"ebp", "BP", 0, 32}, {"rbp", "BP", 0, 64},
		{"spl", "SP", 0, 8}, {"sp", "SP", 0, 16}, {"esp", "SP", 0, 32}, {"rsp", "SP", 0, 64},
	}
	for _, e := range entries {
		t[e.name] = RegisterInfo{Family: e.family, Offset: e.offset, Width: e.width}
	}
	return t
}

func (t RegisterTable) overlaps(a, b Var) bool {
	if a.Name == b.Name {
		return true
	}
	ia, aok := t[a.Name]
	ib, bok := t[b.Name]
	if !aok || !bok {
		return false
	}
	if ia.Family != ib.Family {
		return false
	}
	aEnd := ia.Offset + ia.Width
	bEnd := ib.Offset + ib.Width
	return ia.Offset < bEnd && ib.Offset < aEnd
}

// MemLoc is a memory cell key: an abstract region, a concrete offset
// within it, and the access width.
type MemLoc struct {
	Region region.Region
	Offset uint64
	Width  uint8
}

type varEntry struct {
	value domain.Value
	reg   region.Region
}

// State is a variable + memory valuation (spec §4.6), parameterized by the
// abstract domain factory used to synthesize TOP values for absent keys
// and by the register aliasing table used to invalidate overlapping
// entries on write.
type State struct {
	factory domain.Factory
	regs    RegisterTable

	vars map[Var]varEntry
	mem  map[MemLoc]domain.Value
	// memTop, once set, means every memory location reads as TOP
	// regardless of what's still in mem (spec §4.5's "if the set is full,
	// the entire partitioned store becomes TOP").
	memTop bool
}

// New returns an empty valuation: every variable and memory location
// reads as (TOP, TOP) / TOP.
func New(factory domain.Factory, regs RegisterTable) *State {
	return &State{
		factory: factory,
		regs:    regs,
		vars:    make(map[Var]varEntry),
		mem:     make(map[MemLoc]domain.Value),
	}
}

// GetVariable returns v's current (value, region), defaulting to
// (TOP, region.Top) if v has no entry.
func (s *State) GetVariable(v Var) (domain.Value, region.Region) {
	if e, ok := s.vars[v]; ok {
		return e.value, e.reg
	}
	return s.factory.Top(v.Width), region.Top
}

// SetVariable writes v, first removing every covering and covered register
// entry (spec §4.6 step 1), then inserting the new entry — unless the new
// entry is exactly the default (TOP value, TOP region), in which case it's
// simply omitted, keeping the absent-key-is-TOP convention exact.
func (s *State) SetVariable(v Var, value domain.Value, reg region.Region) {
	for other := range s.vars {
		if s.regs.overlaps(v, other) {
			delete(s.vars, other)
		}
	}
	if value.IsTop() && reg == region.Top {
		delete(s.vars, v)
		return
	}
	s.vars[v] = varEntry{value: value, reg: reg}
}

// GetMemory returns loc's current value, defaulting to TOP.
func (s *State) GetMemory(loc MemLoc) domain.Value {
	if s.memTop {
		return s.factory.Top(loc.Width)
	}
	if v, ok := s.mem[loc]; ok {
		return v
	}
	return s.factory.Top(loc.Width)
}

// SetMemory performs a strong update: loc's cell becomes exactly value,
// discarding whatever was there. Sound only when the caller has already
// established loc is uniquely determined (spec §4.5/§7).
func (s *State) SetMemory(loc MemLoc, value domain.Value) {
	if s.memTop {
		return // once the store is TOP, individual strong updates can't recover precision
	}
	s.mem[loc] = value
}

// WeakUpdateMemory joins value into loc's existing cell (default TOP),
// always sound regardless of whether loc is uniquely determined.
func (s *State) WeakUpdateMemory(loc MemLoc, value domain.Value) {
	if s.memTop {
		return
	}
	existing := s.GetMemory(loc)
	s.mem[loc] = existing.Join(value)
}

// SetMemoryTop widens the entire partitioned store to TOP (spec §4.5:
// triggered when a store-write's address set is unbounded/full).
func (s *State) SetMemoryTop() {
	s.memTop = true
	s.mem = make(map[MemLoc]domain.Value)
}

// StoreWrite implements spec §4.5's store-write rule: writing value through
// an address set addrSet (a BDD set-domain value tagged with a region) at
// the given width. A singleton address set gets a strong update; a small
// non-singleton set gets a weakUpdate at every concrete address (bounded
// by addrSet's configured explicit-enumeration threshold); anything larger
// degrades the whole store to TOP.
func (s *State) StoreWrite(addrSet bdd.Value, width uint8, value domain.Value) {
	if addrSet.IsBot() {
		return // writing through an unreachable address set is dead code; no-op
	}
	if addrSet.IsTop() {
		s.SetMemoryTop()
		return
	}
	addrs, ok := addrSetElements(addrSet)
	if !ok {
		s.SetMemoryTop()
		return
	}
	if len(addrs) == 1 {
		s.SetMemory(MemLoc{Region: addrSet.Region(), Offset: addrs[0], Width: width}, value)
		return
	}
	for _, a := range addrs {
		s.WeakUpdateMemory(MemLoc{Region: addrSet.Region(), Offset: a, Width: width}, value)
	}
}

// addrSetElements exposes bdd.Value's bounded enumeration to this package
// without widening bdd's public surface beyond what valuation needs.
func addrSetElements(v bdd.Value) ([]uint64, bool) {
	return v.Elements()
}

// Join produces a fresh valuation joining pointwise over the union of keys
// of s and other, with absent keys treated as TOP (spec §4.6): a key
// present in only one side joins against TOP and so becomes TOP (or stays
// as-is if it was already TOP), which this implementation realizes by
// simply dropping any key not present in *both* sides.
func (s *State) Join(other *State) *State {
	out := New(s.factory, s.regs)
	for v, e := range s.vars {
		oe, ok := other.vars[v]
		if !ok {
			continue // joining with the implicit TOP entry yields TOP, i.e. absent
		}
		reg := e.reg
		if e.reg != oe.reg {
			reg = region.Join(e.reg, oe.reg)
		}
		out.SetVariable(v, e.value.Join(oe.value), reg)
	}
	if s.memTop || other.memTop {
		out.SetMemoryTop()
		return out
	}
	for loc, v := range s.mem {
		if ov, ok := other.mem[loc]; ok {
			out.mem[loc] = v.Join(ov)
		}
	}
	return out
}

// LessOrEqual checks s <= other pointwise over the union of both sides'
// keys (spec §4.6), with an absent key read as TOP via GetVariable's
// default — so a key present only in `other` forces s's implicit TOP to be
// <= other's actual entry, which only holds if that entry is also TOP.
func (s *State) LessOrEqual(other *State) bool {
	if s.memTop && !other.memTop {
		return false
	}
	for v := range unionVars(s.vars, other.vars) {
		sv, sreg := s.GetVariable(v)
		ov, oreg := other.GetVariable(v)
		if !sv.LessOrEqual(ov) || !regionLeq(sreg, oreg) {
			return false
		}
	}
	if !other.memTop {
		for loc := range union(s.mem, other.mem) {
			sv := s.GetMemory(loc)
			ov := other.GetMemory(loc)
			if !sv.LessOrEqual(ov) {
				return false
			}
		}
	}
	return true
}

func unionVars(a, b map[Var]varEntry) map[Var]struct{} {
	out := make(map[Var]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func regionLeq(a, b region.Region) bool { return region.LessOrEqual(a, b) }

func union(a, b map[MemLoc]domain.Value) map[MemLoc]struct{} {
	out := make(map[MemLoc]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
