package bpu

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// instWidth is the instruction alignment used to derive set indexes.
const instWidth = 4

// BranchKind is the kind of a branch recorded in the BTB.
type BranchKind int

const (
	// BranchUnconditional is a branch that is always taken (jumps, calls).
	BranchUnconditional BranchKind = iota
	// BranchConditional is a branch whose direction must be predicted.
	BranchConditional
)

// BTBEntry is one Branch Target Buffer entry. Entries are owned by the BTB;
// a pointer obtained from Probe is a borrow that is valid only until the
// next Add or Flush and must not be retained across fetch-resolve windows.
type BTBEntry struct {
	// Target is the last-seen target address of the branch.
	Target uint64
	// Kind is the branch kind recorded when the entry was allocated or
	// last updated.
	Kind BranchKind

	// 2-bit direction counter, consulted only in bimodal mode.
	counter uint8
}

// BTB is a set-associative Branch Target Buffer. Tag and LRU state live in
// an Akita cache directory; entry payloads live in a parallel array indexed
// by (setID * ways + wayID).
type BTB struct {
	directory *akitacache.DirectoryImpl
	entries   []BTBEntry
	ways      int
}

// newBTB creates a BTB with the given geometry.
func newBTB(sets, ways int) *BTB {
	return &BTB{
		directory: akitacache.NewDirectory(
			sets,
			ways,
			instWidth,
			akitacache.NewLRUVictimFinder(),
		),
		entries: make([]BTBEntry, sets*ways),
		ways:    ways,
	}
}

// entryIndex computes the index into the payload array for a block.
func (b *BTB) entryIndex(block *akitacache.Block) int {
	return block.SetID*b.ways + block.WayID
}

// Probe looks up pc. On a hit it refreshes LRU order and returns a borrowed
// pointer to the entry.
func (b *BTB) Probe(pc uint64) (*BTBEntry, bool) {
	block := b.directory.Lookup(0, pc)
	if block == nil || !block.IsValid {
		return nil, false
	}

	b.directory.Visit(block)
	return &b.entries[b.entryIndex(block)], true
}

// initialCounter is the direction counter value of a fresh entry,
// weakly not-taken.
const initialCounter uint8 = 1

// Add allocates an entry for pc with the given kind, evicting the LRU way
// of the set if necessary. The target starts at 0 and the direction counter
// at weakly not-taken.
func (b *BTB) Add(pc uint64, kind BranchKind) {
	victim := b.directory.FindVictim(pc)
	if victim == nil {
		return
	}

	victim.Tag = pc
	victim.IsValid = true
	victim.IsDirty = false
	b.directory.Visit(victim)

	b.entries[b.entryIndex(victim)] = BTBEntry{Kind: kind, counter: initialCounter}
}

// Update refreshes a borrowed entry with the resolved target and kind and
// steps its direction counter.
func (b *BTB) Update(entry *BTBEntry, target uint64, taken bool, kind BranchKind) {
	entry.Target = target
	entry.Kind = kind
	entry.counter = counterStep(entry.counter, taken)
}

// Flush invalidates every entry and returns payloads to their initial
// state.
func (b *BTB) Flush() {
	b.directory.Reset()
	for i := range b.entries {
		b.entries[i] = BTBEntry{counter: initialCounter}
	}
}
