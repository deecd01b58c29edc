// Package bom defines the core bill-of-materials data model for Ecoscope.
// These types are the shared vocabulary across all modules.
// Changes to this file require review from all teams.
package bom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Material is an immutable material record supplied by the material registry.
// The engine only ever reads materials.
type Material struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Family        string   `json:"family,omitempty"`        // plastics classification: "PE", "PP", ...
	Density       *float64 `json:"density,omitempty"`       // kg/m3, nil when unknown
	TotalGWP      *float64 `json:"total_gwp,omitempty"`     // kg CO2e per kg
	FossilGWP     *float64 `json:"fossil_gwp,omitempty"`
	BiogenicGWP   *float64 `json:"biogenic_gwp,omitempty"`
	ADPF          *float64 `json:"adpf,omitempty"` // abiotic depletion potential (fossil)
	IsDangerous   bool     `json:"is_dangerous"`
	SystemAbility float64  `json:"system_ability"` // compatibility with established recycling systems
	Sortability   float64  `json:"sortability"`
}

// Component is a single node in a product's component tree. Atomic components
// are leaves carrying a material; composite components aggregate children.
type Component struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id,omitempty"` // nil for tree roots
	IsAtomic  bool   `json:"is_atomic"`

	MaterialID *int64   `json:"material_id,omitempty"` // required on atomic nodes
	Volume     *float64 `json:"volume,omitempty"`      // m3, atomic nodes only
	Weight     *float64 `json:"weight,omitempty"`      // kg, derived; written back by the weight resolver

	Reusable   bool           `json:"reusable"`
	Connection ConnectionType `json:"connection"`

	// Recycling attributes feeding the recycle evaluation.
	SystemAbility float64 `json:"system_ability"` // 0.0 or 1.0 gate flag, meaningful on roots
	RFactor       float64 `json:"r_factor"`
	SeparationEff float64 `json:"separation_eff"` // 0..1
	SortingEff    float64 `json:"sorting_eff"`    // 0..1
	CompatBonus   float64 `json:"compat_bonus"`
	CompatMalus   float64 `json:"compat_malus"`
}

// IsRoot reports whether the component has no parent.
func (c *Component) IsRoot() bool { return c.ParentID == nil }

// ConnectionType is a closed enum of joint quality levels. Higher levels are
// harder to separate and carry a larger score penalty.
type ConnectionType int

const (
	ConnectionNone    ConnectionType = iota // no fixed joint (loose, press fit)
	ConnectionSnapFit                       // detachable snap or clip
	ConnectionScrewed
	ConnectionRiveted
	ConnectionGlued
	ConnectionWelded // inseparable
)

var connectionNames = map[ConnectionType]string{
	ConnectionNone:    "none",
	ConnectionSnapFit: "snap_fit",
	ConnectionScrewed: "screwed",
	ConnectionRiveted: "riveted",
	ConnectionGlued:   "glued",
	ConnectionWelded:  "welded",
}

// Level returns the joint quality level clamped to [0,5].
func (c ConnectionType) Level() int {
	if c < ConnectionNone {
		return 0
	}
	if c > ConnectionWelded {
		return 5
	}
	return int(c)
}

func (c ConnectionType) String() string {
	if name, ok := connectionNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseConnectionType maps a stored name to its ConnectionType.
// Unknown names map to ConnectionNone.
func ParseConnectionType(name string) ConnectionType {
	for ct, n := range connectionNames {
		if n == name {
			return ct
		}
	}
	return ConnectionNone
}

// PairKey identifies an unordered material pair. A < B always holds.
type PairKey struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

// MakePairKey builds the canonical key for two material ids.
func MakePairKey(m1, m2 int64) PairKey {
	if m1 > m2 {
		m1, m2 = m2, m1
	}
	return PairKey{A: m1, B: m2}
}

// MarshalText encodes the pair as "a:b" so CompatTable survives JSON round trips.
func (k PairKey) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(k.A, 10) + ":" + strconv.FormatInt(k.B, 10)), nil
}

// UnmarshalText parses the "a:b" form produced by MarshalText.
func (k *PairKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid pair key %q", text)
	}
	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pair key %q: %w", text, err)
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid pair key %q: %w", text, err)
	}
	*k = MakePairKey(a, b)
	return nil
}

// CompatEntry is an explicit pairwise material compatibility override.
type CompatEntry struct {
	Bonus float64 `json:"bonus"`
	Malus float64 `json:"malus"`
}

// CompatTable maps material pairs to compatibility overrides. Optional: the
// recycle evaluation falls back to per-component bonus/malus when a pair is
// absent.
type CompatTable map[PairKey]CompatEntry

// Tree is an in-memory snapshot of one project's full component hierarchy
// with all referenced materials resolved. Trees are built once per evaluation
// and not shared across them.
type Tree struct {
	ProjectID  int64                `json:"project_id"`
	Components map[int64]*Component `json:"components"`
	Materials  map[int64]*Material  `json:"materials"`
	Compat     CompatTable          `json:"compat,omitempty"`

	children map[int64][]int64
}

// TreeStats holds summary statistics for a tree snapshot.
type TreeStats struct {
	ComponentCount int `json:"component_count"`
	AtomicCount    int `json:"atomic_count"`
	MaterialCount  int `json:"material_count"`
	RootCount      int `json:"root_count"`
}

// Children returns the child components of the given id, sorted by id.
func (t *Tree) Children(id int64) []*Component {
	ids := t.children[id]
	out := make([]*Component, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.Components[cid])
	}
	return out
}

// Roots returns all components without a parent, sorted by id.
func (t *Tree) Roots() []*Component {
	var roots []*Component
	for _, c := range t.Components {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	return roots
}

// Atomics returns all atomic components, sorted by id.
func (t *Tree) Atomics() []*Component {
	var atomics []*Component
	for _, c := range t.Components {
		if c.IsAtomic {
			atomics = append(atomics, c)
		}
	}
	sort.Slice(atomics, func(i, j int) bool { return atomics[i].ID < atomics[j].ID })
	return atomics
}

// MaterialOf resolves the material linked to a component, or nil.
func (t *Tree) MaterialOf(c *Component) *Material {
	if c == nil || c.MaterialID == nil {
		return nil
	}
	return t.Materials[*c.MaterialID]
}

// CompatFor looks up an explicit compatibility override for two material ids.
func (t *Tree) CompatFor(m1, m2 int64) (CompatEntry, bool) {
	if t.Compat == nil {
		return CompatEntry{}, false
	}
	e, ok := t.Compat[MakePairKey(m1, m2)]
	return e, ok
}

// Stats computes summary statistics for the tree.
func (t *Tree) Stats() TreeStats {
	s := TreeStats{
		ComponentCount: len(t.Components),
		MaterialCount:  len(t.Materials),
	}
	for _, c := range t.Components {
		if c.IsAtomic {
			s.AtomicCount++
		}
		if c.IsRoot() {
			s.RootCount++
		}
	}
	return s
}
