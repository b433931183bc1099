package asset

import (
	"fmt"
	"path"
	"strings"
)

// LOD describes one rung of an asset's level-of-detail ladder.
type LOD struct {
	// Level is the detail level; 0 is full detail.
	Level int
	// Distance is the observer distance at which this level applies.
	Distance float64
	// BudgetScale scales the asset's estimated size for this level
	// when reserving memory (e.g. 0.25 for a half-resolution mip).
	BudgetScale float64
	// Suffix is inserted before the path extension to locate the
	// per-level payload (e.g. "_lod1").
	Suffix string
}

// Metadata is the registered description of a loadable unit.
//
// Metadata is immutable after registration except for CurrentLOD,
// which the streaming manager updates as LOD requests are honored.
type Metadata struct {
	// ID uniquely identifies the asset within one manager.
	ID string
	// Path names the payload blob inside the configured store.
	Path string
	// Type tags the asset category ("texture", "mesh", "audio", ...).
	// It doubles as the memory-budget category name.
	Type string
	// EstimatedSize is the expected resident size in bytes, used to
	// reserve budget before the real size is known.
	EstimatedSize int64
	// Priority is the default scheduling priority for this asset.
	Priority Priority
	// LODs is the ordered level-of-detail ladder. May be empty, in
	// which case only level 0 (the plain Path) exists.
	LODs []LOD
	// CurrentLOD is the active detail level.
	CurrentLOD int
	// Tags is an open bag of custom key/value metadata. The manager
	// indexes tag values for batch operations.
	Tags map[string]string
}

// Validate reports whether the metadata describes a registrable asset.
func (m *Metadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("asset: empty id")
	}
	if m.Path == "" {
		return fmt.Errorf("asset %q: empty path", m.ID)
	}
	if m.Type == "" {
		return fmt.Errorf("asset %q: empty type", m.ID)
	}
	if m.EstimatedSize < 0 {
		return fmt.Errorf("asset %q: negative estimated size %d", m.ID, m.EstimatedSize)
	}
	for i, l := range m.LODs {
		if l.Level < 0 {
			return fmt.Errorf("asset %q: lod[%d] negative level", m.ID, i)
		}
		if l.BudgetScale < 0 {
			return fmt.Errorf("asset %q: lod[%d] negative budget scale", m.ID, i)
		}
	}
	return nil
}

// LODFor returns the descriptor for the given level, or nil if the
// ladder does not define it.
func (m *Metadata) LODFor(level int) *LOD {
	for i := range m.LODs {
		if m.LODs[i].Level == level {
			return &m.LODs[i]
		}
	}
	return nil
}

// PathForLOD resolves the payload path for a detail level by inserting
// the level's suffix before the path extension. Level 0 or an unknown
// level resolves to the plain Path.
func (m *Metadata) PathForLOD(level int) string {
	l := m.LODFor(level)
	if l == nil || l.Suffix == "" {
		return m.Path
	}
	ext := path.Ext(m.Path)
	return strings.TrimSuffix(m.Path, ext) + l.Suffix + ext
}

// SizeForLOD returns the budget reservation for a detail level:
// EstimatedSize scaled by the level's BudgetScale (1.0 when the
// ladder does not define the level).
func (m *Metadata) SizeForLOD(level int) int64 {
	l := m.LODFor(level)
	if l == nil || l.BudgetScale == 0 {
		return m.EstimatedSize
	}
	return int64(float64(m.EstimatedSize) * l.BudgetScale)
}

// Clone returns a deep copy of the metadata.
func (m *Metadata) Clone() Metadata {
	c := *m
	if m.LODs != nil {
		c.LODs = make([]LOD, len(m.LODs))
		copy(c.LODs, m.LODs)
	}
	if m.Tags != nil {
		c.Tags = make(map[string]string, len(m.Tags))
		for k, v := range m.Tags {
			c.Tags[k] = v
		}
	}
	return c
}
