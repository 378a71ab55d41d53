package application

import (
	"strings"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// PathCalculator computes full and head-only paths plus level labels.
type PathCalculator struct {
	index     *Index
	separator string
	// strict requires canBeHead AND a non-empty head name for a device to
	// count as a head; the default accepts either canBeHead or a device
	// declared head by identity (name == headName).
	strict bool
	memo   map[int64]hierarchy.PathResult
}

// NewPathCalculator constructs a calculator over one run's index.
func NewPathCalculator(index *Index, separator string, strict bool) *PathCalculator {
	if separator == "" {
		separator = `\`
	}
	return &PathCalculator{
		index:     index,
		separator: separator,
		strict:    strict,
		memo:      make(map[int64]hierarchy.PathResult),
	}
}

// ComputeAll resolves every device in input order. Memoization makes the
// result independent of iteration order.
func (c *PathCalculator) ComputeAll(devices []hierarchy.Device, diags *hierarchy.Diagnostics) map[int64]hierarchy.PathResult {
	for i := range devices {
		c.resolve(&devices[i], diags)
	}
	return c.memo
}

// resolve walks the parent chain up to a root, a memoized ancestor or a
// revisited row, then fills results top-down.
func (c *PathCalculator) resolve(device *hierarchy.Device, diags *hierarchy.Diagnostics) hierarchy.PathResult {
	if result, ok := c.memo[device.RowID]; ok {
		return result
	}

	chain := []*hierarchy.Device{device}
	onChain := map[int64]int{device.RowID: 0}

	var base hierarchy.PathResult
	haveBase := false
	current := device
	for {
		if !current.HasParent() {
			break
		}
		parent, ok := c.index.ByRowID[current.ParentID]
		if !ok {
			// Dangling parent: the device behaves as a root.
			break
		}
		if cached, ok := c.memo[parent.RowID]; ok {
			base = cached
			haveBase = true
			break
		}
		if at, seen := onChain[parent.RowID]; seen {
			c.quarantineCycle(chain, at, diags)
			return c.memo[device.RowID]
		}
		onChain[parent.RowID] = len(chain)
		chain = append(chain, parent)
		current = parent
	}

	if haveBase && base.Cyclic {
		// Descent through a cyclic ancestor yields no usable chain.
		for _, member := range chain {
			c.memo[member.RowID] = hierarchy.PathResult{Cyclic: true}
		}
		return c.memo[device.RowID]
	}

	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i]
		var result hierarchy.PathResult
		if haveBase {
			result.FullPath = base.FullPath + c.separator + node.Name
			if c.isHead(node) {
				if base.HeadPath == "" {
					result.HeadPath = node.Name
				} else {
					result.HeadPath = base.HeadPath + c.separator + node.Name
				}
			} else {
				result.HeadPath = base.HeadPath
			}
		} else {
			result.FullPath = node.Name
			if c.isHead(node) {
				result.HeadPath = node.Name
			}
			haveBase = true
		}
		c.fillLevels(&result)
		c.memo[node.RowID] = result
		base = result
	}
	return c.memo[device.RowID]
}

// quarantineCycle marks the whole traversal chain cyclic and records the
// loop membership once. Cycle-free branches elsewhere are unaffected.
func (c *PathCalculator) quarantineCycle(chain []*hierarchy.Device, loopStart int, diags *hierarchy.Diagnostics) {
	members := make([]int64, 0, len(chain)-loopStart)
	for _, member := range chain[loopStart:] {
		members = append(members, member.RowID)
	}
	for _, member := range chain {
		c.memo[member.RowID] = hierarchy.PathResult{Cyclic: true}
	}
	if diags != nil {
		diags.Cycles = append(diags.Cycles, hierarchy.Cycle{Members: members})
	}
}

func (c *PathCalculator) isHead(device *hierarchy.Device) bool {
	if c.strict {
		return device.CanBeHead && device.HeadName != ""
	}
	return device.CanBeHead || (device.HeadName != "" && device.Name == device.HeadName)
}

func (c *PathCalculator) fillLevels(result *hierarchy.PathResult) {
	if result.FullPath == "" {
		return
	}
	segments := strings.Split(result.FullPath, c.separator)
	if len(segments) > 0 {
		result.Level1 = segments[0]
	}
	if len(segments) > 1 {
		result.Level2 = segments[1]
	}
	if len(segments) > 2 {
		result.Level3 = segments[2]
	}
}
