package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and probes the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range sb.data {
		if a, ok := sa.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Count2 returns how many entities have both components and satisfy keep.
func Count2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], keep func(*A, *B) bool) int {
	n := 0
	Each2(sa, sb, func(_ EntityID, a *A, b *B) {
		if keep == nil || keep(a, b) {
			n++
		}
	})
	return n
}
