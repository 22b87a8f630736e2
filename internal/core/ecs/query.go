package ecs

// Each2 iterates over entities that have both A and B in ascending
// EntityID order, walking the smaller store and probing the other.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	var ids []EntityID
	if sa.Len() <= sb.Len() {
		ids = sa.ids()
	} else {
		ids = sb.ids()
	}
	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 iterates over entities that have A, B and C, in ascending EntityID
// order.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	visit := func(id EntityID) {
		a, ok := sa.data[id]
		if !ok {
			return
		}
		b, ok := sb.data[id]
		if !ok {
			return
		}
		c, ok := sc.data[id]
		if !ok {
			return
		}
		fn(id, a, b, c)
	}

	var ids []EntityID
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		ids = sa.ids()
	case sb.Len() <= sc.Len():
		ids = sb.ids()
	default:
		ids = sc.ids()
	}
	for _, id := range ids {
		visit(id)
	}
}

// Each4 iterates over entities that have A, B, C and D, walking A's store.
func Each4[A, B, C, D any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], sd *PtrComponentStore[D], fn func(EntityID, *A, *B, *C, *D)) {
	for _, id := range sa.ids() {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		c, ok := sc.data[id]
		if !ok {
			continue
		}
		if d, ok := sd.data[id]; ok {
			fn(id, a, b, c, d)
		}
	}
}
