package ecs

import "fmt"

// EntityID packs a 32-bit slot index (low bits) and a 32-bit generation
// (high bits). The generation bumps on destroy so stale IDs stop resolving.
// Generations start at 1, which keeps the zero EntityID invalid.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d#%d", id.Index(), id.Generation())
}

// EntityPool hands out generational IDs and recycles destroyed slots.
type EntityPool struct {
	generations []uint32
	inUse       []bool
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 256),
		inUse:       make([]bool, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.inUse[idx] = true
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	p.inUse = append(p.inUse, true)
	return NewEntityID(idx, 1)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.inUse[idx] && p.generations[idx] == id.Generation()
}

// Destroy retires id. Destroying a stale or unknown ID is a no-op.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.inUse[idx] = false
	p.generations[idx]++
	if p.generations[idx] == 0 {
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.live }

// Each visits every live ID in slot order.
func (p *EntityPool) Each(fn func(EntityID)) {
	for idx, used := range p.inUse {
		if used {
			fn(NewEntityID(uint32(idx), p.generations[idx]))
		}
	}
}
