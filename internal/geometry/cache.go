package geometry

import (
	"encoding/binary"
	"math"

	"github.com/res-engine/res/internal/data"
	"github.com/res-engine/res/internal/physics"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"
)

// ShapeCache memoizes compound shapes by the content of their meshes, so
// two entities sharing a model share one shape.
type ShapeCache struct {
	shapes map[uint64]cached
	hits   int
	log    *zap.Logger
}

type cached struct {
	shape   physics.Shape
	skipped int
}

func NewShapeCache(log *zap.Logger) *ShapeCache {
	return &ShapeCache{shapes: make(map[uint64]cached), log: log}
}

// Key hashes every vertex and index buffer together with the declared counts.
func Key(meshes []data.Mesh) uint64 {
	h := xxh3.New()
	var word [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(word[:], v)
		h.Write(word[:])
	}
	for _, m := range meshes {
		put(uint32(m.VertexCount))
		put(uint32(m.TriangleCount))
		put(uint32(len(m.Vertices)))
		for _, f := range m.Vertices {
			put(math.Float32bits(f))
		}
		put(uint32(len(m.Indices)))
		for _, i := range m.Indices {
			put(uint32(i))
		}
	}
	return h.Sum64()
}

// StaticCompound returns the shape for meshes, building it on first use.
// Failed builds are not cached.
func (c *ShapeCache) StaticCompound(meshes []data.Mesh) (physics.Shape, int, error) {
	key := Key(meshes)
	if e, ok := c.shapes[key]; ok {
		c.hits++
		return e.shape, e.skipped, nil
	}
	shape, skipped, err := CreateStaticCompoundShape(meshes, c.log)
	if err != nil {
		return nil, skipped, err
	}
	c.shapes[key] = cached{shape: shape, skipped: skipped}
	c.log.Debug("compound shape built",
		zap.Uint64("key", key),
		zap.Int("meshes", len(meshes)),
		zap.Int("skipped", skipped),
	)
	return shape, skipped, nil
}

func (c *ShapeCache) Len() int  { return len(c.shapes) }
func (c *ShapeCache) Hits() int { return c.hits }

// Clear drops every cached shape.
func (c *ShapeCache) Clear() {
	clear(c.shapes)
}
