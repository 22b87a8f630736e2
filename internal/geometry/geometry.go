// Package geometry converts render meshes into physics collision shapes.
package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/res-engine/res/internal/data"
	"github.com/res-engine/res/internal/physics"
	"go.uber.org/zap"
)

// ToCollisionVertices reads exactly count xyz triples from buf. A nil or
// short buffer, or a non-positive count, yields an empty list.
func ToCollisionVertices(buf []float32, count int, log *zap.Logger) []mgl32.Vec3 {
	if buf == nil || count <= 0 {
		log.Error("vertex buffer is empty", zap.Int("count", count), zap.Bool("nil", buf == nil))
		return nil
	}
	if len(buf) < count*3 {
		log.Error("vertex buffer shorter than declared count",
			zap.Int("count", count),
			zap.Int("floats", len(buf)),
		)
		return nil
	}
	out := make([]mgl32.Vec3, count)
	for i := range out {
		out[i] = mgl32.Vec3{buf[i*3], buf[i*3+1], buf[i*3+2]}
	}
	return out
}

// ToCollisionTriangles reads exactly triangleCount index triples from idx,
// preserving winding order.
func ToCollisionTriangles(idx []uint16, triangleCount int, log *zap.Logger) []physics.IndexedTriangle {
	if idx == nil || triangleCount <= 0 {
		log.Error("index buffer is empty", zap.Int("triangles", triangleCount), zap.Bool("nil", idx == nil))
		return nil
	}
	if len(idx) < triangleCount*3 {
		log.Error("index buffer shorter than declared triangle count",
			zap.Int("triangles", triangleCount),
			zap.Int("indices", len(idx)),
		)
		return nil
	}
	out := make([]physics.IndexedTriangle, triangleCount)
	for i := range out {
		out[i] = physics.IndexedTriangle{Idx: [3]uint32{
			uint32(idx[i*3]),
			uint32(idx[i*3+1]),
			uint32(idx[i*3+2]),
		}}
	}
	return out
}

// BuildStaticCompoundShape turns every sub-mesh into a mesh shape placed at
// the compound's origin. Sub-meshes that fail to build are logged and left
// out; the number skipped is returned.
func BuildStaticCompoundShape(meshes []data.Mesh, log *zap.Logger) (*physics.StaticCompoundShapeSettings, int) {
	settings := &physics.StaticCompoundShapeSettings{}
	skipped := 0
	for i, m := range meshes {
		verts := ToCollisionVertices(m.Vertices, m.VertexCount, log)
		tris := ToCollisionTriangles(m.Indices, m.TriangleCount, log)
		shape, err := physics.NewMeshShapeSettings(verts, tris).Create()
		if err != nil {
			log.Error("skip sub-mesh", zap.Int("mesh", i), zap.Error(err))
			skipped++
			continue
		}
		settings.AddShape(mgl32.Vec3{}, physics.Identity, shape)
	}
	return settings, skipped
}

// CreateStaticCompoundShape builds and creates the compound in one go.
func CreateStaticCompoundShape(meshes []data.Mesh, log *zap.Logger) (physics.Shape, int, error) {
	settings, skipped := BuildStaticCompoundShape(meshes, log)
	shape, err := settings.Create()
	if err != nil {
		return nil, skipped, fmt.Errorf("compound of %d meshes (%d skipped): %w", len(meshes), skipped, err)
	}
	return shape, skipped, nil
}
