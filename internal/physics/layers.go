package physics

// ObjectLayer decides which bodies may collide.
type ObjectLayer uint16

const (
	NonMoving ObjectLayer = iota
	Moving
	NumLayers
)

func (l ObjectLayer) String() string {
	switch l {
	case NonMoving:
		return "NON_MOVING"
	case Moving:
		return "MOVING"
	}
	return "UNKNOWN"
}

// BroadPhaseLayer groups object layers for the coarse overlap pass.
type BroadPhaseLayer uint8

const (
	BroadPhaseNonMoving BroadPhaseLayer = iota
	BroadPhaseMoving
	NumBroadPhaseLayers
)

// BroadPhaseLayerInterface maps object layers onto broad phase layers.
type BroadPhaseLayerInterface interface {
	NumBroadPhaseLayers() int
	BroadPhaseLayer(ObjectLayer) BroadPhaseLayer
}

// ObjectVsBroadPhaseLayerFilter decides whether an object layer should be
// tested against a broad phase layer.
type ObjectVsBroadPhaseLayerFilter interface {
	ShouldCollide(ObjectLayer, BroadPhaseLayer) bool
}

// ObjectLayerPairFilter decides whether two object layers collide.
type ObjectLayerPairFilter interface {
	ShouldCollide(ObjectLayer, ObjectLayer) bool
}

// LayerTable is the two-layer policy: non-moving never meets non-moving,
// every pair involving a moving body is tested.
type LayerTable struct{}

func (LayerTable) NumBroadPhaseLayers() int { return int(NumBroadPhaseLayers) }

func (LayerTable) BroadPhaseLayer(l ObjectLayer) BroadPhaseLayer {
	if l == NonMoving {
		return BroadPhaseNonMoving
	}
	return BroadPhaseMoving
}

// ObjectVsBroadPhase is the object-vs-broad-phase half of LayerTable.
type ObjectVsBroadPhase struct{}

func (ObjectVsBroadPhase) ShouldCollide(l ObjectLayer, bp BroadPhaseLayer) bool {
	switch l {
	case NonMoving:
		return bp == BroadPhaseMoving
	case Moving:
		return true
	}
	return false
}

// ObjectPairs is the object-vs-object half of LayerTable.
type ObjectPairs struct{}

func (ObjectPairs) ShouldCollide(a, b ObjectLayer) bool {
	switch a {
	case NonMoving:
		return b == Moving
	case Moving:
		return true
	}
	return false
}
