package physics

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	pairBytes         = 8
	minBounceSpeed    = 1.0  // m/s below which restitution is ignored
	penetrationSlop   = 0.02 // m
	positionBaumgarte = 0.2
	sleepSpeed        = 0.03 // m/s
	timeBeforeSleep   = 0.5  // s
	speculativeMargin = 0.02 // m
	minPairsPerJob    = 16
)

// Contact is a single touching point between two bodies.
type Contact struct {
	Body1, Body2 BodyID
	// Normal points from Body2 towards Body1.
	Normal mgl32.Vec3
	// Point lies on the surface of Body2.
	Point       RVec3
	Penetration float32
}

func (c Contact) flipped() Contact {
	return Contact{
		Body1:       c.Body2,
		Body2:       c.Body1,
		Normal:      c.Normal.Mul(-1),
		Point:       c.Point.Sub(c.Normal.Mul(c.Penetration)),
		Penetration: c.Penetration,
	}
}

// Update advances the simulation by dt, split into collisionSteps sub
// steps. Scratch memory comes from alloc, which is reset first; narrow phase
// work runs on jobs.
func (s *PhysicsSystem) Update(dt float32, collisionSteps int, alloc *TempAllocator, jobs *JobSystem) error {
	if !s.initialized {
		panic("physics: update before init")
	}
	s.stats = StepStats{}
	if dt <= 0 {
		return nil
	}
	if collisionSteps < 1 {
		collisionSteps = 1
	}
	alloc.Reset()

	h := dt / float32(collisionSteps)
	for i := 0; i < collisionSteps; i++ {
		if err := s.collisionStep(h, alloc, jobs); err != nil {
			return err
		}
	}
	for _, b := range s.bodies {
		if b != nil && b.kinematicRot != nil {
			b.rotation = *b.kinematicRot
			b.kinematicRot = nil
			b.updateBounds()
		}
	}
	s.stats.TempBytes = alloc.InUse()
	return nil
}

func (s *PhysicsSystem) activeBodies() []*Body {
	active := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		if b != nil && b.added && b.active && b.movable() {
			active = append(active, b)
		}
	}
	return active
}

func (s *PhysicsSystem) collisionStep(h float32, alloc *TempAllocator, jobs *JobSystem) error {
	active := s.activeBodies()
	for _, b := range active {
		if b.motion == Dynamic {
			b.velocity = b.velocity.Add(s.gravity.Mul(b.gravityFactor * h))
		}
		b.updateBounds()
	}

	pairs, n, err := s.broadPhase(active, h, alloc)
	if err != nil {
		return err
	}
	contacts := s.narrowPhase(pairs, n, jobs)

	cs := s.buildConstraints(contacts)
	s.solveVelocities(cs)
	for _, b := range active {
		b.position = b.position.Add(b.velocity.Mul(h))
		b.updateBounds()
	}
	s.solvePositions(cs, h)
	s.updateSleep(active, h)

	s.contacts = contacts
	s.stats.Pairs += n
	s.stats.Contacts += len(contacts)
	return nil
}

// broadPhase writes candidate pairs as (index, index) uint32 pairs into
// memory taken from alloc.
func (s *PhysicsSystem) broadPhase(active []*Body, h float32, alloc *TempAllocator) ([]byte, int, error) {
	limit := len(active) * s.numBodies
	if limit > s.maxBodyPairs {
		limit = s.maxBodyPairs
	}
	if limit == 0 {
		return nil, 0, nil
	}
	buf, err := alloc.Allocate(limit * pairBytes)
	if err != nil {
		return nil, 0, err
	}

	n := 0
	for _, a := range active {
		swept := a.bounds.Expand(a.velocity.Len()*h + speculativeMargin)
		for _, b := range s.bodies {
			if b == nil || b == a || !b.added {
				continue
			}
			if b.active && b.movable() && b.id.Index() < a.id.Index() {
				continue // emitted from b's side
			}
			if !s.ovb.ShouldCollide(a.layer, s.bpi.BroadPhaseLayer(b.layer)) || !s.ovo.ShouldCollide(a.layer, b.layer) {
				continue
			}
			if !swept.Overlaps(b.bounds) {
				continue
			}
			if n == limit {
				s.stats.DroppedPairs++
				continue
			}
			binary.LittleEndian.PutUint32(buf[n*pairBytes:], a.id.Index())
			binary.LittleEndian.PutUint32(buf[n*pairBytes+4:], b.id.Index())
			n++
		}
	}
	return buf, n, nil
}

func (s *PhysicsSystem) pairAt(buf []byte, i int) (*Body, *Body) {
	a := binary.LittleEndian.Uint32(buf[i*pairBytes:])
	b := binary.LittleEndian.Uint32(buf[i*pairBytes+4:])
	return s.bodies[a], s.bodies[b]
}

// narrowPhase turns candidate pairs into contacts, spreading the pairs over
// the job system. Bodies are only read while jobs run.
func (s *PhysicsSystem) narrowPhase(pairs []byte, n int, jobs *JobSystem) []Contact {
	if n == 0 {
		return nil
	}

	leaves := make(map[uint32][]leaf, n)
	for i := 0; i < n; i++ {
		a, b := s.pairAt(pairs, i)
		for _, body := range [2]*Body{a, b} {
			if _, ok := leaves[body.id.Index()]; !ok {
				leaves[body.id.Index()] = body.worldLeaves(nil)
			}
		}
	}

	threads := 1
	if jobs != nil {
		threads = jobs.Threads()
	}
	per := (n + threads - 1) / threads
	if per < minPairsPerJob {
		per = minPairsPerJob
	}
	chunks := (n + per - 1) / per
	results := make([][]Contact, chunks)
	work := make([]func(), chunks)
	for k := 0; k < chunks; k++ {
		k := k
		lo, hi := k*per, (k+1)*per
		if hi > n {
			hi = n
		}
		work[k] = func() {
			var out []Contact
			for i := lo; i < hi; i++ {
				a, b := s.pairAt(pairs, i)
				out = collideBodies(a, b, leaves[a.id.Index()], leaves[b.id.Index()], out)
			}
			results[k] = out
		}
	}
	if jobs != nil && chunks > 1 {
		jobs.Run(work)
	} else {
		for _, fn := range work {
			fn()
		}
	}

	var contacts []Contact
	for _, r := range results {
		for _, c := range r {
			if len(contacts) >= s.maxContacts {
				s.stats.DroppedContacts++
				continue
			}
			contacts = append(contacts, c)
		}
	}

	// Touching a sleeping body wakes it.
	for _, c := range contacts {
		for _, id := range [2]BodyID{c.Body1, c.Body2} {
			if b := s.body(id); b != nil && !b.active && b.movable() {
				b.active = true
				b.idle = 0
			}
		}
	}
	return contacts
}

type rawContact struct {
	normal mgl32.Vec3 // towards the first shape
	point  mgl32.Vec3 // on the second shape
	pen    float32
}

func collideBodies(a, b *Body, la, lb []leaf, out []Contact) []Contact {
	emit := func(rc rawContact) {
		out = append(out, Contact{
			Body1:       a.id,
			Body2:       b.id,
			Normal:      rc.normal,
			Point:       rc.point,
			Penetration: rc.pen,
		})
	}
	for _, x := range la {
		xb := x.bounds.Expand(speculativeMargin)
		for _, y := range lb {
			if !xb.Overlaps(y.bounds) {
				continue
			}
			switch {
			case x.tris == nil && y.tris == nil:
				if rc, ok := sweptVsSwept(x, y); ok {
					emit(rc)
				}
			case x.tris == nil:
				for _, rc := range sweptVsMesh(x, y) {
					emit(rc)
				}
			case y.tris == nil:
				for _, rc := range sweptVsMesh(y, x) {
					emit(rawContact{
						normal: rc.normal.Mul(-1),
						point:  rc.point.Sub(rc.normal.Mul(rc.pen)),
						pen:    rc.pen,
					})
				}
			}
		}
	}
	return out
}

func sweptVsSwept(x, y leaf) (rawContact, bool) {
	px, py := closestSegmentSegment(x.a, x.b, y.a, y.b)
	d := px.Sub(py)
	dist := d.Len()
	pen := x.radius + y.radius - dist
	if pen <= 0 {
		return rawContact{}, false
	}
	n := AxisY
	if dist > epsilon {
		n = d.Mul(1 / dist)
	}
	return rawContact{normal: n, point: py.Add(n.Mul(y.radius)), pen: pen}, true
}

// sweptVsMesh collides a swept sphere against triangles, keeping the
// deepest contact per distinct normal direction.
func sweptVsMesh(s, m leaf) []rawContact {
	var found []rawContact
	mid := s.a.Add(s.b).Mul(0.5)
	for _, t := range m.tris {
		ps, pt := closestSegmentTriangle(s.a, s.b, t.v[0], t.v[1], t.v[2])
		d := ps.Sub(pt)
		dist := d.Len()
		pen := s.radius - dist
		if pen <= 0 {
			continue
		}
		var n mgl32.Vec3
		if dist > epsilon {
			n = d.Mul(1 / dist)
		} else {
			n = t.normal
			if mid.Sub(t.v[0]).Dot(n) < 0 {
				n = n.Mul(-1)
			}
		}
		rc := rawContact{normal: n, point: pt, pen: pen}

		merged := false
		for i := range found {
			if found[i].normal.Dot(n) > 0.99 {
				if pen > found[i].pen {
					found[i] = rc
				}
				merged = true
				break
			}
		}
		if !merged {
			found = append(found, rc)
		}
	}
	return found
}

type constraint struct {
	a, b       *Body
	n          mgl32.Vec3
	invA, invB float32
	bounce     float32
	friction   float32
	pen        float32
	lambda     float32
	lambdaT    mgl32.Vec3
}

func (s *PhysicsSystem) buildConstraints(contacts []Contact) []constraint {
	cs := make([]constraint, 0, len(contacts))
	for _, c := range contacts {
		a, b := s.body(c.Body1), s.body(c.Body2)
		if a == nil || b == nil {
			continue
		}
		k := constraint{a: a, b: b, n: c.Normal, invA: a.invMass, invB: b.invMass, pen: c.Penetration}
		if k.invA+k.invB == 0 {
			continue
		}
		vn := a.velocity.Sub(b.velocity).Dot(k.n)
		if vn < -minBounceSpeed {
			k.bounce = -math32.Max(a.restitution, b.restitution) * vn
		}
		k.friction = math32.Sqrt(a.friction * b.friction)
		cs = append(cs, k)
	}
	return cs
}

// solveVelocities runs sequential impulses with accumulated clamping.
func (s *PhysicsSystem) solveVelocities(cs []constraint) {
	for iter := 0; iter < s.velocitySteps; iter++ {
		for i := range cs {
			c := &cs[i]
			w := c.invA + c.invB

			rel := c.a.velocity.Sub(c.b.velocity)
			dl := (c.bounce - rel.Dot(c.n)) / w
			nl := math32.Max(c.lambda+dl, 0)
			dl, c.lambda = nl-c.lambda, nl
			c.apply(c.n.Mul(dl))

			if c.friction <= 0 {
				continue
			}
			rel = c.a.velocity.Sub(c.b.velocity)
			vt := rel.Sub(c.n.Mul(rel.Dot(c.n)))
			l := vt.Len()
			if l < epsilon {
				continue
			}
			next := c.lambdaT.Add(vt.Mul(-1 / w))
			if limit := c.friction * c.lambda; next.Len() > limit {
				next = next.Normalize().Mul(limit)
			}
			c.apply(next.Sub(c.lambdaT))
			c.lambdaT = next
		}
	}
}

func (c *constraint) apply(impulse mgl32.Vec3) {
	if c.invA > 0 {
		c.a.velocity = c.a.velocity.Add(impulse.Mul(c.invA))
	}
	if c.invB > 0 {
		c.b.velocity = c.b.velocity.Sub(impulse.Mul(c.invB))
	}
}

// solvePositions pushes bodies apart by what the velocity pass left over.
func (s *PhysicsSystem) solvePositions(cs []constraint, h float32) {
	for i := range cs {
		c := &cs[i]
		vn := c.a.velocity.Sub(c.b.velocity).Dot(c.n)
		pen := c.pen - vn*h
		if pen <= penetrationSlop {
			continue
		}
		corr := (pen - penetrationSlop) * positionBaumgarte / (c.invA + c.invB)
		if c.invA > 0 {
			c.a.position = c.a.position.Add(c.n.Mul(corr * c.invA))
			c.a.updateBounds()
		}
		if c.invB > 0 {
			c.b.position = c.b.position.Sub(c.n.Mul(corr * c.invB))
			c.b.updateBounds()
		}
	}
}

func (s *PhysicsSystem) updateSleep(active []*Body, h float32) {
	for _, b := range active {
		if b.velocity.Len() >= sleepSpeed {
			b.idle = 0
			continue
		}
		b.idle += h
		if b.motion == Kinematic || b.idle >= timeBeforeSleep {
			b.active = false
			b.velocity = mgl32.Vec3{}
		}
	}
}
