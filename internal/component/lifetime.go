package component

import "time"

// Lifetime despawns the entity once Remaining reaches zero.
type Lifetime struct {
	Remaining time.Duration
}

// Spawned records the frame an entity was created by gameplay code.
type Spawned struct {
	Frame uint64
	Order uint64
}
