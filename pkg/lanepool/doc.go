// Package lanepool hands out a fixed set of interchangeable transport
// lanes to concurrent callers with strict rotating fairness.
//
// Every Acquire draws a ticket from a monotonic counter; the caller is
// served the lane at slot ticket mod L, where L is the current lane
// count. The sequence of slots returned by successive acquires
// therefore equals ticket order regardless of concurrency or the order
// in which lanes come back. Rotation spreads unrelated protocol steps
// evenly across all L connection sets instead of concentrating them on
// one congested peer link.
//
// A lane released before the rotation needs its slot again is staged in
// the pool's return buffer; a lane released while a caller is already
// waiting on that slot is handed to that caller directly (targeted
// wake, no broadcast). Callers blocked on different slots never delay
// each other.
//
// Acquire never fails; it blocks until its slot is released. A caller
// that never releases (for example because it aborted) permanently
// removes that lane from rotation - treat Acquire/Release as a scoped
// pair and release on every exit path.
package lanepool
