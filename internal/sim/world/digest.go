package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"munaypaq.game/internal/sim/grid"
)

// StateDigest hashes the simulated state of the current tick. Wall-clock values and
// the player name are excluded so a replay with the same seed and commands matches.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, w.tick)
	h.Write([]byte{boolByte(w.paused), boolByte(w.gameOver), boolByte(w.running)})
	digestWriteI64(h, &tmp, int64(w.tracker.CurrentScore()))

	digestWriteVec(h, &tmp, w.player.Pos())
	h.Write([]byte{boolByte(w.player.Moving()), boolByte(w.player.AutoCleaning())})
	digestWriteF64(h, &tmp, w.player.AutoCleanTime())

	for _, a := range w.npcs {
		h.Write([]byte(a.ID))
		h.Write([]byte{byte(a.Faction()), boolByte(a.PerformingAction())})
		digestWriteVec(h, &tmp, a.Pos())
	}
	for _, it := range w.field.Instances() {
		h.Write([]byte(it.ID))
		digestWriteVec(h, &tmp, it.Pos)
	}
	for _, d := range w.drops.All() {
		h.Write([]byte(d.ID))
		h.Write([]byte(d.Kind))
		digestWriteVec(h, &tmp, d.Pos)
	}
	for _, s := range w.inventory.Slots() {
		h.Write([]byte(s.Kind))
		digestWriteI64(h, &tmp, int64(s.Count))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hash.Hash, tmp *[8]byte, v int64)   { digestWriteU64(h, tmp, uint64(v)) }
func digestWriteF64(h hash.Hash, tmp *[8]byte, v float64) { digestWriteU64(h, tmp, math.Float64bits(v)) }

func digestWriteVec(h hash.Hash, tmp *[8]byte, v grid.Vec) {
	digestWriteF64(h, tmp, v.X)
	digestWriteF64(h, tmp, v.Y)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
