package types

// MarkingMask keeps the low 24 bits of a marking word; the upper byte of a
// caller-supplied uint32 is ignored everywhere.
const MarkingMask = uint32(0xFFFFFF)

// Marking is the decoded form of the 24-bit pool configuration word.
//
// Wire layout (low bit first):
//
//	bits 0-3   default data-bridge select flags
//	bits 4-19  bucket id (pricing-parameter variant)
//	bits 20-23 extra-bridge slot: 0 none, 1-14 configurable, 15 consolidated
//
// Bit 0 is dual-use: selecting default bridge 0 also enables the
// enhanced-context payload appended by the quote router.
type Marking struct {
	BridgeFlags     [DefaultBridgeCount]bool
	BucketID        uint16
	ExtraSlot       uint8
	EnhancedContext bool
}

// DecodeMarking converts a 24-bit marking word into its structured form.
// It is pure and total: every input decodes, out-of-range extra slots are
// reserved/no-op for the router.
func DecodeMarking(word uint32) Marking {
	word &= MarkingMask

	var m Marking
	for i := 0; i < DefaultBridgeCount; i++ {
		m.BridgeFlags[i] = word&(1<<uint(i)) != 0
	}
	m.EnhancedContext = m.BridgeFlags[0]
	m.BucketID = uint16(word >> 4)
	m.ExtraSlot = uint8(word >> 20)
	return m
}

// Encode packs a Marking back into its 24-bit word. Encode(Decode(w)) == w
// masked to 24 bits for every w; this is the wire-stable contract external
// integrators reproduce to derive pool ids.
func (m Marking) Encode() uint32 {
	var word uint32
	for i := 0; i < DefaultBridgeCount; i++ {
		if m.BridgeFlags[i] {
			word |= 1 << uint(i)
		}
	}
	if m.EnhancedContext {
		word |= 1
	}
	word |= uint32(m.BucketID) << 4
	word |= uint32(m.ExtraSlot&0xF) << 20
	return word
}

// HasExtraBridge reports whether the marking selects any extra bridge slot.
func (m Marking) HasExtraBridge() bool {
	return m.ExtraSlot != ExtraSlotNone
}

// TraderFlags is the decoded form of the per-call 32-bit protection word.
// Protection modes are trader opt-in, so they live outside the pool marking
// and never influence pool identity.
//
// Layout: bits 0-3 atomic-execution mode, bits 4-7 access-control mode,
// bits 8-11 circuit-breaker mode, bits 12-15 volume-control mode,
// bits 16-31 reserved.
type TraderFlags struct {
	AtomicMode  uint8
	AccessMode  uint8
	BreakerMode uint8
	VolumeMode  uint8
}

// DecodeTraderFlags converts the packed trader protection word. Pure and
// total; reserved bits are ignored.
func DecodeTraderFlags(word uint32) TraderFlags {
	return TraderFlags{
		AtomicMode:  uint8(word & 0xF),
		AccessMode:  uint8(word >> 4 & 0xF),
		BreakerMode: uint8(word >> 8 & 0xF),
		VolumeMode:  uint8(word >> 12 & 0xF),
	}
}

// Encode packs the trader flags back into a 32-bit word.
func (f TraderFlags) Encode() uint32 {
	return uint32(f.AtomicMode&0xF) |
		uint32(f.AccessMode&0xF)<<4 |
		uint32(f.BreakerMode&0xF)<<8 |
		uint32(f.VolumeMode&0xF)<<12
}
