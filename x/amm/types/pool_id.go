package types

import (
	"encoding/binary"
	"fmt"
)

// MaxAssetLen bounds asset identifiers so pool id encodings stay small and
// length prefixes fit one byte.
const MaxAssetLen = 128

// PoolID identifies a liquidity pool: the canonical asset pair, the pricing
// strategy handle, and the 24-bit marking word. It packs losslessly so that
// disassembly is the exact inverse of assembly; pool identity is a codec,
// never a hash.
type PoolID struct {
	Asset0   string
	Asset1   string
	Strategy uint16
	Marking  uint32
}

// AssemblePoolID canonicalizes the asset pair into (min,max) order and packs
// the identifier. Identical logical inputs yield the same id regardless of
// the caller-supplied asset order.
func AssemblePoolID(assetA, assetB string, strategy uint16, marking uint32) (PoolID, error) {
	if err := ValidateAsset(assetA); err != nil {
		return PoolID{}, err
	}
	if err := ValidateAsset(assetB); err != nil {
		return PoolID{}, err
	}
	if assetA == assetB {
		return PoolID{}, ErrInvalidAsset.Wrapf("pool assets must differ, got %s twice", assetA)
	}

	asset0, asset1 := assetA, assetB
	if asset1 < asset0 {
		asset0, asset1 = asset1, asset0
	}

	return PoolID{
		Asset0:   asset0,
		Asset1:   asset1,
		Strategy: strategy,
		Marking:  marking & MarkingMask,
	}, nil
}

// ValidateAsset checks that an asset identifier is usable as a pool
// component and a store-key fragment.
func ValidateAsset(asset string) error {
	if asset == "" {
		return ErrInvalidAsset.Wrap("asset identifier is empty")
	}
	if len(asset) > MaxAssetLen {
		return ErrInvalidAsset.Wrapf("asset identifier exceeds %d bytes", MaxAssetLen)
	}
	return nil
}

// Disassemble returns the canonical components of the identifier.
func (id PoolID) Disassemble() (asset0, asset1 string, strategy uint16, marking uint32) {
	return id.Asset0, id.Asset1, id.Strategy, id.Marking
}

// DecodedMarking returns the structured form of the pool's marking word.
func (id PoolID) DecodedMarking() Marking {
	return DecodeMarking(id.Marking)
}

// Bytes returns the canonical byte encoding used as the store key:
// len0 | asset0 | len1 | asset1 | strategy(2 BE) | marking(4 BE).
func (id PoolID) Bytes() []byte {
	bz := make([]byte, 0, 2+len(id.Asset0)+len(id.Asset1)+6)
	bz = append(bz, byte(len(id.Asset0)))
	bz = append(bz, id.Asset0...)
	bz = append(bz, byte(len(id.Asset1)))
	bz = append(bz, id.Asset1...)
	bz = binary.BigEndian.AppendUint16(bz, id.Strategy)
	bz = binary.BigEndian.AppendUint32(bz, id.Marking)
	return bz
}

// PoolIDFromBytes parses the canonical encoding produced by Bytes.
func PoolIDFromBytes(bz []byte) (PoolID, error) {
	var id PoolID
	if len(bz) < 1 {
		return id, ErrInvalidPoolState.Wrap("pool id bytes truncated")
	}
	n0 := int(bz[0])
	bz = bz[1:]
	if len(bz) < n0+1 {
		return id, ErrInvalidPoolState.Wrap("pool id bytes truncated")
	}
	id.Asset0 = string(bz[:n0])
	bz = bz[n0:]

	n1 := int(bz[0])
	bz = bz[1:]
	if len(bz) != n1+6 {
		return id, ErrInvalidPoolState.Wrap("pool id bytes truncated")
	}
	id.Asset1 = string(bz[:n1])
	bz = bz[n1:]

	id.Strategy = binary.BigEndian.Uint16(bz[:2])
	id.Marking = binary.BigEndian.Uint32(bz[2:6])
	return id, nil
}

func (id PoolID) String() string {
	return fmt.Sprintf("%s/%s/q%d/m%06x", id.Asset0, id.Asset1, id.Strategy, id.Marking)
}
