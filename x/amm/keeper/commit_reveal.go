package keeper

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"golang.org/x/crypto/sha3"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

// SwapCommitment is a pending commit-reveal swap. One commitment per
// trader; a new commit is rejected while an unexpired one is pending.
type SwapCommitment struct {
	Hash        []byte `json:"hash"`
	CommitBlock int64  `json:"commit_block"`
	Nonce       uint64 `json:"nonce"`
}

// expired reports whether the reveal window has passed at the given height.
func (c SwapCommitment) expired(height int64) bool {
	return height > c.CommitBlock+types.MaxCommitWindow
}

// ComputeCommitmentHash computes the hash a trader commits to.
// Hash = Keccak256(poolID || direction || amountIn || minAmountOut || nonce || salt || trader)
func ComputeCommitmentHash(
	poolID types.PoolID,
	zeroForOne bool,
	amountIn, minAmountOut math.Int,
	nonce uint64,
	salt []byte,
	trader string,
) []byte {
	h := sha3.NewLegacyKeccak256()

	h.Write(poolID.Bytes())

	direction := byte(0)
	if zeroForOne {
		direction = 1
	}
	h.Write([]byte{direction})

	h.Write([]byte(amountIn.String()))
	h.Write([]byte(minAmountOut.String()))

	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	h.Write(nonceBytes)

	h.Write(salt)
	h.Write([]byte(trader))

	return h.Sum(nil)
}

// GetNonce returns the trader's current reveal nonce.
func (k *Keeper) GetNonce(ctx types.Context, trader string) uint64 {
	bz := ctx.KVStore().Get(NonceKey(trader))
	if len(bz) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

func (k *Keeper) incrementNonce(ctx types.Context, trader string) {
	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, k.GetNonce(ctx, trader)+1)
	ctx.KVStore().Set(NonceKey(trader), next)
}

// GetCommitment returns the trader's pending commitment, if any.
func (k *Keeper) GetCommitment(ctx types.Context, trader string) (SwapCommitment, bool) {
	bz := ctx.KVStore().Get(CommitmentKey(trader))
	if bz == nil {
		return SwapCommitment{}, false
	}
	var commitment SwapCommitment
	if err := json.Unmarshal(bz, &commitment); err != nil {
		return SwapCommitment{}, false
	}
	return commitment, true
}

// CommitSwap records a commitment hash for later reveal. An expired
// pending commitment is silently replaced; an unexpired one is not.
func (k *Keeper) CommitSwap(ctx types.Context, trader string, hash []byte) error {
	bctx, commit := k.branch(ctx)

	if len(hash) != 32 {
		return types.ErrInvalidCommitment.Wrapf("commitment hash must be 32 bytes, got %d", len(hash))
	}
	if existing, ok := k.GetCommitment(bctx, trader); ok && !existing.expired(bctx.BlockHeight()) {
		return types.ErrCommitmentPending.Wrapf("commitment from block %d still pending", existing.CommitBlock)
	}

	commitment := SwapCommitment{
		Hash:        hash,
		CommitBlock: bctx.BlockHeight(),
		Nonce:       k.GetNonce(bctx, trader),
	}
	bz, err := json.Marshal(commitment)
	if err != nil {
		return err
	}
	bctx.KVStore().Set(CommitmentKey(trader), bz)

	bctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeCommit,
		types.NewAttribute(types.AttributeKeyTrader, trader),
		types.NewAttribute(types.AttributeKeyCommitBlock, fmt.Sprintf("%d", commitment.CommitBlock)),
	))
	if k.metrics != nil {
		k.metrics.Commitments.Inc()
	}

	commit()
	return nil
}

// RevealAndSwap validates a reveal against the trader's pending commitment
// and executes the committed swap. The commitment is consumed and the
// trader's nonce advanced only when the whole call succeeds.
func (k *Keeper) RevealAndSwap(
	ctx types.Context,
	trader string,
	params types.QuoteParams,
	minAmountOut math.Int,
	nonce uint64,
	salt []byte,
	protectionFlags uint32,
) (math.Int, error) {
	bctx, commit := k.branch(ctx)

	amountOut, err := k.revealAndSwap(bctx, trader, params, minAmountOut, nonce, salt, protectionFlags)
	if err != nil {
		if k.metrics != nil {
			k.metrics.Reveals.WithLabelValues("rejected").Inc()
		}
		return math.ZeroInt(), err
	}

	if k.metrics != nil {
		k.metrics.Reveals.WithLabelValues("ok").Inc()
	}
	commit()
	return amountOut, nil
}

func (k *Keeper) revealAndSwap(
	ctx types.Context,
	trader string,
	params types.QuoteParams,
	minAmountOut math.Int,
	nonce uint64,
	salt []byte,
	protectionFlags uint32,
) (math.Int, error) {
	commitment, ok := k.GetCommitment(ctx, trader)
	if !ok {
		return math.ZeroInt(), types.ErrInvalidCommitment.Wrap("no pending commitment")
	}

	height := ctx.BlockHeight()
	if height <= commitment.CommitBlock {
		return math.ZeroInt(), types.ErrCommitmentTooNew.Wrapf(
			"reveal at height %d, commitment from %d", height, commitment.CommitBlock)
	}
	if commitment.expired(height) {
		return math.ZeroInt(), types.ErrCommitmentExpired.Wrapf(
			"reveal at height %d, window ended at %d", height, commitment.CommitBlock+types.MaxCommitWindow)
	}
	if nonce != commitment.Nonce {
		return math.ZeroInt(), types.ErrInvalidNonce.Wrapf("expected nonce %d, got %d", commitment.Nonce, nonce)
	}

	poolID, err := types.AssemblePoolID(params.AssetA, params.AssetB, params.Strategy, params.Marking)
	if err != nil {
		return math.ZeroInt(), err
	}
	expected := ComputeCommitmentHash(poolID, params.ZeroForOne, params.AmountIn, minAmountOut, nonce, salt, trader)
	if !bytes.Equal(expected, commitment.Hash) {
		return math.ZeroInt(), types.ErrInvalidCommitment.Wrap("reveal does not match commitment")
	}

	ctx.KVStore().Delete(CommitmentKey(trader))
	k.incrementNonce(ctx, trader)

	ctx.EventManager().EmitEvent(types.NewEvent(
		types.EventTypeReveal,
		types.NewAttribute(types.AttributeKeyTrader, trader),
		types.NewAttribute(types.AttributeKeyCommitBlock, fmt.Sprintf("%d", commitment.CommitBlock)),
		types.NewAttribute(types.AttributeKeyRevealBlock, fmt.Sprintf("%d", height)),
	))

	return k.swap(ctx, trader, params, minAmountOut, protectionFlags)
}
