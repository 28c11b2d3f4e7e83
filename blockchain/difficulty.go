// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/icsicoin/node/blockchain/standalone"
	"github.com/icsicoin/node/chaincfg"
)

// calcNextRequiredBits implements the retarget rule: at heights that
// are a non-zero multiple of the retarget interval, the target is rescaled
// by the ratio of the just-finished window's actual timespan to the
// expected timespan, clamped to [expected/4, expected*4] and capped at the
// network's proof-of-work limit. Every other height inherits prevNode's
// bits; heights below the first interval use the network's genesis bits.
func calcNextRequiredBits(params *chaincfg.Params, prevNode *blockNode) uint32 {
	if prevNode == nil {
		return params.PowLimitBits
	}

	nextHeight := prevNode.height + 1
	if nextHeight%params.RetargetInterval != 0 {
		return prevNode.bits
	}

	firstNode := prevNode.relativeAncestor(params.RetargetInterval - 1)
	if firstNode == nil {
		return params.PowLimitBits
	}

	actualTimespan := int64(prevNode.timestamp) - int64(firstNode.timestamp)
	adjustedTimespan := actualTimespan
	minTimespan := params.TargetTimespan / params.RetargetAdjustmentMax
	maxTimespan := params.TargetTimespan * params.RetargetAdjustmentMax
	switch {
	case adjustedTimespan < minTimespan:
		adjustedTimespan = minTimespan
	case adjustedTimespan > maxTimespan:
		adjustedTimespan = maxTimespan
	}

	oldTarget := standalone.CompactToBig(prevNode.bits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(params.TargetTimespan))

	powLimit := standalone.CompactToBig(params.PowLimitBits)
	if newTarget.Cmp(powLimit) > 0 {
		newTarget = powLimit
	}
	return standalone.BigToCompact(newTarget)
}

// referenceDifficultyBits is the reference target difficulty(bits) is
// expressed relative to hashrate estimate.
const referenceDifficultyBits = 0x1d00ffff

// difficultyFromBits reports target(referenceDifficultyBits) / target(bits)
// as a float64, the conventional "difficulty" figure.
func difficultyFromBits(bits uint32) float64 {
	target := standalone.CompactToBig(bits)
	if target.Sign() <= 0 {
		return 0
	}
	reference := standalone.CompactToBig(referenceDifficultyBits)

	refFloat := new(big.Float).SetInt(reference)
	targetFloat := new(big.Float).SetInt(target)
	diff := new(big.Float).Quo(refFloat, targetFloat)
	result, _ := diff.Float64()
	return result
}
