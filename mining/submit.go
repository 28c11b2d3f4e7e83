// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/wire"
)

// Submit decodes a hex-encoded solved block, ingests it through the
// chain manager, and on success evicts its transactions from the
// mempool. The caller is responsible for broadcasting an inv once this
// returns a successful result.
func (s *Service) Submit(blockHex string) (blockchain.IngestResult, error) {
	raw, err := hex.DecodeString(blockHex)
	if err != nil {
		return 0, fmt.Errorf("mining: invalid hex block: %w", err)
	}

	block := new(wire.MsgBlock)
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return 0, fmt.Errorf("mining: invalid block encoding: %w", err)
	}

	result, err := s.chain.Ingest(block)
	if err != nil {
		return result, err
	}

	switch result {
	case blockchain.ResultExtendedMain, blockchain.ResultReorganized:
		s.pool.RemoveConfirmed(block)
	}

	return result, nil
}
