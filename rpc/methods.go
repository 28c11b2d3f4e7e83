// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/hex"
	"fmt"

	"github.com/icsicoin/node/blockchain"
	"github.com/icsicoin/node/chainhash"
	"github.com/icsicoin/node/connmgr"
	"github.com/icsicoin/node/database"
	"github.com/icsicoin/node/mempool"
	"github.com/icsicoin/node/mining"
	"github.com/icsicoin/node/peer"
	"github.com/icsicoin/node/rpc/jsonrpc/types"
	"github.com/icsicoin/node/walletutil"
)

// Deps carries every component a method handler may need.
type Deps struct {
	Chain *blockchain.BlockChain
	Pool *mempool.TxPool
	Miner *mining.Service
	UTXOs *database.UTXOSet
	Conns *connmgr.ConnManager
	Peers *peer.Registry
	Version string
	PeerVer uint32
	Stop func()
}

// RegisterAll wires the method set onto s.
func RegisterAll(s *Server, d *Deps) {
	s.Register("getinfo", d.getInfo)
	s.Register("getblockcount", d.getBlockCount)
	s.Register("getbestblockhash", d.getBestBlockHash)
	s.Register("getblocktemplate", d.getBlockTemplate)
	s.Register("submitblock", d.submitBlock)
	s.Register("getnewaddress", d.getNewAddress)
	s.Register("getbalance", d.getBalance)
	s.Register("addnode", d.addNode)
	s.Register("getpeerinfo", d.getPeerInfo)
	s.Register("stop", d.stop)
	s.Register("getnetworkhashps", d.getNetworkHashPS)
	s.Register("getblock", d.getBlock)
	s.Register("getrawtransaction", d.getRawTransaction)
}

func (d *Deps) getInfo(params []any) (any, error) {
	return types.GetInfoResult{
		Version: d.Version,
		ProtocolVersion: d.PeerVer,
		Blocks: d.Chain.BestHeight(),
		BestBlockHash: d.Chain.BestHash().String(),
		Connections: d.Peers.Len(),
	}, nil
}

func (d *Deps) getBlockCount(params []any) (any, error) {
	return d.Chain.BestHeight(), nil
}

func (d *Deps) getBestBlockHash(params []any) (any, error) {
	return d.Chain.BestHash().String(), nil
}

func (d *Deps) getBlockTemplate(params []any) (any, error) {
	payScript := []byte{}
	if len(params) > 0 {
		if m, ok := params[0].(map[string]any); ok {
			if addr, ok := m["mining_address"].(string); ok && addr != "" {
				script, err := walletutil.PayToAddrScript(addr)
				if err != nil {
					return nil, err
				}
				payScript = script
			}
		}
	}
	tmpl, err := d.Miner.NewTemplate(payScript)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (d *Deps) submitBlock(params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("rpc: submitblock requires a hex-encoded block")
	}
	hexBlock, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("rpc: submitblock parameter must be a string")
	}
	result, err := d.Miner.Submit(hexBlock)
	if err != nil {
		return nil, err
	}
	return result.String(), nil
}

func (d *Deps) getNewAddress(params []any) (any, error) {
	addr, _, err := walletutil.GenerateAddress()
	if err != nil {
		return nil, err
	}
	return types.GetNewAddressResult{Address: addr}, nil
}

func (d *Deps) getBalance(params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("rpc: getbalance requires an address")
	}
	addr, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("rpc: getbalance parameter must be a string")
	}
	script, err := walletutil.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}
	entries, err := d.UTXOs.UTXOsForScript(script)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return types.GetBalanceResult{Balance: total}, nil
}

func (d *Deps) addNode(params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("rpc: addnode requires an address")
	}
	addr, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("rpc: addnode parameter must be a string")
	}
	if _, err := d.Conns.Connect(addr); err != nil {
		return nil, err
	}
	return nil, nil
}

func (d *Deps) getPeerInfo(params []any) (any, error) {
	peers := d.Peers.All()
	out := make([]types.PeerInfo, len(peers))
	for i, p := range peers {
		out[i] = types.PeerInfo{
			Addr: p.Addr(),
			Outbound: p.Outbound(),
			StartingHeight: p.Height(),
			UserAgent: p.UserAgent(),
		}
	}
	return out, nil
}

func (d *Deps) stop(params []any) (any, error) {
	if d.Stop != nil {
		go d.Stop()
	}
	return "icsicoin node stopping", nil
}

func (d *Deps) getNetworkHashPS(params []any) (any, error) {
	window := int64(120)
	rate, err := d.Chain.EstimateHashrate(window)
	if err != nil {
		return nil, err
	}
	return types.GetNetworkHashPSResult{HashesPerSecond: rate}, nil
}

func (d *Deps) getBlock(params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("rpc: getblock requires a hash")
	}
	hashStr, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("rpc: getblock parameter must be a string")
	}
	hash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		return nil, err
	}
	block, height, err := d.Chain.Block(*hash)
	if err != nil {
		return nil, err
	}
	txns := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		txns[i] = tx.TxHash().String()
	}
	return types.GetBlockResult{
		Hash: hash.String(),
		Height: height,
		PreviousHash: block.Header.PrevBlock.String(),
		MerkleRoot: block.Header.MerkleRoot.String(),
		Time: block.Header.Timestamp,
		Bits: fmt.Sprintf("%08x", block.Header.Bits),
		Nonce: block.Header.Nonce,
		Transactions: txns,
	}, nil
}

func (d *Deps) getRawTransaction(params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("rpc: getrawtransaction requires a txid")
	}
	txidStr, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("rpc: getrawtransaction parameter must be a string")
	}
	txid, err := chainhash.NewHashFromStr(txidStr)
	if err != nil {
		return nil, err
	}
	tx, height, err := d.Chain.Transaction(*txid)
	if err != nil {
		if pooled, ok := d.Pool.Get(*txid); ok {
			return types.GetRawTransactionResult{Hex: hex.EncodeToString(pooled.Bytes()), TxID: txidStr}, nil
		}
		return nil, err
	}
	return types.GetRawTransactionResult{
		Hex: hex.EncodeToString(tx.Bytes()),
		TxID: txidStr,
		Height: height,
	}, nil
}
