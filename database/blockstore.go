// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database implements the node's persistence layer: the
// append-only block store (C5), the LevelDB-backed block index (C6), and
// the LevelDB-backed UTXO store (C7).
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/icsicoin/node/blockchain"
)

// maxBlockFileSize is the rollover threshold for a single flat block file.
const maxBlockFileSize = 128 * 1024 * 1024

// BlockStore is an append-only collection of flat files holding raw
// serialized blocks, addressed by (file, offset, length). Files roll over
// once they would exceed maxBlockFileSize.
type BlockStore struct {
	mtx sync.Mutex

	dataDir     string
	curFile     uint32
	curFileSize uint32
	curHandle   *os.File
}

// NewBlockStore opens (creating if necessary) the block store rooted at
// dataDir, resuming from whatever flat files it finds there.
func NewBlockStore(dataDir string) (*BlockStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}
	s := &BlockStore{dataDir: dataDir}
	if err := s.resume(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BlockStore) fileName(num uint32) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("blk%05d.dat", num))
}

// resume finds the highest-numbered existing block file and opens it for
// append, or starts a fresh blk00000.dat if the data directory is empty.
func (s *BlockStore) resume() error {
	var highest uint32
	found := false
	for n := uint32(0); ; n++ {
		if _, err := os.Stat(s.fileName(n)); err != nil {
			break
		}
		highest = n
		found = true
	}
	if !found {
		return s.openForAppend(0)
	}
	return s.openForAppend(highest)
}

func (s *BlockStore) openForAppend(num uint32) error {
	f, err := os.OpenFile(s.fileName(num), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	s.curHandle = f
	s.curFile = num
	s.curFileSize = uint32(info.Size())
	return nil
}

// WriteBlock appends raw to the current block file, rolling over to a new
// file first if raw would push it past maxBlockFileSize, and returns the
// location it was written at.
func (s *BlockStore) WriteBlock(raw []byte) (blockchain.BlockLocation, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.curFileSize > 0 && s.curFileSize+uint32(len(raw)) > maxBlockFileSize {
		s.curHandle.Close()
		if err := s.openForAppend(s.curFile + 1); err != nil {
			return blockchain.BlockLocation{}, err
		}
	}

	offset := s.curFileSize
	n, err := s.curHandle.Write(raw)
	if err != nil {
		return blockchain.BlockLocation{}, err
	}
	s.curFileSize += uint32(n)

	return blockchain.BlockLocation{File: s.curFile, Offset: offset, Length: uint32(len(raw))}, nil
}

// ReadBlock returns the raw bytes at loc.
func (s *BlockStore) ReadBlock(loc blockchain.BlockLocation) ([]byte, error) {
	f, err := os.Open(s.fileName(loc.File))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, loc.Length)
	if _, err := f.ReadAt(buf, int64(loc.Offset)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close flushes and closes the currently open block file.
func (s *BlockStore) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.curHandle == nil {
		return nil
	}
	return s.curHandle.Close()
}
