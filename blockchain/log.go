// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/decred/slog"

// log is the package-level logger used throughout blockchain. It is a
// no-op sink until the caller installs a real backend with UseLogger,
// matching the rest of this node's packages.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by the chain manager.
func UseLogger(logger slog.Logger) {
	log = logger
}
