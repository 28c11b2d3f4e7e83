// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import "github.com/decred/slog"

// log is the package-level logger, a no-op sink until UseLogger installs
// a real backend.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by the node supervisor.
func UseLogger(logger slog.Logger) {
	log = logger
}
