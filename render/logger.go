// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"

	"github.com/gogpu/fractal"
)

// slogger returns the shared module logger. All logging in render goes
// through this function; configuration happens via fractal.SetLogger.
func slogger() *slog.Logger { return fractal.Logger() }
