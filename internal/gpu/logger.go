// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"log/slog"

	"github.com/gogpu/fractal"
)

// slogger returns the shared module logger.
// All logging in internal/gpu goes through this function.
func slogger() *slog.Logger { return fractal.Logger() }
