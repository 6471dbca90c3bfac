// Package lifecycle holds process lifecycle settings shared by fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup probes and graceful shutdown.
const DefaultTimeout = 10 * time.Second
