//go:build !linux

package landlocks

import "github.com/reusee/taibox/logs"

func Apply(writable []string, logger logs.Logger) error {
	logger.Warn("landlock is linux only, not restricting")
	return nil
}
