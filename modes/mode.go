// Package modes tells providers whether they run in a deployed process, a
// developer's shell or a test.
package modes

type Mode uint8

const (
	ModeProduction Mode = iota + 1
	ModeDevelopment
	ModeTest
)

func (m Mode) String() string {
	switch m {
	case ModeProduction:
		return "production"
	case ModeDevelopment:
		return "development"
	case ModeTest:
		return "test"
	}
	return "unknown"
}

// Local reports whether the process talks to nearby services only, so
// proxies and other deployment plumbing are skipped.
func (m Mode) Local() bool {
	return m == ModeDevelopment || m == ModeTest
}
