package configs

// Configurable values can be set from a config file. ConfigExpr names the
// path they are read from.
type Configurable interface {
	ConfigExpr() string
}
