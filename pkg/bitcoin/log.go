package bitcoin

import "go.uber.org/zap"

// NewLogger returns the library's default structured logger: a production
// zap config in non-debug use, a development one (human-readable, caller
// lines) when debug is requested by the caller (e.g. the CLI's --verbose).
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
