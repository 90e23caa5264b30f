package log

import "go.uber.org/zap"

var base *zap.Logger

// Init builds the process-wide logger. prod switches to the JSON production
// encoder; tests and local runs use the console development encoder.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the process logger, a nop logger before Init.
func L() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}
