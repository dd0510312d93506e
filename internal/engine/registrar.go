package engine

import (
	"errors"

	"github.com/go-logr/logr"
)

var (
	ErrNoRegistrar      = errors.New("engine: body has no registrar")
	ErrRegisterFailed   = errors.New("engine: body registration failed")
	ErrUnregisterFailed = errors.New("engine: body unregistration failed")
)

// Registrar is the registry a Body joins on construction and leaves on Destroy.
// Defined here so bodies do not import the collision package.
type Registrar interface {
	Register(b *Body) bool
	Unregister(b *Body) bool
}

// Resolver turns an identifier back into a live Body.
type Resolver interface {
	Get(id string) (*Body, bool)
}

// loggerSource is implemented by registrars that share their logger with bodies.
type loggerSource interface {
	Logger() logr.Logger
}

func loggerFor(r Registrar) logr.Logger {
	if src, ok := r.(loggerSource); ok {
		return src.Logger()
	}
	return logr.Discard()
}
