package sway

import "errors"

var (
	// ErrNodeNotFound is returned when a command or call names a node the
	// receiving side does not know.
	ErrNodeNotFound = errors.New("sway: node not found")
	// ErrAnimationNotFound is returned when an animation id is not attached.
	ErrAnimationNotFound = errors.New("sway: animation not found")
	// ErrDuplicateAnimation is returned when an animation id is attached twice.
	// The first registration is kept.
	ErrDuplicateAnimation = errors.New("sway: animation already attached")
	// ErrDuplicateTransaction is returned when a transaction id is applied twice.
	ErrDuplicateTransaction = errors.New("sway: transaction already applied")
	ErrInvalidValue         = errors.New("sway: invalid value")
	ErrInvalidCurve         = errors.New("sway: invalid timing curve")
	ErrInvalidProtocol      = errors.New("sway: invalid timing protocol")
	ErrNoImplicitScope      = errors.New("sway: no implicit animation scope open")
	ErrUnknownCommand       = errors.New("sway: unknown command")
	ErrNoTransport          = errors.New("sway: commit without transport")
)
