package pool

import "errors"

var (
	// ErrTemplateInvalid reports a template that cannot be instantiated.
	ErrTemplateInvalid = errors.New("pool: template invalid")
	// ErrPoolNotFound is returned by lookups that must not create a pool.
	ErrPoolNotFound = errors.New("pool: not found")
	// ErrUnknownFamily is returned for a family name that was never initialized.
	ErrUnknownFamily = errors.New("pool: unknown family")
	// ErrPoolExhausted is returned by a capped pool with nothing idle.
	ErrPoolExhausted = errors.New("pool: exhausted")
)
