package inventory

import "errors"

var (
	// ErrEmptyInventory indicates every source produced no hosts.
	ErrEmptyInventory = errors.New("inventory: no hosts")

	// ErrKubeConfig indicates the Kubernetes client configuration could not be loaded.
	ErrKubeConfig = errors.New("inventory: kubernetes config")

	// ErrInvalidSelector indicates a malformed label selector.
	ErrInvalidSelector = errors.New("inventory: invalid label selector")
)
