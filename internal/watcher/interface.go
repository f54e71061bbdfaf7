package watcher

import "context"

// Watcher defines the interface for object-creation event sources
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler handles the creation of one object, addressed by key
type EventHandler func(ctx context.Context, key string) error

// Filter decides whether a created key is worth dispatching
type Filter func(key string) bool
