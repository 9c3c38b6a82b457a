package sandbox

import (
	"fmt"
	"sync"
)

// MountPoint receives a composed document for display. Mount points are
// owned by the UI layer; the sandbox package only delivers to them.
type MountPoint interface {
	// Deliver hands over the full document text. Delivery is by content.
	Deliver(doc string)
}

// MountPointFunc adapts a function to the MountPoint interface.
type MountPointFunc func(doc string)

// Deliver implements MountPoint.
func (f MountPointFunc) Deliver(doc string) { f(doc) }

// Registry tracks live mount points by id. Delivering to an unknown id is
// a warned no-op, not an error: the mount point's lifecycle belongs to the
// UI layer and may lag behind the render pipeline.
type Registry struct {
	mu     sync.RWMutex
	mounts map[string]MountPoint
	bridge *Bridge
}

// NewRegistry creates a registry that reports mount warnings through the
// given bridge log. A nil bridge drops the warnings.
func NewRegistry(bridge *Bridge) *Registry {
	return &Registry{
		mounts: make(map[string]MountPoint),
		bridge: bridge,
	}
}

// Register installs (or replaces) the mount point for id.
func (r *Registry) Register(id string, mp MountPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounts[id] = mp
}

// Unregister removes the mount point for id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mounts, id)
}

// Mount delivers doc to the mount point registered under id. A missing
// mount point logs a warning and returns false.
func (r *Registry) Mount(id, doc string) bool {
	r.mu.RLock()
	mp, ok := r.mounts[id]
	r.mu.RUnlock()

	if !ok {
		if r.bridge != nil {
			r.bridge.Receive(Message{
				Type: MessageWarn,
				Msg:  fmt.Sprintf("element not found %s", id),
			})
		}
		return false
	}

	mp.Deliver(doc)
	return true
}
