package assetcache

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ObjectScheme prefixes every reference handed out by Objects.
const ObjectScheme = "blob:toddlingo/"

type Object struct {
	Data        []byte
	ContentType string
}

// Objects holds in-memory objects behind opaque references until they are revoked.
// A reference stays valid after the cache is cleared.
type Objects struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewObjects() *Objects {
	return &Objects{
		objects: make(map[string]Object),
	}
}

// Create stores a copy of data and returns a new reference to it.
func (o *Objects) Create(data []byte, contentType string) string {
	ref := ObjectScheme + uuid.NewString()
	o.mu.Lock()
	o.objects[ref] = Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	o.mu.Unlock()
	return ref
}

func (o *Objects) Open(ref string) (Object, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	object, ok := o.objects[ref]
	return object, ok
}

// Revoke releases the object. It reports whether the reference was live.
func (o *Objects) Revoke(ref string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[ref]; !ok {
		return false
	}
	delete(o.objects, ref)
	return true
}

func (o *Objects) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.objects)
}

// ObjectRef turns the id part of a reference back into the full reference.
func ObjectRef(id string) string {
	return ObjectScheme + strings.TrimPrefix(id, ObjectScheme)
}
