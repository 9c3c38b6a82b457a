package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDelivers(t *testing.T) {
	reg := NewRegistry(nil)

	var delivered string
	reg.Register("preview", MountPointFunc(func(doc string) {
		delivered = doc
	}))

	ok := reg.Mount("preview", "<html>doc</html>")
	assert.True(t, ok)
	assert.Equal(t, "<html>doc</html>", delivered)
}

func TestRegistryMissingMountWarns(t *testing.T) {
	bridge := NewBridge()
	reg := NewRegistry(bridge)

	ok := reg.Mount("gone", "<html></html>")
	assert.False(t, ok)

	entries := bridge.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn: element not found gone", entries[0].Text)
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry(NewBridge())

	calls := 0
	reg.Register("slot", MountPointFunc(func(string) { calls++ }))
	reg.Unregister("slot")

	assert.False(t, reg.Mount("slot", "doc"))
	assert.Zero(t, calls)
}

func TestRegistryReplaceMount(t *testing.T) {
	reg := NewRegistry(nil)

	var got string
	reg.Register("slot", MountPointFunc(func(string) { got = "old" }))
	reg.Register("slot", MountPointFunc(func(string) { got = "new" }))

	require.True(t, reg.Mount("slot", "doc"))
	assert.Equal(t, "new", got)
}
