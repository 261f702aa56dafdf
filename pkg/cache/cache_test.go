package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/morphlang/morph/pkg/types"
	"github.com/nalgeon/be"
)

func transform(id string) *types.CompiledTransform {
	return types.NewCompiledTransform(id, "", false, false, func(any, map[string]any) (any, error) {
		return id, nil
	})
}

func TestGetPut(t *testing.T) {
	c := New(4)

	_, ok := c.Get("a")
	be.True(t, !ok)

	want := transform("a")
	c.Put("a", want)
	got, ok := c.Get("a")
	be.True(t, ok)
	be.Equal(t, got, want)
	be.Equal(t, c.Len(), 1)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put("a", transform("a"))
	c.Put("b", transform("b"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	be.True(t, ok)

	c.Put("c", transform("c"))
	be.Equal(t, c.Len(), 2)

	_, ok = c.Get("b")
	be.True(t, !ok)
	_, ok = c.Get("a")
	be.True(t, ok)
	_, ok = c.Get("c")
	be.True(t, ok)
}

func TestPutExistingUpdates(t *testing.T) {
	c := New(2)
	c.Put("a", transform("first"))
	c.Put("a", transform("second"))
	be.Equal(t, c.Len(), 1)

	got, ok := c.Get("a")
	be.True(t, ok)
	be.Equal(t, got.Source(), "second")
}

func TestGetOrCompile(t *testing.T) {
	c := New(4)
	calls := 0
	compile := func() (*types.CompiledTransform, error) {
		calls++
		return transform("x"), nil
	}

	first, err := c.GetOrCompile("x", compile)
	be.Err(t, err, nil)
	second, err := c.GetOrCompile("x", compile)
	be.Err(t, err, nil)
	be.Equal(t, first, second)
	be.Equal(t, calls, 1)
}

func TestGetOrCompileError(t *testing.T) {
	c := New(4)
	boom := errors.New("boom")

	_, err := c.GetOrCompile("x", func() (*types.CompiledTransform, error) {
		return nil, boom
	})
	be.Err(t, err, boom)

	// Failed compilations are not cached.
	be.Equal(t, c.Len(), 0)
}

func TestPurge(t *testing.T) {
	c := New(4)
	c.Put("a", transform("a"))
	c.Put("b", transform("b"))
	c.Purge()
	be.Equal(t, c.Len(), 0)
	_, ok := c.Get("a")
	be.True(t, !ok)
}

func TestZeroCapacityUsesDefault(t *testing.T) {
	c := New(0)
	for i := 0; i < DefaultSize+10; i++ {
		key := fmt.Sprintf("k%d", i)
		c.Put(key, transform(key))
	}
	be.Equal(t, c.Len(), DefaultSize)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 100; j++ {
				c.Put(key, transform(key))
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	be.Equal(t, c.Len(), 4)
}
