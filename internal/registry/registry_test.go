package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPutGet(t *testing.T) {
	r := New()
	r.Put("/src/App.tsx", []Module{
		{ID: "virtual:css-modules$/src/App-0.module.css", Content: ".a{}"},
		{ID: "virtual:css-modules$/src/App-1.module.css", Content: ".b{}"},
	})

	content, ok := r.Get("virtual:css-modules$/src/App-1.module.css")
	require.True(t, ok)
	assert.Equal(t, ".b{}", content)

	owner, ok := r.Owner("virtual:css-modules$/src/App-0.module.css")
	require.True(t, ok)
	assert.Equal(t, "/src/App.tsx", owner)

	assert.Equal(t, []string{
		"virtual:css-modules$/src/App-0.module.css",
		"virtual:css-modules$/src/App-1.module.css",
	}, r.IDsFor("/src/App.tsx"))
	assert.Equal(t, 2, r.Len())
}

func TestPutReplacesPreviousSet(t *testing.T) {
	r := New()
	r.Put("/src/App.tsx", []Module{
		{ID: "m0", Content: ".a{}"},
		{ID: "m1", Content: ".b{}"},
	})
	r.Put("/src/App.tsx", []Module{
		{ID: "m0", Content: ".a { color: red; }"},
	})

	content, ok := r.Get("m0")
	require.True(t, ok)
	assert.Equal(t, ".a { color: red; }", content)

	_, ok = r.Get("m1")
	assert.False(t, ok, "stale module from the previous transform must be gone")
	assert.Equal(t, []string{"m0"}, r.IDsFor("/src/App.tsx"))
}

func TestPutEmptyClears(t *testing.T) {
	r := New()
	r.Put("/src/App.tsx", []Module{{ID: "m0", Content: ".a{}"}})
	r.Put("/src/App.tsx", nil)

	_, ok := r.Get("m0")
	assert.False(t, ok)
	assert.Empty(t, r.IDsFor("/src/App.tsx"))
	assert.Empty(t, r.Files())
}

func TestClear(t *testing.T) {
	r := New()
	r.Put("/src/A.tsx", []Module{{ID: "a0", Content: ".a{}"}})
	r.Put("/src/B.tsx", []Module{{ID: "b0", Content: ".b{}"}})

	r.Clear("/src/A.tsx")

	_, ok := r.Get("a0")
	assert.False(t, ok)
	_, ok = r.Owner("a0")
	assert.False(t, ok)

	content, ok := r.Get("b0")
	require.True(t, ok)
	assert.Equal(t, ".b{}", content)
	assert.Equal(t, []string{"/src/B.tsx"}, r.Files())

	// clearing an unknown file is a no-op
	r.Clear("/src/missing.tsx")
	assert.Equal(t, 1, r.Len())
}

func TestPutMovesOwnership(t *testing.T) {
	r := New()
	r.Put("/src/A.tsx", []Module{{ID: "shared", Content: "a"}, {ID: "a1", Content: "a1"}})
	r.Put("/src/B.tsx", []Module{{ID: "shared", Content: "b"}})

	owner, ok := r.Owner("shared")
	require.True(t, ok)
	assert.Equal(t, "/src/B.tsx", owner)
	assert.Equal(t, []string{"a1"}, r.IDsFor("/src/A.tsx"))

	// clearing the previous owner must not drop the moved module
	r.Clear("/src/A.tsx")
	content, ok := r.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "b", content)
}

func TestPutDuplicateIDs(t *testing.T) {
	r := New()
	r.Put("/src/A.tsx", []Module{{ID: "m", Content: "first"}, {ID: "m", Content: "second"}})

	assert.Equal(t, []string{"m"}, r.IDsFor("/src/A.tsx"))
	content, _ := r.Get("m")
	assert.Equal(t, "second", content)
}

func TestIDsForReturnsCopy(t *testing.T) {
	r := New()
	r.Put("/src/A.tsx", []Module{{ID: "m", Content: ".a{}"}})

	ids := r.IDsFor("/src/A.tsx")
	ids[0] = "changed"
	assert.Equal(t, []string{"m"}, r.IDsFor("/src/A.tsx"))
}

func TestConcurrentAccess(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			file := fmt.Sprintf("/src/F%d.tsx", i)
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("virtual:css-modules$/src/F%d-0.module.css", i)
				r.Put(file, []Module{{ID: id, Content: fmt.Sprintf(".c%d{}", j)}})
				if _, ok := r.Get(id); !ok {
					t.Errorf("module %s missing right after Put", id)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, r.Len())
	assert.Len(t, r.Files(), 8)
}

// After any sequence of Put and Clear, every owned id has content and every
// content entry has an owner that lists it.
func TestRegistryInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New()
		files := []string{"/a.tsx", "/b.tsx", "/c.tsx"}
		ids := []string{"m0", "m1", "m2", "m3"}

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			file := rapid.SampledFrom(files).Draw(t, "file")
			if rapid.Bool().Draw(t, "clear") {
				r.Clear(file)
				if got := r.IDsFor(file); len(got) != 0 {
					t.Fatalf("file %s still owns %v after Clear", file, got)
				}
				continue
			}
			picked := rapid.SliceOfDistinct(rapid.SampledFrom(ids), func(s string) string { return s }).Draw(t, "ids")
			modules := make([]Module, len(picked))
			for j, id := range picked {
				modules[j] = Module{ID: id, Content: file + id}
			}
			r.Put(file, modules)
		}

		owned := 0
		for _, file := range r.Files() {
			for _, id := range r.IDsFor(file) {
				owned++
				content, ok := r.Get(id)
				if !ok {
					t.Fatalf("%s owned by %s has no content", id, file)
				}
				if content != file+id {
					t.Fatalf("%s has content %q, want %q", id, content, file+id)
				}
				if owner, _ := r.Owner(id); owner != file {
					t.Fatalf("%s listed under %s but owned by %s", id, file, owner)
				}
			}
		}
		if owned != r.Len() {
			t.Fatalf("%d owned ids but %d modules stored", owned, r.Len())
		}
	})
}
