package lsp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/internal/document"
)

func TestDocumentStore(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()
	uri := "file:///src/C.cs"

	_, ok := store.Text(uri)
	assert.False(t, ok)

	store.Open(uri, csharpLanguageID, "class C { }", 1)

	text, ok := store.Text(uri)
	require.True(t, ok)
	assert.Equal(t, "class C { }", text)

	require.NoError(t, store.Update(uri, 2, func(string) (string, error) { return "class D { }", nil }))

	doc, ok := store.get(uri)
	require.True(t, ok)
	assert.Equal(t, "class D { }", doc.text)
	assert.Equal(t, int32(2), doc.version)

	errEdit := errors.New("bad edit")
	require.ErrorIs(t, store.Update(uri, 3, func(string) (string, error) { return "", errEdit }), errEdit)

	text, _ = store.Text(uri)
	assert.Equal(t, "class D { }", text)

	store.Close(uri)

	_, ok = store.Text(uri)
	assert.False(t, ok)
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewDocumentStore()

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			store.Open("file:///C.cs", csharpLanguageID, "class C { }", 1)
		}()

		go func() {
			defer wg.Done()

			store.Text("file:///C.cs")
		}()
	}

	wg.Wait()
}

func TestOpenDocumentName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uri        string
		languageID string
		want       string
	}{
		{uri: "file:///src/C.cs", languageID: csharpLanguageID, want: "C.cs"},
		{uri: "untitled:Untitled-1", languageID: csharpLanguageID, want: "untitled:Untitled-1.cs"},
		{uri: "file:///src/main.go", languageID: "go", want: "main.go"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, openDocument{languageID: tt.languageID}.name(tt.uri))
		})
	}
}

func TestSnapshotCache(t *testing.T) {
	t.Parallel()

	var calls int

	cache, err := NewSnapshotCache(2, func(_ context.Context, name string, text []byte) (*document.Document, error) {
		calls++

		return &document.Document{Path: name, Text: text}, nil
	})
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cache.Get(ctx, "C.cs", "class C { }")
	require.NoError(t, err)

	again, err := cache.Get(ctx, "C.cs", "class C { }")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, calls)

	_, err = cache.Get(ctx, "D.cs", "class C { }")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = cache.Get(ctx, "C.cs", "class E { }")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, int64(1), cache.CacheHits())
	assert.Equal(t, int64(3), cache.CacheMisses())
}

func TestActionCache(t *testing.T) {
	t.Parallel()

	cache, err := NewActionCache(4)
	require.NoError(t, err)

	cache.add("a", listedAction{uri: "file:///C.cs", text: "class C { }"})

	listed, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, "file:///C.cs", listed.uri)

	cache.remove("a")

	_, ok = cache.get("a")
	assert.False(t, ok)
	assert.Equal(t, int64(1), cache.CacheHits())
	assert.Equal(t, int64(1), cache.CacheMisses())
}

func TestSnapshotCache_ParseErrorNotCached(t *testing.T) {
	t.Parallel()

	errParse := errors.New("parse failed")

	var calls int

	cache, err := NewSnapshotCache(4, func(context.Context, string, []byte) (*document.Document, error) {
		calls++

		return nil, errParse
	})
	require.NoError(t, err)

	for range 2 {
		_, err = cache.Get(context.Background(), "C.cs", "class")
		require.ErrorIs(t, err, errParse)
	}

	assert.Equal(t, 2, calls)
	assert.Zero(t, cache.Len())
}

func TestNewSnapshotCache_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewSnapshotCache(0, nil)
	require.Error(t, err)
}
