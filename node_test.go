package bstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSearch(t *testing.T) {
	t.Parallel()

	n := &Node[Int64Key, string]{
		minimumDegree: 2,
		elements: []element[Int64Key, string]{
			{key: 10, value: "a"},
			{key: 20, value: "b"},
			{key: 30, value: "c"},
		},
		loaded: true,
	}

	idx, found := n.search(20)
	assert.True(t, found)
	assert.Equal(t, 1, idx)

	idx, found = n.search(25)
	assert.False(t, found)
	assert.Equal(t, 2, idx)

	idx, found = n.search(5)
	assert.False(t, found)
	assert.Equal(t, 0, idx)

	idx, found = n.search(100)
	assert.False(t, found)
	assert.Equal(t, 3, idx)
}

func TestNodeIsFull(t *testing.T) {
	t.Parallel()

	n := &Node[Int64Key, string]{minimumDegree: 2, loaded: true}
	assert.False(t, n.isFull())

	n.elements = make([]element[Int64Key, string], 2*2-1)
	assert.True(t, n.isFull())
}

func TestEncodeDecodeNodeBodyLeaf(t *testing.T) {
	t.Parallel()

	n := &Node[Int64Key, string]{
		minimumDegree: 4,
		elements: []element[Int64Key, string]{
			{key: 1, value: "one"},
			{key: 2, value: "two"},
		},
		loaded: true,
	}

	body, err := encodeNodeBody(n, Int64Codec{}, StringCodec{})
	require.NoError(t, err)

	decoded, err := decodeNodeBody(body, Int64Codec{}, StringCodec{})
	require.NoError(t, err)

	assert.Equal(t, n.minimumDegree, decoded.minimumDegree)
	assert.True(t, decoded.isLeaf())
	require.Len(t, decoded.elements, 2)
	assert.Equal(t, Int64Key(1), decoded.elements[0].key)
	assert.Equal(t, "one", decoded.elements[0].value)
	assert.Equal(t, Int64Key(2), decoded.elements[1].key)
	assert.Equal(t, "two", decoded.elements[1].value)
	assert.Empty(t, decoded.children)
}

func TestEncodeDecodeNodeBodyInternal(t *testing.T) {
	t.Parallel()

	n := &Node[Int64Key, string]{
		minimumDegree: 2,
		elements: []element[Int64Key, string]{
			{key: 50, value: "mid"},
		},
		children: []*childEdge[Int64Key, string]{
			{offset: 20},
			{offset: 200},
		},
		loaded: true,
	}

	body, err := encodeNodeBody(n, Int64Codec{}, StringCodec{})
	require.NoError(t, err)

	decoded, err := decodeNodeBody(body, Int64Codec{}, StringCodec{})
	require.NoError(t, err)

	assert.False(t, decoded.isLeaf())
	require.Len(t, decoded.children, 2)
	assert.False(t, decoded.children[0].isLoaded())
	assert.Equal(t, int64(20), decoded.children[0].offset)
	assert.Equal(t, int64(200), decoded.children[1].offset)
}

func TestDecodeNodeBodyRejectsTruncatedInput(t *testing.T) {
	t.Parallel()

	n := &Node[Int64Key, string]{
		minimumDegree: 2,
		elements:      []element[Int64Key, string]{{key: 1, value: "x"}},
		loaded:        true,
	}
	body, err := encodeNodeBody(n, Int64Codec{}, StringCodec{})
	require.NoError(t, err)

	_, err = decodeNodeBody(body[:len(body)-3], Int64Codec{}, StringCodec{})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
