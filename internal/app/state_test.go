package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddURLsDeduplicates(t *testing.T) {
	s := NewState()
	var changes []interface{}
	s.On(EventGalleryChanged, func(data interface{}) { changes = append(changes, data) })

	assert.Equal(t, 2, s.AddURLs("a.jpg", " b.jpg ", "a.jpg", ""))
	assert.Equal(t, 0, s.AddURLs("b.jpg"))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, s.URLs())
	assert.Equal(t, []interface{}{2}, changes)
}

func TestOpenAndClose(t *testing.T) {
	s := NewState()
	s.AddURLs("a.jpg", "b.jpg")

	var opened []string
	closed := 0
	s.On(EventImageOpened, func(data interface{}) { opened = append(opened, data.(string)) })
	s.On(EventViewerClosed, func(interface{}) { closed++ })

	assert.Equal(t, -1, s.Current())
	require.NoError(t, s.Open(1))
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, []string{"b.jpg"}, opened)

	assert.ErrorIs(t, s.Open(5), ErrNoSuchImage)
	assert.Equal(t, 1, s.Current())

	s.Close()
	s.Close()
	assert.Equal(t, -1, s.Current())
	assert.Equal(t, 1, closed)
}

func TestRemove(t *testing.T) {
	s := NewState()
	s.AddURLs("a.jpg", "b.jpg", "c.jpg")
	closed := 0
	s.On(EventViewerClosed, func(interface{}) { closed++ })

	require.NoError(t, s.Open(2))
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 1, s.Current(), "index follows the open image")
	assert.Equal(t, 0, closed)

	require.NoError(t, s.Remove(1))
	assert.Equal(t, -1, s.Current())
	assert.Equal(t, 1, closed)
	assert.Equal(t, []string{"b.jpg"}, s.URLs())

	assert.ErrorIs(t, s.Remove(3), ErrNoSuchImage)
	_, err := s.URL(3)
	assert.ErrorIs(t, err, ErrNoSuchImage)
}
