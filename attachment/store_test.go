package attachment

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedIDs(ids ...string) func() string {
	i := 0

	return func() string {
		id := ids[i]
		i++

		return id
	}
}

func TestStore_MtomRoundTrip(t *testing.T) {
	s := NewStore(WithXOP(), WithIDGenerator(fixedIDs("a1")))
	assert.True(t, s.IsXOPPackage())

	cid, err := s.AddMtomAttachment([]byte{1, 2, 3}, "", "photo", "urn:test")
	require.NoError(t, err)
	assert.Equal(t, "cid:a1", cid)

	p, err := s.Part("a1")
	require.NoError(t, err)
	assert.Equal(t, DefaultContentType, p.MimeType)
	assert.Equal(t, "photo", p.LocalName)
	assert.Equal(t, "urn:test", p.NamespaceURI)

	data, err := s.AttachmentAsBytes(cid)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	h, err := s.AttachmentAsDataHandler("<a1>")
	require.NoError(t, err)
	assert.Equal(t, DefaultContentType, h.ContentType())
}

func TestStore_SwaRefHandler(t *testing.T) {
	s := NewStore(WithIDGenerator(fixedIDs("h1")))
	assert.False(t, s.IsXOPPackage())

	h := NewDataHandlerFunc("doc.txt", "text/plain", func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader([]byte("hello"))), nil
	})

	cid, err := s.AddSwaRefAttachment(h)
	require.NoError(t, err)

	got, err := s.AttachmentAsDataHandler(cid)
	require.NoError(t, err)
	assert.Same(t, h, got)

	data, err := s.AttachmentAsBytes(cid)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, 1, s.Len())
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()

	_, err := s.AttachmentAsBytes("cid:missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.AddSwaRefAttachment(nil)
	require.ErrorIs(t, err, ErrNilHandler)
}

func TestDataHandler_BytesWithoutCopy(t *testing.T) {
	data := []byte{9, 8, 7}
	h := NewDataHandler(data, "")

	assert.True(t, h.InMemory())
	assert.Equal(t, DefaultContentType, h.ContentType())

	got, err := h.Bytes()
	require.NoError(t, err)
	assert.Same(t, &data[0], &got[0])
}

func TestTrimContentID(t *testing.T) {
	assert.Equal(t, "abc", TrimContentID("cid:abc"))
	assert.Equal(t, "abc", TrimContentID(" <abc> "))
	assert.Equal(t, "abc", TrimContentID("abc"))
}
