package store

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxmapper/attachment"
	"oxmapper/internal/logging"
	"oxmapper/mapping"
	"oxmapper/oxm"
)

func newContext(t *testing.T) *oxm.Context {
	t.Helper()

	bf, err := Bindings()
	require.NoError(t, err)

	project, err := mapping.Build(bf, Types(), nil)
	require.NoError(t, err)

	ctx, err := oxm.NewContext(project, oxm.WithLogger(logging.Discard()))
	require.NoError(t, err)

	return ctx
}

func TestBindings(t *testing.T) {
	bf, err := Bindings()
	require.NoError(t, err)
	require.Len(t, bf.Classes, 2)

	assert.Equal(t, "store.Order", bf.Classes[0].Type)
	assert.Equal(t, "st:order", bf.Classes[0].Root)
	assert.Equal(t, "store.Product", bf.Classes[1].Type)

	res := mapping.Validate(bf, Types(), nil)
	assert.False(t, res.HasErrors(), "%v", res.Error())
}

func TestProduct_RoundTrip(t *testing.T) {
	ctx := newContext(t)
	parts := attachment.NewStore(attachment.WithXOP())

	want := &Product{
		ID:         7,
		SKU:        "CAM-1",
		Name:       "Camera",
		PriceCents: 49900,
		CreatedAt:  time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Photo:      []byte{0xff, 0xd8, 0xff},
		Thumbnail:  []byte{0x01},
		Manual:     attachment.NewDataHandler([]byte("%PDF"), "application/pdf"),
		Inventory:  3,
	}

	var buf bytes.Buffer
	require.NoError(t, ctx.NewMarshaller(oxm.WithAttachmentMarshaller(parts)).Marshal(&buf, want))

	doc := buf.String()
	assert.Contains(t, doc, `<st:product xmlns:st="urn:oxmapper:store" id="7">`)
	assert.Contains(t, doc, `<st:thumbnail>AQ==</st:thumbnail>`)
	assert.Contains(t, doc, `<xop:Include href="cid:`)
	assert.Equal(t, 2, parts.Len(), "photo via MTOM, manual via swaRef")

	var got Product
	require.NoError(t, ctx.NewUnmarshaller(oxm.WithAttachmentUnmarshaller(parts)).UnmarshalInto(strings.NewReader(doc), &got))

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.SKU, got.SKU)
	assert.Equal(t, want.PriceCents, got.PriceCents)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.Photo, got.Photo)
	assert.Equal(t, want.Thumbnail, got.Thumbnail)
	assert.Same(t, want.Manual, got.Manual)
	assert.Empty(t, got.Description, "an empty element is not an absent one")
	assert.Zero(t, got.Inventory)

	got = Product{}
	require.NoError(t, ctx.NewUnmarshaller().UnmarshalInto(strings.NewReader(`<st:product xmlns:st="urn:oxmapper:store" id="1"/>`), &got))
	assert.Equal(t, "n/a", got.Description)
	assert.Equal(t, int64(1), got.ID)
}

func TestOrder_RoundTrip(t *testing.T) {
	ctx := newContext(t)

	sig := []byte{0xca, 0xfe}
	want := &Order{
		ID:         1,
		CustomerID: 2,
		Status:     StatusPaid,
		TotalCents: 100,
		OrderedAt:  time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Signature:  &sig,
		Receipts:   [][]byte{{1}, {2}},
	}

	var buf bytes.Buffer
	require.NoError(t, ctx.NewMarshaller(oxm.WithFragment()).Marshal(&buf, want))
	assert.Contains(t, buf.String(), "<st:signature>CAFE</st:signature>")
	assert.Contains(t, buf.String(), "<st:receipts><st:page>AQ==</st:page><st:page>Ag==</st:page></st:receipts>")

	obj, err := ctx.NewUnmarshaller().Unmarshal(&buf)
	require.NoError(t, err)

	got, ok := obj.(*Order)
	require.True(t, ok)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Receipts, got.Receipts)
	assert.Equal(t, sig, *got.Signature)
	assert.True(t, want.OrderedAt.Equal(got.OrderedAt))
}
