package oxm

import (
	"encoding/xml"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"

	"oxmapper/attachment"
	"oxmapper/mapping"
)

func TestUnmarshal_RoundTrip(t *testing.T) {
	boxed := []byte{0x07, 0x08}
	want := &fieldDoc{
		Field:   []byte{0x01, 0x02, 0x03},
		Handler: attachment.NewDataHandler([]byte("scan"), "image/tiff"),
		Boxed:   &boxed,
		Photo:   photo{0xff, 0x00},
		Pages:   [][]byte{{0x01}, {0x02}},
	}

	ctx := contextFor(t, "doc", nil,
		mapping.AttributeBinding{Attribute: "Field", XPath: "field"},
		mapping.AttributeBinding{Attribute: "Handler", XPath: "scan"},
		mapping.AttributeBinding{Attribute: "Boxed", XPath: "boxed"},
		mapping.AttributeBinding{Attribute: "Photo", XPath: "photo", SchemaType: "hexBinary"},
		mapping.AttributeBinding{Attribute: "Pages", XPath: "pages/page"},
	)

	tests := []struct {
		name  string
		store func() *attachment.Store
	}{
		{name: "inline"},
		{name: "xop", store: func() *attachment.Store { return attachment.NewStore(attachment.WithXOP()) }},
		{name: "plain attachments", store: func() *attachment.Store { return attachment.NewStore() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mopts []MarshallerOption
			var uopts []UnmarshallerOption

			if tt.store != nil {
				store := tt.store()
				mopts = append(mopts, WithAttachmentMarshaller(store))
				uopts = append(uopts, WithAttachmentUnmarshaller(store))
			}

			out := marshal(t, ctx, want, mopts...)
			got := unmarshal(t, ctx, out, uopts...)

			assert.Equal(t, want.Field, got.Field)
			assert.Equal(t, *want.Boxed, *got.Boxed)
			assert.Equal(t, want.Photo, got.Photo)
			assert.Equal(t, want.Pages, got.Pages, "no page is assigned twice")

			require.NotNil(t, got.Handler)
			data, err := got.Handler.Bytes()
			require.NoError(t, err)
			assert.Equal(t, []byte("scan"), data)
		})
	}

	out := marshal(t, ctx, want)
	assert.Contains(t, out, "<photo>FF00</photo>")
}

func TestUnmarshal_SwaRef(t *testing.T) {
	binding := octetField
	binding.SwaRef = true

	ctx := contextFor(t, "doc", nil, binding)
	store := attachment.NewStore(attachment.WithIDGenerator(sequentialIDs()))

	out := marshal(t, ctx, &fieldDoc{Field: []byte{1, 2, 3}}, WithAttachmentMarshaller(store))
	require.Equal(t, `<doc><field>cid:id-1</field></doc>`, out)

	got := unmarshal(t, ctx, out, WithAttachmentUnmarshaller(store))
	assert.Equal(t, []byte{1, 2, 3}, got.Field)

	// without an attachment unmarshaller the reference cannot be resolved
	got = unmarshal(t, ctx, out)
	assert.Nil(t, got.Field)
}

func TestUnmarshal_XOPIncludeWithoutStore(t *testing.T) {
	ctx := contextFor(t, "doc", nil, octetField)

	doc := `<doc><field><xop:Include xmlns:xop="http://www.w3.org/2004/08/xop/include" href="cid:x"/></field></doc>`

	// not an XOP package: the element is read as text and holds none
	got := unmarshal(t, ctx, doc)
	assert.Nil(t, got.Field)

	store := attachment.NewStore(attachment.WithXOP(), attachment.WithIDGenerator(func() string { return "x" }))
	_, err := store.AddMtomAttachment([]byte{9}, "", "field", "")
	require.NoError(t, err)

	got = unmarshal(t, ctx, doc, WithAttachmentUnmarshaller(store))
	assert.Equal(t, []byte{9}, got.Field)

	// an XOP package may still carry inline text
	got = unmarshal(t, ctx, `<doc><field> AQID </field></doc>`, WithAttachmentUnmarshaller(store))
	assert.Equal(t, []byte{1, 2, 3}, got.Field)
}

func TestUnmarshal_AttributeAssignedAtStart(t *testing.T) {
	ctx := contextFor(t, "field", nil, mapping.AttributeBinding{Attribute: "Field", XPath: "@attr"})

	u := ctx.NewUnmarshaller()
	cd := ctx.project.Classes[0]
	d := cd.Mapping("Field")
	obj := &fieldDoc{}

	rec := newUnmarshalRecord(u, cd, obj)
	require.NoError(t, rec.startAttributes(rec.path[0], []xml.Attr{{Name: xml.Name{Local: "attr"}, Value: "AQID"}}))

	assert.Equal(t, []byte{1, 2, 3}, obj.Field, "assigned before any end event")
	assert.Equal(t, PhaseDone, rec.Phase(d))

	got := unmarshal(t, ctx, `<field attr="AQID"/>`)
	assert.Equal(t, []byte{1, 2, 3}, got.Field)

	got = unmarshal(t, ctx, `<field attr=""/>`)
	assert.Nil(t, got.Field, "empty text leaves the value unset")
}

func TestUnmarshal_Phases(t *testing.T) {
	ctx := contextFor(t, "doc", nil, octetField)
	cd := ctx.project.Classes[0]
	d := cd.Mapping("Field")
	fieldStart := xml.StartElement{Name: xml.Name{Local: "field"}}
	fieldEnd := xml.EndElement{Name: xml.Name{Local: "field"}}

	t.Run("buffering", func(t *testing.T) {
		obj := &fieldDoc{}
		rec := newUnmarshalRecord(ctx.NewUnmarshaller(), cd, obj)
		assert.Equal(t, PhaseAwaitingStart, rec.Phase(d))

		require.NoError(t, rec.top().startElement(rec, fieldStart))
		assert.Equal(t, PhaseBufferingText, rec.Phase(d))

		rec.top().characters(rec, []byte("AQ"))
		rec.top().characters(rec, []byte("ID"))
		require.NoError(t, rec.top().endElement(rec, fieldEnd))

		assert.Equal(t, PhaseDone, rec.Phase(d))
		assert.Equal(t, []byte{1, 2, 3}, obj.Field)
	})

	t.Run("delegated", func(t *testing.T) {
		store := attachment.NewStore(attachment.WithXOP(), attachment.WithIDGenerator(sequentialIDs()))
		cid, err := store.AddMtomAttachment([]byte{4, 5}, "", "field", "")
		require.NoError(t, err)

		obj := &fieldDoc{}
		rec := newUnmarshalRecord(ctx.NewUnmarshaller(WithAttachmentUnmarshaller(store)), cd, obj)

		require.NoError(t, rec.top().startElement(rec, fieldStart))
		assert.Equal(t, PhaseDelegatedToAttachmentHandler, rec.Phase(d))
		require.IsType(t, &attachmentHandler{}, rec.top())

		include := xml.StartElement{
			Name: xml.Name{Space: attachment.XOPNamespaceURI, Local: attachment.XOPInclude},
			Attr: []xml.Attr{{Name: xml.Name{Local: "href"}, Value: cid}},
		}
		require.NoError(t, rec.top().startElement(rec, include))
		assert.Equal(t, []byte{4, 5}, obj.Field, "assigned as soon as the include is seen")

		require.NoError(t, rec.top().endElement(rec, xml.EndElement{Name: include.Name}))
		require.NoError(t, rec.top().endElement(rec, fieldEnd))

		assert.Equal(t, PhaseDone, rec.Phase(d))
		assert.Same(t, rec, rec.top(), "the handler removes itself")
		assert.Equal(t, []byte{4, 5}, obj.Field)
	})
}

func TestUnmarshal_DecodeErrors(t *testing.T) {
	ctx := contextFor(t, "doc", nil,
		octetField,
		mapping.AttributeBinding{Attribute: "Title", XPath: "title"},
		mapping.AttributeBinding{Attribute: "Count", XPath: "@count"},
	)
	doc := `<doc><field>!!not base64!!</field><title>kept</title></doc>`

	var out fieldDoc
	err := ctx.NewUnmarshaller().UnmarshalInto(strings.NewReader(doc), &out)
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Field", de.Attribute)
	assert.Equal(t, "field", de.Element)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, SeverityError, ve.Event.Severity)

	got := unmarshal(t, ctx, doc, WithEventHandler(IgnoreErrors(1)))
	assert.Nil(t, got.Field)
	assert.Equal(t, "kept", got.Title, "siblings are still read")

	_, err = ctx.NewUnmarshaller().Unmarshal(strings.NewReader(`<doc count="many"/>`))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Count", de.Attribute)
}

func TestUnmarshal_IgnoreErrorsBudget(t *testing.T) {
	ctx := contextFor(t, "doc", nil, octetField)
	u := ctx.NewUnmarshaller(WithEventHandler(IgnoreErrors(2)))
	bad := `<doc><field>%%</field></doc>`

	for range 2 {
		_, err := u.Unmarshal(strings.NewReader(bad))
		require.NoError(t, err)
	}

	_, err := u.Unmarshal(strings.NewReader(bad))
	require.Error(t, err, "the budget spans calls")
}

func TestUnmarshal_MissingAttachment(t *testing.T) {
	binding := octetField
	binding.SwaRef = true

	ctx := contextFor(t, "doc", nil, binding)
	store := attachment.NewStore()

	_, err := ctx.NewUnmarshaller(WithAttachmentUnmarshaller(store)).
		Unmarshal(strings.NewReader(`<doc><field>cid:nope</field></doc>`))
	require.ErrorIs(t, err, attachment.ErrNotFound)

	var de *DecodeError
	require.ErrorAs(t, err, &de)

	xopCtx := contextFor(t, "doc", nil, octetField)
	_, err = xopCtx.NewUnmarshaller(WithAttachmentUnmarshaller(attachment.NewStore(attachment.WithXOP()))).
		Unmarshal(strings.NewReader(`<doc><field><xop:Include xmlns:xop="http://www.w3.org/2004/08/xop/include" href="cid:nope"/></field></doc>`))
	require.ErrorIs(t, err, attachment.ErrNotFound)
}

func TestUnmarshal_Fatal(t *testing.T) {
	ctx := contextFor(t, "doc", nil, octetField)

	var events []ValidationEvent
	always := ValidationEventHandlerFunc(func(ev ValidationEvent) bool {
		events = append(events, ev)
		return true
	})

	_, err := ctx.NewUnmarshaller(WithEventHandler(always)).Unmarshal(strings.NewReader(`<doc><field>AQID</doc>`))
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, SeverityFatal, ve.Event.Severity)
	require.Len(t, events, 1)

	var syntax *xml.SyntaxError
	assert.ErrorAs(t, err, &syntax)
}

func TestUnmarshal_UnexpectedElement(t *testing.T) {
	ctx := contextFor(t, "doc", nil, mapping.AttributeBinding{Attribute: "Title", XPath: "title"})
	doc := `<doc><bogus><title>nested</title></bogus><title>t</title></doc>`

	var events []ValidationEvent
	record := ValidationEventHandlerFunc(func(ev ValidationEvent) bool {
		events = append(events, ev)
		return true
	})

	got := unmarshal(t, ctx, doc, WithEventHandler(record))
	assert.Equal(t, "t", got.Title, "content of an unmapped element is skipped")

	require.Len(t, events, 1)
	assert.Equal(t, SeverityWarning, events[0].Severity)
	assert.Equal(t, "bogus", events[0].Element)

	got = unmarshal(t, ctx, doc)
	assert.Equal(t, "t", got.Title, "warnings do not abort by default")

	strict := ValidationEventHandlerFunc(func(ValidationEvent) bool { return false })
	_, err := ctx.NewUnmarshaller(WithEventHandler(strict)).Unmarshal(strings.NewReader(doc))
	require.Error(t, err)
}

func TestUnmarshal_Roots(t *testing.T) {
	ctx := contextFor(t, "ex:doc", map[string]string{"ex": "urn:example"},
		mapping.AttributeBinding{Attribute: "Title", XPath: "ex:title"},
	)
	u := ctx.NewUnmarshaller()

	obj, err := u.Unmarshal(strings.NewReader(`<doc xmlns="urn:example"><title>t</title></doc>`))
	require.NoError(t, err)
	require.IsType(t, &fieldDoc{}, obj)
	assert.Equal(t, "t", obj.(*fieldDoc).Title)

	_, err = u.Unmarshal(strings.NewReader(`<doc><title>t</title></doc>`))
	require.ErrorIs(t, err, ErrUnknownRoot)

	_, err = u.Unmarshal(strings.NewReader(``))
	require.ErrorIs(t, err, ErrNoRoot)

	err = u.UnmarshalInto(strings.NewReader(`<ex:doc xmlns:ex="urn:example"/>`), &struct{}{})
	require.Error(t, err)

	err = u.UnmarshalInto(strings.NewReader(`<ex:doc xmlns:ex="urn:example"/>`), fieldDoc{})
	require.Error(t, err)
}

func TestUnmarshal_NullValues(t *testing.T) {
	scope := tally.NewTestScope("", nil)

	ctx := contextWith(t, "doc", nil, []Option{WithMetrics(scope)},
		mapping.AttributeBinding{Attribute: "Count", XPath: "count", NullValue: ptr("7")},
		mapping.AttributeBinding{Attribute: "Field", XPath: "field", NullValue: ptr("AQID")},
		mapping.AttributeBinding{Attribute: "Title", XPath: "@title", NullValue: ptr("untitled")},
	)

	got := unmarshal(t, ctx, `<doc/>`)
	assert.Equal(t, 7, got.Count)
	assert.Equal(t, []byte{1, 2, 3}, got.Field)
	assert.Equal(t, "untitled", got.Title)
	assert.Equal(t, int64(3), counterValue(scope, "unmarshal.null_values"))

	got = unmarshal(t, ctx, `<doc title="x"><count>2</count><field></field></doc>`)
	assert.Equal(t, 2, got.Count)
	assert.Nil(t, got.Field, "a present but empty element is not absent")
	assert.Equal(t, "x", got.Title)
	assert.Equal(t, int64(3), counterValue(scope, "unmarshal.null_values"))
}

func TestUnmarshal_DirectValues(t *testing.T) {
	ctx := contextFor(t, "doc", nil,
		mapping.AttributeBinding{Attribute: "Title", XPath: "title/text()"},
		mapping.AttributeBinding{Attribute: "Count", XPath: "meta/@count"},
	)

	got := unmarshal(t, ctx, `<doc><meta count=" 12 "/><title> spaced </title></doc>`)
	assert.Equal(t, " spaced ", got.Title, "string text is kept as written")
	assert.Equal(t, 12, got.Count)

	got = unmarshal(t, ctx, `<doc><meta count=""/></doc>`)
	assert.Zero(t, got.Count)
}

func TestUnmarshal_Metrics(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	ctx := contextWith(t, "doc", nil, []Option{WithMetrics(scope)}, octetField)
	u := ctx.NewUnmarshaller()

	_, err := u.Unmarshal(strings.NewReader(`<doc><field>AQID</field></doc>`))
	require.NoError(t, err)

	_, err = u.Unmarshal(strings.NewReader(`<doc><field>%</field></doc>`))
	require.Error(t, err)

	assert.Equal(t, int64(2), counterValue(scope, "unmarshal.calls"))
	assert.Equal(t, int64(1), counterValue(scope, "unmarshal.errors"))
	assert.Equal(t, int64(1), counterValue(scope, "unmarshal.decode_errors"))
	assert.Equal(t, int64(1), counterValue(scope, "unmarshal.validation_events"))
}

func TestUnmarshal_Concurrent(t *testing.T) {
	ctx := contextFor(t, "doc", nil, mapping.AttributeBinding{Attribute: "Pages", XPath: "page"})
	u := ctx.NewUnmarshaller()

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var got fieldDoc
			if err := u.UnmarshalInto(strings.NewReader(`<doc><page>AQ==</page><page>Ag==</page></doc>`), &got); err != nil {
				errs <- err
				return
			}

			if len(got.Pages) != 2 {
				errs <- errors.New("unexpected page count")
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func ptr(s string) *string {
	return &s
}

func TestUnmarshal_FormattedRoundTrip(t *testing.T) {
	ctx := contextFor(t, "doc", nil,
		mapping.AttributeBinding{Attribute: "Field", XPath: "media/field"},
		mapping.AttributeBinding{Attribute: "Kind", XPath: "media/field/@kind"},
		mapping.AttributeBinding{Attribute: "Pages", XPath: "pages/page", Inline: true},
	)

	want := &fieldDoc{
		Field: []byte{0x01, 0x02, 0x03},
		Kind:  "raw",
		Pages: [][]byte{{0x01}, {0x02}},
	}

	store := attachment.NewStore(attachment.WithXOP())

	out := marshal(t, ctx, want, WithAttachmentMarshaller(store), WithFormattedOutput())
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, "xop:Include")
	assert.Equal(t, 1, store.Len())

	got := unmarshal(t, ctx, out, WithAttachmentUnmarshaller(store))
	assert.Equal(t, want.Field, got.Field)
	assert.Equal(t, "raw", got.Kind)
	assert.Equal(t, want.Pages, got.Pages)
}

func TestUnmarshal_EmptyBytes(t *testing.T) {
	ctx := contextFor(t, "doc", nil, mapping.AttributeBinding{Attribute: "Field", XPath: "field"})

	out := marshal(t, ctx, &fieldDoc{Field: []byte{}})
	assert.Equal(t, "<doc><field></field></doc>", out)

	got := unmarshal(t, ctx, out)
	assert.Nil(t, got.Field, "empty text leaves the value unset")
}
