package oxm

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"

	"oxmapper/attachment"
	"oxmapper/internal/logging"
	"oxmapper/mapping"
)

type fieldDoc struct {
	Field   []byte
	Handler *attachment.DataHandler
	Boxed   *[]byte
	Photo   photo
	Title   string
	Kind    string
	Count   int
	Pages   [][]byte
}

type photo []byte

const fieldDocType = "test.FieldDoc"

// contextFor binds fieldDoc to root with the given mappings.
func contextFor(t *testing.T, root string, namespaces map[string]string, bindings ...mapping.AttributeBinding) *Context {
	t.Helper()

	return contextWith(t, root, namespaces, nil, bindings...)
}

func contextWith(
	t *testing.T,
	root string,
	namespaces map[string]string,
	opts []Option,
	bindings ...mapping.AttributeBinding,
) *Context {
	t.Helper()

	bf := &mapping.BindingFile{
		Namespaces: namespaces,
		Classes: []mapping.ClassBinding{{
			Type:     fieldDocType,
			Root:     root,
			Mappings: bindings,
		}},
	}

	project, err := mapping.Build(bf, mapping.Types{}.Add(fieldDocType, fieldDoc{}), nil)
	require.NoError(t, err)

	ctx, err := NewContext(project, append([]Option{WithLogger(logging.Discard())}, opts...)...)
	require.NoError(t, err)

	return ctx
}

func marshal(t *testing.T, ctx *Context, obj any, opts ...MarshallerOption) string {
	t.Helper()

	var buf bytes.Buffer

	m := ctx.NewMarshaller(append([]MarshallerOption{WithFragment()}, opts...)...)
	require.NoError(t, m.Marshal(&buf, obj))

	return buf.String()
}

func unmarshal(t *testing.T, ctx *Context, doc string, opts ...UnmarshallerOption) *fieldDoc {
	t.Helper()

	var out fieldDoc
	require.NoError(t, ctx.NewUnmarshaller(opts...).UnmarshalInto(strings.NewReader(doc), &out))

	return &out
}

func sequentialIDs() func() string {
	n := 0

	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func counterValue(scope tally.TestScope, name string) int64 {
	if c, ok := scope.Snapshot().Counters()[name+"+"]; ok {
		return c.Value()
	}

	return 0
}

type mockAttachmentMarshaller struct {
	mock.Mock
}

func (m *mockAttachmentMarshaller) AddSwaRefAttachment(h *attachment.DataHandler) (string, error) {
	args := m.Called(h)
	return args.String(0), args.Error(1)
}

func (m *mockAttachmentMarshaller) AddSwaRefBytes(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *mockAttachmentMarshaller) AddMtomAttachment(data []byte, mimeType, localName, namespaceURI string) (string, error) {
	args := m.Called(data, mimeType, localName, namespaceURI)
	return args.String(0), args.Error(1)
}

func (m *mockAttachmentMarshaller) AddMtomDataHandler(h *attachment.DataHandler, localName, namespaceURI string) (string, error) {
	args := m.Called(h, localName, namespaceURI)
	return args.String(0), args.Error(1)
}

func (m *mockAttachmentMarshaller) IsXOPPackage() bool {
	return m.Called().Bool(0)
}
