package attachment

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pborman/uuid"
)

// Part is one stored attachment.
type Part struct {
	ID           string
	MimeType     string
	Data         []byte
	Handler      *DataHandler
	LocalName    string
	NamespaceURI string
	SwaRef       bool
}

// Store is an in-memory attachment package. The same store can be handed to
// a marshaller and later to an unmarshaller to round-trip a document.
type Store struct {
	mu    sync.RWMutex
	parts map[string]*Part
	xop   bool
	newID func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithXOP marks the store as an XOP package, enabling MTOM optimization.
func WithXOP() StoreOption {
	return func(s *Store) { s.xop = true }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		parts: make(map[string]*Part),
		newID: uuid.New,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsXOPPackage reports whether MTOM attachments are accepted.
func (s *Store) IsXOPPackage() bool {
	return s.xop
}

// AddSwaRefAttachment stores a data handler and returns its content id.
func (s *Store) AddSwaRefAttachment(h *DataHandler) (string, error) {
	if h == nil {
		return "", ErrNilHandler
	}

	return s.add(&Part{MimeType: h.ContentType(), Handler: h, SwaRef: true}), nil
}

// AddSwaRefBytes stores raw bytes and returns their content id.
func (s *Store) AddSwaRefBytes(data []byte) (string, error) {
	return s.add(&Part{MimeType: DefaultContentType, Data: data, SwaRef: true}), nil
}

// AddMtomAttachment stores raw bytes for an XOP include.
func (s *Store) AddMtomAttachment(data []byte, mimeType, localName, namespaceURI string) (string, error) {
	if mimeType == "" {
		mimeType = DefaultContentType
	}

	return s.add(&Part{
		MimeType:     mimeType,
		Data:         data,
		LocalName:    localName,
		NamespaceURI: namespaceURI,
	}), nil
}

// AddMtomDataHandler stores a data handler for an XOP include.
func (s *Store) AddMtomDataHandler(h *DataHandler, localName, namespaceURI string) (string, error) {
	if h == nil {
		return "", ErrNilHandler
	}

	return s.add(&Part{
		MimeType:     h.ContentType(),
		Handler:      h,
		LocalName:    localName,
		NamespaceURI: namespaceURI,
	}), nil
}

// AttachmentAsDataHandler resolves a content id to a data handler.
func (s *Store) AttachmentAsDataHandler(contentID string) (*DataHandler, error) {
	p, err := s.Part(contentID)
	if err != nil {
		return nil, err
	}

	if p.Handler != nil {
		return p.Handler, nil
	}

	return NewDataHandler(p.Data, p.MimeType), nil
}

// AttachmentAsBytes resolves a content id to its bytes.
func (s *Store) AttachmentAsBytes(contentID string) ([]byte, error) {
	p, err := s.Part(contentID)
	if err != nil {
		return nil, err
	}

	if p.Handler != nil {
		return p.Handler.Bytes()
	}

	return p.Data, nil
}

// Part returns the stored part for a content id, with or without the cid scheme.
func (s *Store) Part(contentID string) (*Part, error) {
	id := TrimContentID(contentID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parts[id]
	if !ok {
		return nil, fmt.Errorf("content id %q: %w", contentID, ErrNotFound)
	}

	return p, nil
}

// Parts returns all stored parts ordered by id.
func (s *Store) Parts() []*Part {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Part, 0, len(s.parts))
	for _, p := range s.parts {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Len returns the number of stored parts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.parts)
}

func (s *Store) add(p *Part) string {
	p.ID = s.newID()

	s.mu.Lock()
	s.parts[p.ID] = p
	s.mu.Unlock()

	return ContentID(p.ID)
}
