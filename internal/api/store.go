package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/parser"
)

// DefaultMaxDocuments limits the documents kept in memory
const DefaultMaxDocuments = 100

// Document is one drawing uploaded to the service
type Document struct {
	ID      string
	Created time.Time
	Parser  *parser.Parser
	Result  *parser.Result

	// mu serializes the handlers that walk the drawing
	mu  sync.Mutex
	seq uint64
}

// Options configure the drawings created by a Store
type Options struct {
	Library      library.Library
	MaxDocuments int

	// Layers returns a fresh layer table for each document, the standard
	// layers when nil
	Layers   func() []*layers.Layer
	Defaults parser.DocumentDefaults

	TextFont     string
	TextFontSize int
}

// Store keeps the parsed documents, keyed by uuid. When full, the oldest
// document is dropped to make room.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
	next uint64
	opts Options
}

// NewStore creates an empty store
func NewStore(opts Options) *Store {
	if opts.MaxDocuments < 1 {
		opts.MaxDocuments = DefaultMaxDocuments
	}
	if opts.Library == nil {
		opts.Library = library.New()
	}
	if opts.Layers == nil {
		opts.Layers = layers.Standard
	}
	if opts.Defaults == (parser.DocumentDefaults{}) {
		opts.Defaults = parser.DefaultDocumentDefaults()
	}
	return &Store{docs: make(map[string]*Document), opts: opts}
}

// Library returns the macro library shared by every document
func (s *Store) Library() library.Library { return s.opts.Library }

// Create parses text into a new document
func (s *Store) Create(text string) (*Document, error) {
	d := model.New(s.opts.Library, s.opts.Layers())
	if s.opts.TextFont != "" {
		d.TextFont = s.opts.TextFont
	}
	if s.opts.TextFontSize > 0 {
		d.TextFontSize = s.opts.TextFontSize
	}
	p := parser.New(d)
	p.SetDefaults(s.opts.Defaults)

	res, err := p.ParseString(text)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		ID:      uuid.New().String(),
		Created: time.Now(),
		Parser:  p,
		Result:  res,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.docs) >= s.opts.MaxDocuments {
		s.evictOldestLocked()
	}
	s.next++
	doc.seq = s.next
	s.docs[doc.ID] = doc
	return doc, nil
}

func (s *Store) evictOldestLocked() {
	var oldest *Document
	for _, d := range s.docs {
		if oldest == nil || d.seq < oldest.seq {
			oldest = d
		}
	}
	if oldest != nil {
		delete(s.docs, oldest.ID)
	}
}

// Get returns a document by id
func (s *Store) Get(id string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	return d, ok
}

// Delete removes a document and reports whether it existed
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok
}

// Len returns the number of documents stored
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
