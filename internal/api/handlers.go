package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/parser"
)

// MaxBodySize bounds the size of an uploaded drawing
const MaxBodySize = 16 << 20

// Handler serves the document API
type Handler struct {
	store      *Store
	extensions bool
	version    string
}

// NewHandler creates the handlers. extensions is the default of the text
// endpoint.
func NewHandler(store *Store, extensions bool, version string) *Handler {
	return &Handler{store: store, extensions: extensions, version: version}
}

// CreateResponse answers a document upload
type CreateResponse struct {
	ID          string   `json:"id"`
	Primitives  int      `json:"primitives"`
	Diagnostics []string `json:"diagnostics"`
}

// DocumentResponse describes a stored document
type DocumentResponse struct {
	ID          string                  `json:"id" msgpack:"id"`
	Summary     model.Summary           `json:"summary" msgpack:"summary"`
	Defaults    parser.DocumentDefaults `json:"defaults" msgpack:"defaults"`
	Diagnostics []string                `json:"diagnostics" msgpack:"diagnostics"`
}

// HitResponse is the primitive nearest to a point
type HitResponse struct {
	Found    bool   `json:"found"`
	Kind     string `json:"kind,omitempty"`
	Layer    int    `json:"layer"`
	Distance int    `json:"distance"`
	Text     string `json:"text,omitempty"`
}

// LibraryResponse lists macro keys
type LibraryResponse struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

func diagnostics(res *parser.Result) []string {
	out := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		out = append(out, d.Error())
	}
	return out
}

func (h *Handler) document(c echo.Context) (*Document, error) {
	id := c.Param("id")
	doc, ok := h.store.Get(id)
	if !ok {
		return nil, NewNotFoundError("document", id)
	}
	return doc, nil
}

func boolParam(c echo.Context, name string, def bool) (bool, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, NewBadRequestError("invalid "+name, err)
	}
	return v, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0, NewBadRequestError("invalid "+name, err)
	}
	return v, nil
}

// HandleHealth returns server health status
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"documents": h.store.Len(),
	})
}

// HandleCreate parses the request body as FidoCadJ code
func (h *Handler) HandleCreate(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBodySize))
	if err != nil {
		return NewBadRequestError("failed to read body", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return NewBadRequestError("empty drawing", nil)
	}

	doc, err := h.store.Create(string(data))
	if err != nil {
		return NewInternalError("failed to parse drawing", err)
	}
	return c.JSON(http.StatusCreated, CreateResponse{
		ID:          doc.ID,
		Primitives:  doc.Result.Added,
		Diagnostics: diagnostics(doc.Result),
	})
}

func (h *Handler) describe(doc *Document) DocumentResponse {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return DocumentResponse{
		ID:          doc.ID,
		Summary:     model.Summarize(doc.Parser.Drawing()),
		Defaults:    doc.Parser.Defaults(),
		Diagnostics: diagnostics(doc.Result),
	}
}

// HandleGet returns the summary of a document
func (h *Handler) HandleGet(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.describe(doc))
}

// HandleMsgpack returns the summary of a document encoded with msgpack
func (h *Handler) HandleMsgpack(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(h.describe(doc))
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleText writes the document back as FidoCadJ code
func (h *Handler) HandleText(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	ext, err := boolParam(c, "extensions", h.extensions)
	if err != nil {
		return err
	}
	doc.mu.Lock()
	text := doc.Parser.Text(ext)
	doc.mu.Unlock()
	return c.String(http.StatusOK, text)
}

// HandleSplit returns the document with its macros expanded
func (h *Handler) HandleSplit(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	standard, err := boolParam(c, "standard", false)
	if err != nil {
		return err
	}
	doc.mu.Lock()
	text, err := doc.Parser.SplitMacros(doc.Parser.Text(true), standard)
	doc.mu.Unlock()
	if err != nil {
		return NewInternalError("failed to split macros", err)
	}
	return c.String(http.StatusOK, text)
}

// HandleHit finds the primitive nearest to the point x,y
func (h *Handler) HandleHit(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	x, err := intParam(c, "x")
	if err != nil {
		return err
	}
	y, err := intParam(c, "y")
	if err != nil {
		return err
	}

	doc.mu.Lock()
	p, dist := doc.Parser.Drawing().Nearest(x, y)
	doc.mu.Unlock()
	if p == nil {
		return c.JSON(http.StatusOK, HitResponse{})
	}
	return c.JSON(http.StatusOK, HitResponse{
		Found:    true,
		Kind:     p.Kind().String(),
		Layer:    p.Layer(),
		Distance: dist,
		Text:     p.String(true),
	})
}

// HandleDelete drops a document
func (h *Handler) HandleDelete(c echo.Context) error {
	id := c.Param("id")
	if !h.store.Delete(id) {
		return NewNotFoundError("document", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleLibrary lists the macro keys, optionally those starting with the
// prefix query parameter
func (h *Handler) HandleLibrary(c echo.Context) error {
	prefix := strings.ToLower(c.QueryParam("prefix"))
	keys := []string{}
	for _, k := range h.store.Library().Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return c.JSON(http.StatusOK, LibraryResponse{Count: len(keys), Keys: keys})
}
