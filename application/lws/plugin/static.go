package plugin

import (
	"io"
	"io/fs"

	"lite-web-server/application/http"
	"lite-web-server/application/http/actor/server"
	"lite-web-server/application/http/status"
	"lite-web-server/application/util/uri"

	"github.com/pkg/errors"
)

const (
	// Files larger than this are streamed in chunks.
	DefaultChunkThreshold = 64 << 10
	DefaultChunkSize      = 16 << 10
)

var ErrInvalidFileName = errors.New("request path has no file name")

// StaticHandler serves the file named by the last segment of the request path.
type StaticHandler struct {
	fsys        fs.FS
	contentType string

	ChunkThreshold int64
	ChunkSize      int
}

var _ server.Handler = (*StaticHandler)(nil)

func Static(fsys fs.FS, contentType string) *StaticHandler {
	return &StaticHandler{
		fsys:           fsys,
		contentType:    contentType,
		ChunkThreshold: DefaultChunkThreshold,
		ChunkSize:      DefaultChunkSize,
	}
}

func (h *StaticHandler) Handle(c *server.HandleContext, ev server.Event, request *http.Message) error {
	if ev != server.EventHTTPRequest {
		return c.RespondHeader(status.BadRequest.Code)
	}

	name, ok := uri.LastSegment(string(request.Bytes(request.URI)))
	if !ok || !fs.ValidPath(name) {
		// Replied 500 by the dispatcher.
		return errors.Wrapf(ErrInvalidFileName, "%q", request.Bytes(request.URI))
	}

	f, err := h.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.RespondHeader(status.NotFound.Code)
		}
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "stat %s", name)
	}
	if info.IsDir() {
		return c.RespondHeader(status.NotFound.Code)
	}

	c.Logger().Debug("serving file", "name", name, "size", info.Size())

	if info.Size() > h.ChunkThreshold {
		return h.stream(c, f)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}

	return c.Respond(status.OK.Code, h.contentType, data)
}

func (h *StaticHandler) stream(c *server.HandleContext, f fs.File) error {
	w, err := c.RespondChunked(status.OK.Code, h.contentType)
	if err != nil {
		return err
	}

	buf := make([]byte, h.ChunkSize)
	if _, err := io.CopyBuffer(w, onlyReader{f}, buf); err != nil {
		// The header is out; the peer can only be told by closing.
		c.Close()
		return errors.Wrap(err, "streaming file")
	}

	if err := w.Close(); err != nil {
		c.Close()
		return errors.Wrap(err, "ending chunked body")
	}

	return nil
}

// onlyReader hides WriterTo so that CopyBuffer uses the given buffer.
type onlyReader struct{ io.Reader }
