package transfer

import (
	"bytes"
	"io"
	"strconv"

	"lite-web-server/application/util/rule"

	"github.com/pkg/errors"
)

var ErrWriterClosed = errors.New("chunked writer is closed")

// ChunkedWriter streams a body in chunked transfer coding.
// Each Write becomes one chunk; Close writes the last chunk
// followed by an empty trailer section.
type ChunkedWriter struct {
	w          io.Writer
	extensions [][2]string
	headerBuf  *bytes.Buffer
	closed     bool
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{
		w:         w,
		headerBuf: bytes.NewBuffer(make([]byte, 0, 32)),
	}
}

// SetExtensions sets chunk extensions for the next chunk.
// They are dropped after it is written.
func (cw *ChunkedWriter) SetExtensions(extensions [][2]string) {
	cw.extensions = extensions
}

func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if cw.closed {
		return 0, ErrWriterClosed
	}
	if len(p) == 0 {
		// A zero sized chunk would end the body.
		return 0, nil
	}

	n, err = cw.writeChunk(p)
	if err != nil {
		return n, errors.Wrap(err, "writing chunk")
	}

	return n, nil
}

// Close ends the body. It does not close the underlying writer.
func (cw *ChunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	if _, err := cw.writeChunk(nil); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}

	// No trailers.
	if err := writeLine(cw.w, nil); err != nil {
		return errors.Wrap(err, "writing end of body")
	}

	return nil
}

func (cw *ChunkedWriter) writeChunk(data []byte) (n int, err error) {
	buf := cw.headerBuf
	buf.Reset()
	buf.WriteString(strconv.FormatUint(uint64(len(data)), 16))
	for _, ext := range cw.extensions {
		buf.WriteByte(';')
		buf.WriteString(ext[0])
		buf.WriteByte('=')
		buf.WriteString(ext[1])
	}
	cw.extensions = nil

	if err := writeLine(cw.w, buf.Bytes()); err != nil {
		return 0, errors.Wrap(err, "writing chunk header")
	}

	if len(data) == 0 {
		// Last chunk. Only the size line.
		return 0, nil
	}

	n, err = cw.w.Write(data)
	if err != nil {
		return n, errors.Wrap(err, "writing data")
	}
	if n < len(data) {
		return n, io.ErrShortWrite
	}

	if _, err := cw.w.Write(rule.CRLF); err != nil {
		return n, errors.Wrap(err, "writing data delimiter")
	}

	return n, nil
}

func writeLine(w io.Writer, line []byte) error {
	if _, err := w.Write(append(line, rule.CRLF...)); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
