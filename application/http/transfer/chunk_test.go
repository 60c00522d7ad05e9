package transfer

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ChunkedWriterTestSuite struct {
	suite.Suite

	buf *bytes.Buffer
	cw  *ChunkedWriter
}

func TestChunkedWriterTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkedWriterTestSuite))
}

func (s *ChunkedWriterTestSuite) SetupTest() {
	s.buf = bytes.NewBuffer(nil)
	s.cw = NewChunkedWriter(s.buf)
}

func (s *ChunkedWriterTestSuite) TestWrite() {
	// Empty write is ignored
	n, err := s.cw.Write(nil)
	s.Require().NoError(err)
	s.Require().Zero(n)
	s.Require().Empty(s.buf.Bytes())

	s.cw.SetExtensions([][2]string{{"foo", "bar"}})
	p := []byte("ABC")

	expected := []byte("" +
		"3;foo=bar\r\n" +
		"ABC\r\n",
	)

	n, err = s.cw.Write(p)
	s.Require().NoError(err)
	s.Equal(len(p), n)
	s.Equal(expected, s.buf.Bytes())
}

func (s *ChunkedWriterTestSuite) TestWriteHexSize() {
	p := []byte("123456789ABCDEF")

	n, err := s.cw.Write(p)
	s.Require().NoError(err)
	s.Equal(len(p), n)
	s.Equal([]byte("f\r\n123456789ABCDEF\r\n"), s.buf.Bytes())
}

func (s *ChunkedWriterTestSuite) TestExtensionsAreDroppedAfterChunk() {
	s.cw.SetExtensions([][2]string{{"foo", "bar"}})

	_, err := s.cw.Write([]byte("a"))
	s.Require().NoError(err)
	_, err = s.cw.Write([]byte("b"))
	s.Require().NoError(err)

	s.Equal([]byte("1;foo=bar\r\na\r\n1\r\nb\r\n"), s.buf.Bytes())
}

func (s *ChunkedWriterTestSuite) TestClose() {
	s.cw.SetExtensions([][2]string{{"foo", "bar"}})
	expected := []byte("" +
		"0;foo=bar\r\n" +
		"\r\n",
	)

	s.Require().NoError(s.cw.Close())
	s.Equal(expected, s.buf.Bytes())

	// Closing twice writes nothing.
	s.Require().NoError(s.cw.Close())
	s.Equal(expected, s.buf.Bytes())

	_, err := s.cw.Write([]byte("late"))
	s.ErrorIs(err, ErrWriterClosed)
}

func (s *ChunkedWriterTestSuite) TestWholeBody() {
	for _, chunk := range []string{"Hello, ", "World"} {
		_, err := s.cw.Write([]byte(chunk))
		s.Require().NoError(err)
	}
	s.Require().NoError(s.cw.Close())

	s.Equal("7\r\nHello, \r\n5\r\nWorld\r\n0\r\n\r\n", s.buf.String())
}

type failingWriter struct{ err error }

func (fw failingWriter) Write(p []byte) (int, error) { return 0, fw.err }

func (s *ChunkedWriterTestSuite) TestWriteError() {
	errBroken := errors.New("broken")
	cw := NewChunkedWriter(failingWriter{err: errBroken})

	_, err := cw.Write([]byte("abc"))
	s.ErrorIs(err, errBroken)

	s.ErrorIs(cw.Close(), errBroken)
}

func TestWriteLine(t *testing.T) {
	line := []byte("hello")

	buf := bytes.NewBuffer(nil)
	err := writeLine(buf, line)
	assert.NoError(t, err)

	assert.Equal(t, []byte("hello\r\n"), buf.Bytes())
}
