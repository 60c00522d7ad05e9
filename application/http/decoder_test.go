package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ParseTestSuite struct {
	suite.Suite
}

func TestParseTestSuite(t *testing.T) {
	suite.Run(t, new(ParseTestSuite))
}

func (s *ParseTestSuite) TestRequest() {
	buf := []byte("GET /hello HTTP/1.1\r\nHost: x\r\n\r\n")

	m, err := ParseRequest(buf, DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal("GET", string(m.Bytes(m.Method)))
	s.Equal("/hello", string(m.Bytes(m.URI)))
	s.Equal("HTTP/1.1", string(m.Bytes(m.Proto)))
	s.True(m.QueryString.IsEmpty())
	s.Equal(len(buf), m.HeaderLength)
	s.Equal(int64(0), m.BodyLength)
	s.Equal(int64(len(buf)), m.Length)
	s.True(m.Complete())
	s.Empty(m.Body())

	s.Require().Len(m.Headers, 1)
	s.Equal("Host", string(m.Bytes(m.Headers[0].Name)))
	s.Equal("x", string(m.Bytes(m.Headers[0].Value)))

	ver, err := m.Version()
	s.NoError(err)
	s.Equal(Version{Major: 1, Minor: 1}, ver)
}

func (s *ParseTestSuite) TestRequestViewsIncrease() {
	m, err := ParseRequest([]byte("  \r\nDELETE /a/b HTTP/1.0\r\n\r\n"), DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal("DELETE", string(m.Bytes(m.Method)))
	s.Less(m.Method.Offset, m.URI.Offset)
	s.Less(m.URI.Offset, m.Proto.Offset)
}

func (s *ParseTestSuite) TestQueryString() {
	m, err := ParseRequest([]byte("GET /search?q=abc HTTP/1.1\r\n\r\n"), DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal("/search", string(m.Bytes(m.URI)))
	s.Equal("q=abc", string(m.Bytes(m.QueryString)))

	q, err := m.Query()
	s.Require().NoError(err)
	v, ok := q.Get("q")
	s.True(ok)
	s.Equal("abc", v)
}

func (s *ParseTestSuite) TestEmptyQueryString() {
	m, err := ParseRequest([]byte("GET /search? HTTP/1.1\r\n\r\n"), DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal("/search", string(m.Bytes(m.URI)))
	s.True(m.QueryString.IsEmpty())
}

func (s *ParseTestSuite) TestContentLength() {
	buf := []byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")

	m, err := ParseRequest(buf, DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal(int64(5), m.BodyLength)
	s.Equal(int64(m.HeaderLength)+5, m.Length)
	s.Equal(int64(len(buf)), m.Length)
	s.Equal("hello", string(m.Body()))
	s.True(m.Complete())
	s.Equal(buf, m.Raw())
}

func (s *ParseTestSuite) TestContentLengthCaseInsensitive() {
	m, err := ParseRequest([]byte("PUT /x HTTP/1.1\r\ncontent-LENGTH: 3   \r\n\r\nab"), DefaultParseOptions)
	s.Require().NoError(err)

	s.Equal(int64(3), m.BodyLength)
	s.Equal("ab", string(m.Body()))
	s.False(m.Complete())
}

func (s *ParseTestSuite) TestBodyLengthPolicy() {
	testcases := []struct {
		desc     string
		kind     Kind
		input    string
		expected int64
	}{
		{
			desc:     "GET without Content-Length has no body",
			kind:     KindRequest,
			input:    "GET / HTTP/1.1\r\n\r\n",
			expected: 0,
		},
		{
			desc:     "DELETE without Content-Length has no body",
			kind:     KindRequest,
			input:    "DELETE / HTTP/1.1\r\n\r\n",
			expected: 0,
		},
		{
			desc:     "POST without Content-Length is unbounded",
			kind:     KindRequest,
			input:    "POST / HTTP/1.1\r\n\r\n",
			expected: Unbounded,
		},
		{
			desc:     "PUT without Content-Length is unbounded",
			kind:     KindRequest,
			input:    "PUT / HTTP/1.1\r\n\r\n",
			expected: Unbounded,
		},
		{
			desc:     "method prefix is not enough",
			kind:     KindRequest,
			input:    "POSTX / HTTP/1.1\r\n\r\n",
			expected: 0,
		},
		{
			desc:     "response without Content-Length is unbounded",
			kind:     KindResponse,
			input:    "HTTP/1.1 200 OK\r\n\r\n",
			expected: Unbounded,
		},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			m, err := Parse([]byte(tc.input), tc.kind, DefaultParseOptions)
			s.Require().NoError(err)
			s.Equal(tc.expected, m.BodyLength)
			if tc.expected == Unbounded {
				s.Equal(Unbounded, m.Length)
				s.False(m.Complete())
			}
		})
	}
}

func (s *ParseTestSuite) TestResponse() {
	buf := []byte("HTTP/1.1 404 NotFound\r\nContent-Length: 4\r\nConnection: close\r\n\r\nnope")

	m, err := ParseResponse(buf, DefaultParseOptions)
	s.Require().NoError(err)

	s.False(m.IsRequest())
	s.Equal("HTTP/1.1", string(m.Bytes(m.Proto)))
	s.Equal(404, m.StatusCode)
	s.Equal("NotFound", string(m.Bytes(m.StatusMessage)))
	s.Equal("nope", string(m.Body()))

	v, ok := m.Header("connection")
	s.True(ok)
	s.Equal("close", string(v))
}

func (s *ParseTestSuite) TestMalformed() {
	testcases := []struct {
		desc  string
		kind  Kind
		input string
	}{
		{
			desc:  "control character",
			kind:  KindRequest,
			input: "GET /\x01 HTTP/1.1\r\n\r\n",
		},
		{
			desc:  "request line without uri",
			kind:  KindRequest,
			input: "GET\r\n\r\n",
		},
		{
			desc:  "invalid Content-Length",
			kind:  KindRequest,
			input: "POST / HTTP/1.1\r\nContent-Length: five\r\n\r\n",
		},
		{
			desc:  "negative Content-Length",
			kind:  KindRequest,
			input: "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
		},
		{
			desc:  "status code too short",
			kind:  KindResponse,
			input: "HTTP/1.1 20 OK\r\n\r\n",
		},
		{
			desc:  "status code not numeric",
			kind:  KindResponse,
			input: "HTTP/1.1 2x0 OK\r\n\r\n",
		},
		{
			desc:  "status code below range",
			kind:  KindResponse,
			input: "HTTP/1.1 099 Odd\r\n\r\n",
		},
		{
			desc:  "status code above range",
			kind:  KindResponse,
			input: "HTTP/1.1 600 Odd\r\n\r\n",
		},
		{
			desc:  "status line truncated",
			kind:  KindResponse,
			input: "HTTP/1.1\r\n\r\n",
		},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			m, err := Parse([]byte(tc.input), tc.kind, DefaultParseOptions)
			s.ErrorIs(err, ErrMalformed)
			s.Nil(m)
		})
	}
}

func (s *ParseTestSuite) TestIncomplete() {
	m, err := ParseRequest([]byte("GET / HTTP/1.1\r\nHost: x\r\n"), DefaultParseOptions)
	s.ErrorIs(err, ErrIncomplete)
	s.Nil(m)
}

func (s *ParseTestSuite) TestHeaderLoopStopsAtEmptyValue() {
	m, err := ParseRequest([]byte("GET / HTTP/1.1\r\nA: 1\r\nB: \r\nC: 3\r\n\r\n"), DefaultParseOptions)
	s.Require().NoError(err)

	s.Require().Len(m.Headers, 1)
	_, ok := m.Header("C")
	s.False(ok)
}

func (s *ParseTestSuite) TestTooManyHeaders() {
	var b strings.Builder
	b.WriteString("GET / HTTP/1.1\r\n")
	for range 3 {
		b.WriteString("X-Field: v\r\n")
	}
	b.WriteString("\r\n")

	m, err := ParseRequest([]byte(b.String()), ParseOptions{MaxHeaders: 2})
	s.ErrorIs(err, ErrTooManyHeaders)
	s.Nil(m)

	m, err = ParseRequest([]byte(b.String()), ParseOptions{MaxHeaders: 3})
	s.Require().NoError(err)
	s.Len(m.Headers, 3)
}

func (s *ParseTestSuite) TestDefaultMaxHeaders() {
	var b strings.Builder
	b.WriteString("GET / HTTP/1.1\r\n")
	for range DefaultMaxHeaders + 1 {
		b.WriteString("X-Field: v\r\n")
	}
	b.WriteString("\r\n")

	_, err := ParseRequest([]byte(b.String()), ParseOptions{})
	s.ErrorIs(err, ErrTooManyHeaders)
}

func (s *ParseTestSuite) TestIdempotent() {
	input := "POST /a?b=c HTTP/1.1\r\nHost: x\r\nContent-Length: 2\r\n\r\nhi"

	buf := []byte(input)
	first, err := ParseRequest(buf, DefaultParseOptions)
	s.Require().NoError(err)
	second, err := ParseRequest(buf, DefaultParseOptions)
	s.Require().NoError(err)
	s.Equal(first, second)

	// Same bytes in another buffer yield the same views.
	third, err := ParseRequest([]byte(input), DefaultParseOptions)
	s.Require().NoError(err)
	s.Equal(first.Method, third.Method)
	s.Equal(first.URI, third.URI)
	s.Equal(first.QueryString, third.QueryString)
	s.Equal(first.Headers, third.Headers)
}
