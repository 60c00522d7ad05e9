// Package test holds the behavior every [transport.Conn] is expected to have.
package test

import (
	"bytes"
	"io"
	"sync"
	"time"

	"lite-web-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// ConnTestSuite runs against C1 and C2, a connected pair set up by the
// embedding suite after calling SetupTest. Deadlines are taken from Clock.
type ConnTestSuite struct {
	suite.Suite
	C1, C2 transport.Conn
	Clock  clock.Clock

	watchdog *time.Timer
}

func (s *ConnTestSuite) SetupTest() {
	s.Clock = clock.New()
	s.watchdog = time.AfterFunc(time.Second, func() {
		s.Fail("test did not finish in time")
	})
}

func (s *ConnTestSuite) TearDownTest() {
	s.watchdog.Stop()
	s.NoError(s.C1.Close())
	s.NoError(s.C2.Close())
	goleak.VerifyNone(s.T())
}

// readN reads from conn until len(p) bytes arrived.
func (s *ConnTestSuite) readN(conn transport.Conn, p []byte) {
	_, err := io.ReadFull(conn, p)
	s.Require().NoError(err)
}

func (s *ConnTestSuite) TestReadWrite() {
	request := []byte("GET /hello HTTP/1.1\r\n\r\n")
	reply := []byte("HTTP/1.1 200 OK\r\n\r\n")

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := s.C1.Write(request)
		s.NoError(err)
		s.Equal(len(request), n)
	}()

	got := make([]byte, len(request))
	s.readN(s.C2, got)
	s.Equal(request, got)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.C2.Write(reply)
		s.NoError(err)
	}()

	got = make([]byte, len(reply))
	s.readN(s.C1, got)
	s.Equal(reply, got)
}

func (s *ConnTestSuite) TestShortRead() {
	data := []byte("0123456789")

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.C1.Write(data)
		s.NoError(err)
	}()

	// A small buffer takes the data over several reads.
	var got []byte
	buf := make([]byte, 4)
	for len(got) < len(data) {
		n, err := s.C2.Read(buf)
		s.Require().NoError(err)
		s.LessOrEqual(n, len(buf))
		got = append(got, buf[:n]...)
	}
	s.Equal(data, got)
}

func (s *ConnTestSuite) TestConcurrentWrites() {
	const writers = 10
	part := []byte("ABCD")

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.C1.Write(part)
			s.NoError(err)
			s.Equal(len(part), n)
		}()
	}

	got := make([]byte, writers*len(part))
	s.readN(s.C2, got)
	wg.Wait()

	s.Equal(bytes.Repeat(part, writers), got)
}

func (s *ConnTestSuite) TestClosedConn() {
	s.Require().NoError(s.C1.Close())
	// Closing twice is fine.
	s.Require().NoError(s.C1.Close())

	buf := make([]byte, 8)

	n, err := s.C1.Read(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)

	n, err = s.C1.Write(buf)
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)
}

func (s *ConnTestSuite) TestPeerClose() {
	s.Require().NoError(s.C1.Close())

	n, err := s.C2.Read(make([]byte, 8))
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)
}

func (s *ConnTestSuite) TestCloseWakesRead() {
	done := make(chan error, 1)
	go func() {
		_, err := s.C1.Read(make([]byte, 1))
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	s.Require().NoError(s.C1.Close())
	s.ErrorIs(<-done, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestReadDeadLine() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))

	b := make([]byte, 1)
	n, err := s.C1.Read(b)
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)

	// Clearing the deadline makes the conn usable again.
	s.C1.SetReadDeadLine(time.Time{})

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.C2.Write([]byte("x"))
		s.NoError(err)
	}()

	n, err = s.C1.Read(b)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *ConnTestSuite) TestWriteDeadLine() {
	s.C1.SetWriteDeadLine(s.Clock.Now().Add(-time.Second))

	n, err := s.C1.Write([]byte("x"))
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *ConnTestSuite) TestAddr() {
	s.Equal(s.C1.LocalAddr().String(), s.C2.RemoteAddr().String())
	s.Equal(s.C2.LocalAddr().String(), s.C1.RemoteAddr().String())
	s.Equal(s.C1.LocalAddr().Network(), s.C2.LocalAddr().Network())
}
