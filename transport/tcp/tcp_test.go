package tcp

import (
	"context"
	"testing"
	"time"

	"lite-web-server/transport"
	"lite-web-server/transport/test"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type TCPTestSuite struct {
	suite.Suite

	lis    *Listener
	dialer *Dialer
}

func TestTCPTestSuite(t *testing.T) {
	suite.Run(t, new(TCPTestSuite))
}

func (s *TCPTestSuite) SetupTest() {
	lis, err := ListenAddr("127.0.0.1:0")
	s.Require().NoError(err)

	s.lis = lis
	s.dialer = &Dialer{}
}

func (s *TCPTestSuite) TearDownTest() {
	_ = s.lis.Close()
	goleak.VerifyNone(s.T())
}

// connect returns the client and the server side of a new connection.
func (s *TCPTestSuite) connect() (client, server transport.Conn) {
	accepted := make(chan transport.Conn, 1)
	go func() {
		conn, err := s.lis.Accept(context.Background())
		s.NoError(err)
		accepted <- conn
	}()

	client, err := s.dialer.Dial(context.Background(), s.lis.Addr())
	s.Require().NoError(err)

	server = <-accepted
	s.Require().NotNil(server)

	return client, server
}

func (s *TCPTestSuite) TestAcceptCancels() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	conn, err := s.lis.Accept(ctx)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Nil(conn)

	// The listener is still usable afterwards.
	client, server := s.connect()
	client.Close()
	server.Close()
}

func (s *TCPTestSuite) TestAcceptAfterClose() {
	s.Require().NoError(s.lis.Close())

	_, err := s.lis.Accept(context.Background())
	s.ErrorIs(err, transport.ErrConnListenerClosed)

	s.ErrorIs(s.lis.Close(), transport.ErrConnListenerClosed)
}

func (s *TCPTestSuite) TestListenAddrInUse() {
	_, err := ListenAddr(s.lis.Addr().String())
	s.ErrorIs(err, transport.ErrAddrAlreadyInUse)
}

func (s *TCPTestSuite) TestDialRefused() {
	addr := s.lis.Addr()
	s.Require().NoError(s.lis.Close())

	_, err := s.dialer.Dial(context.Background(), addr)
	s.ErrorIs(err, transport.ErrConnRefused)
}

type TCPConnTestSuite struct {
	test.ConnTestSuite

	lis *Listener
}

func TestTCPConnTestSuite(t *testing.T) {
	suite.Run(t, new(TCPConnTestSuite))
}

func (s *TCPConnTestSuite) SetupTest() {
	s.ConnTestSuite.SetupTest()

	lis, err := ListenAddr("127.0.0.1:0")
	s.Require().NoError(err)
	s.lis = lis

	accepted := make(chan transport.Conn, 1)
	go func() {
		conn, err := lis.Accept(context.Background())
		s.NoError(err)
		accepted <- conn
	}()

	s.C1, err = (&Dialer{}).Dial(context.Background(), lis.Addr())
	s.Require().NoError(err)
	s.C2 = <-accepted
	s.Require().NotNil(s.C2)
}

func (s *TCPConnTestSuite) TearDownTest() {
	s.NoError(s.lis.Close())
	s.ConnTestSuite.TearDownTest()
}

func (s *TCPConnTestSuite) TestNetwork() {
	s.Equal("tcp", s.C1.LocalAddr().Network())
}
