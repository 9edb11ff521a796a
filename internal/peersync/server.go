package peersync

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/reycn/agent-box/internal/model"
	"github.com/reycn/agent-box/internal/security"
)

// connIOTimeout bounds read/write on one inbound connection. It only has to
// cover a client that already connected, so it is much shorter than a tick.
const connIOTimeout = 500 * time.Millisecond

// Server answers pull requests without ever blocking the reconciliation
// loop: ServeOnce drains only connections that are already pending.
type Server struct {
	listener *net.TCPListener
	security *security.Layer
	// The plaintext passkey is kept outside the security layer solely to
	// answer discovery probes; the layer itself stores only the digest.
	passkey string
	peers   map[string]struct{}
}

// Bind opens the listening socket on ip:port. Port 0 binds an ephemeral port
// reachable through Addr, which tests use.
func Bind(ip string, port int, sharedKey string) (*Server, error) {
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("bind failed: %w", err)
	}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind failed: %w", err)
	}
	return &Server{
		listener: listener,
		security: security.NewLayer(sharedKey),
		passkey:  sharedKey,
		peers:    map[string]struct{}{},
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

func (s *Server) Close() error {
	return s.listener.Close()
}

// Peers returns the source hosts of every authenticated request seen so far,
// sorted. The reconciliation loop folds these into its pull targets.
func (s *Server) Peers() []string {
	hosts := make([]string, 0, len(s.peers))
	for host := range s.peers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// ServeOnce drains every connection that is pending right now and answers
// each authenticated pull with an envelope built from localRecords. It
// returns the number of envelopes served. Per-connection failures (empty
// request, malformed frame, bad key) drop that connection and continue the
// drain; only an accept-level failure aborts.
func (s *Server) ServeOnce(localRecords []model.SessionRecord, peerLabel string, nonce uint64, protocol TransportProtocol) (int, error) {
	served := 0
	for {
		// A short positive deadline makes Accept poll: pending connections
		// are returned immediately, an idle socket times out within 1ms.
		if err := s.listener.SetDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return served, fmt.Errorf("arm accept deadline: %w", err)
		}
		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// No connection immediately available; drain is complete.
				return served, nil
			}
			return served, fmt.Errorf("accept failed: %w", err)
		}
		if s.handleConn(conn, localRecords, peerLabel, nonce, protocol) {
			served++
		}
	}
}

// handleConn reports whether an envelope was served on the connection.
func (s *Server) handleConn(conn net.Conn, localRecords []model.SessionRecord, peerLabel string, nonce uint64, protocol TransportProtocol) bool {
	defer conn.Close() //nolint:errcheck
	if err := conn.SetDeadline(time.Now().Add(connIOTimeout)); err != nil {
		return false
	}
	data, err := io.ReadAll(conn)
	if err != nil || len(data) == 0 {
		return false
	}
	req, err := DecodeRequest(data)
	if err != nil {
		return false
	}
	if req.Discover {
		// Discovery answers with the pairing code instead of a snapshot.
		// The passkey is shown on screen anyway; it is not a secret.
		if reply, err := encodePasskeyReply(s.passkey); err == nil {
			conn.Write(reply) //nolint:errcheck
		}
		return false
	}
	if !s.security.VerifyKey(req.AuthKey) {
		return false
	}

	env := PrepareEnvelope(s.security, peerLabel, nonce, protocol, localRecords)
	encoded, err := EncodeEnvelope(env)
	if err != nil {
		return false
	}
	if _, err := conn.Write(encoded); err != nil {
		return false
	}
	if host, _, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		s.peers[host] = struct{}{}
	}
	return true
}
