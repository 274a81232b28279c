// Command ovcore-demo wires the thread-loop, the codec factory, and the
// JSON value model together into a small UDP echo/transcode server: it
// listens for RTP packets, decodes and re-encodes each one through a
// media.Session, and writes the result back to the sender.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flowpbx/ovcore/internal/codecfactory"
	"github.com/flowpbx/ovcore/internal/config"
	"github.com/flowpbx/ovcore/internal/eventloop"
	"github.com/flowpbx/ovcore/internal/jsonio"
	"github.com/flowpbx/ovcore/internal/media"
	"github.com/flowpbx/ovcore/internal/rtpframe"
	"github.com/flowpbx/ovcore/internal/threadloop"
	"github.com/flowpbx/ovcore/internal/value"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(cfg.SlogHandler(os.Stdout))
	slog.SetDefault(logger)

	logger.Info("starting ovcore-demo",
		"num_worker_threads", cfg.NumWorkerThreads,
		"codec_plugin_dir", cfg.CodecPluginDir,
	)

	factory := codecfactory.Standard()
	if cfg.CodecPluginDir != "" {
		if n, err := factory.InstallFromSODir(cfg.CodecPluginDir); err != nil {
			logger.Warn("failed to load codec plugins", "dir", cfg.CodecPluginDir, "error", err)
		} else if n > 0 {
			logger.Info("loaded codec plugins", "dir", cfg.CodecPluginDir, "count", n)
		}
	}

	loop, err := eventloop.New()
	if err != nil {
		logger.Error("failed to create event loop", "error", err)
		os.Exit(1)
	}
	defer loop.Close()

	go loop.Run()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		logger.Error("failed to open UDP socket", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("listening for RTP packets", "addr", conn.LocalAddr().String())

	decodeParams := mustDecodeDescriptor(`{"codec":"G.711","law":"ulaw"}`)
	encodeParams := mustDecodeDescriptor(`{"codec":"PCM16","endianness":"big_endian"}`)

	sessions := newSessionTable(loop, cfg.ThreadLoopConfig(), factory, decodeParams, encodeParams, conn, logger)
	defer sessions.closeAll()

	errCh := make(chan error, 1)
	go serveUDP(conn, sessions, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		logger.Error("UDP server error", "error", err)
	}

	logger.Info("shutting down")
	loop.Stop()
}

func mustDecodeDescriptor(src string) *value.Value {
	v, _, err := jsonio.Decode([]byte(src), nil)
	if err != nil {
		panic(fmt.Sprintf("ovcore-demo: invalid built-in codec descriptor %q: %v", src, err))
	}
	return v
}

func serveUDP(conn *net.UDPConn, sessions *sessionTable, errCh chan<- error) {
	buf := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			errCh <- err
			return
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])

		sess := sessions.forAddr(addr)
		if sess == nil || !sess.Ingest(raw) {
			sessions.logger.Debug("dropped malformed or unprocessable RTP packet", "from", addr.String())
		}
	}
}

// sessionTable keeps one media.Session per remote address, so repeated
// packets from the same source reuse the same decode/encode pipeline and
// RTP sequence/timestamp counters.
type sessionTable struct {
	loop         *eventloop.Loop
	tlCfg        threadloop.Config
	factory      *codecfactory.Factory
	decodeParams *value.Value
	encodeParams *value.Value
	conn         *net.UDPConn
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*media.Session
	nextSSID uint32
}

func newSessionTable(loop *eventloop.Loop, tlCfg threadloop.Config, factory *codecfactory.Factory, decodeParams, encodeParams *value.Value, conn *net.UDPConn, logger *slog.Logger) *sessionTable {
	return &sessionTable{
		loop:         loop,
		tlCfg:        tlCfg,
		factory:      factory,
		decodeParams: decodeParams,
		encodeParams: encodeParams,
		conn:         conn,
		logger:       logger,
		sessions:     make(map[string]*media.Session),
	}
}

func (t *sessionTable) forAddr(addr *net.UDPAddr) *media.Session {
	key := addr.String()

	t.mu.Lock()
	defer t.mu.Unlock()

	if sess, ok := t.sessions[key]; ok {
		return sess
	}

	t.nextSSID++
	ssid := t.nextSSID
	dest := addr
	sess, err := media.NewSession(t.loop, t.tlCfg, t.factory, ssid, t.decodeParams, t.encodeParams, func(frame *rtpframe.Frame) {
		if _, err := t.conn.WriteToUDP(frame.Raw, dest); err != nil {
			t.logger.Warn("failed to write outgoing RTP packet", "to", dest.String(), "error", err)
		}
	}, t.logger)
	if err != nil {
		t.logger.Error("failed to create media session", "from", key, "error", err)
		return nil
	}

	t.logger.Info("new media session", "from", key, "session_id", sess.ID, "ssid", ssid)
	t.sessions[key] = sess
	return sess
}

func (t *sessionTable) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, sess := range t.sessions {
		if err := sess.Close(); err != nil {
			t.logger.Warn("failed to close media session", "from", addr, "error", err)
		}
	}
}
