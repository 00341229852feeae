// Package fifod exposes the three display command channels as named pipes,
// taking the place of the character-device nodes of the original driver.
//
// It creates displaylcd, displaylcd_cls and displaylcd_pos in a configurable
// directory and routes every write into the channel dispatcher. All channels
// share one display, so dispatches are serialized under a mutex: at most one
// transfer is ever in flight.
package fifod

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/flavioheleno/hd44780/channel"
)

// nodes maps FIFO names to channel identities, mirroring the original's
// minor numbers 0..2.
var nodes = []struct {
	name string
	id   channel.ID
}{
	{"displaylcd", channel.Plain},
	{"displaylcd_cls", channel.Clear},
	{"displaylcd_pos", channel.Position},
}

// Server owns the FIFO nodes and the single-writer discipline around the
// dispatcher.
type Server struct {
	disp *channel.Dispatcher
	dir  string
	log  zerolog.Logger

	// mu serializes all dispatches across the three channels.
	mu sync.Mutex
}

// NewServer returns a server that will create its FIFO nodes under dir.
func NewServer(disp *channel.Dispatcher, dir string, log zerolog.Logger) *Server {
	return &Server{disp: disp, dir: dir, log: log}
}

// Run creates the three FIFO nodes and serves them until ctx is cancelled.
// If any node cannot be created, the ones already created are removed and
// Run returns without serving anything. The nodes are removed on shutdown.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("fifod: create dir: %w", err)
	}

	var created []string
	for _, n := range nodes {
		path := filepath.Join(s.dir, n.name)
		if err := unix.Mkfifo(path, 0o666); err != nil {
			for _, p := range created {
				_ = os.Remove(p)
			}
			return fmt.Errorf("fifod: create %s: %w", path, err)
		}
		created = append(created, path)
	}
	defer func() {
		for _, p := range created {
			_ = os.Remove(p)
		}
	}()

	// Opening read/write keeps the pipe from hitting EOF whenever the last
	// writer closes it.
	files := make([]*os.File, len(nodes))
	for i, n := range nodes {
		f, err := os.OpenFile(filepath.Join(s.dir, n.name), os.O_RDWR, 0)
		if err != nil {
			for _, open := range files[:i] {
				_ = open.Close()
			}
			return fmt.Errorf("fifod: open %s: %w", n.name, err)
		}
		files[i] = f
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, n := range nodes {
		i, n := i, n
		g.Go(func() error {
			return s.serve(ctx, files[i], n.id)
		})
	}
	g.Go(func() error {
		// Closing the files is what unblocks the readers.
		<-ctx.Done()
		for _, f := range files {
			_ = f.Close()
		}
		return nil
	})

	s.log.Info().Str("dir", s.dir).Msg("serving display channels")
	return g.Wait()
}

// serve reads one payload per pipe read and dispatches it. It returns when
// the file is closed by the shutdown goroutine.
//
// Pipe writes up to PIPE_BUF bytes are atomic, so with a buffer at least
// that large every such write arrives in a single read. A smaller buffer
// would split an oversized write and let its tail sneak past rejection as a
// fresh payload.
func (s *Server) serve(ctx context.Context, f *os.File, id channel.ID) error {
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, fs.ErrClosed) {
				return nil
			}
			return fmt.Errorf("fifod: read %s: %w", f.Name(), err)
		}
		if n == 0 {
			continue
		}
		s.handle(id, buf[:n])
	}
}

// handle runs one dispatch under the single-writer lock. The bytes were
// already consumed by the read, so every outcome, including rejection, is
// reported to the writer as fully written.
func (s *Server) handle(id channel.ID, p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.disp.Dispatch(id, p)
	if err != nil {
		s.log.Error().Err(err).Stringer("channel", id).Msg("display transfer failed")
		return
	}
	switch status {
	case channel.Rejected:
		s.log.Warn().Stringer("channel", id).Int("len", len(p)).
			Msg("message too long (ignored)")
	case channel.Ignored:
		s.log.Debug().Stringer("channel", id).Int("len", len(p)).
			Msg("payload ignored")
	case channel.Accepted:
		s.log.Debug().Stringer("channel", id).Int("len", len(p)).
			Msg("payload accepted")
	}
}
