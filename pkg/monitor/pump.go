package monitor

import (
	"context"
	"io"
	"os"

	"github.com/golang/glog"
)

// Mode selects how a Pump hands data to the Monitor.
type Mode int

const (
	// ModeStream treats the input as a continuous byte stream.
	ModeStream Mode = iota
	// ModeBatch treats every chunk read as one complete frame.
	ModeBatch
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeBatch {
		return "batch"
	}
	return "stream"
}

// ParseMode converts a name into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "stream":
		return ModeStream, true
	case "batch":
		return ModeBatch, true
	}
	return ModeStream, false
}

// DefaultChunkSize is the read buffer size of a Pump.
const DefaultChunkSize = 512

// Pump reads from a Reader and feeds a Monitor.
type Pump struct {
	Reader    io.Reader
	Monitor   *Monitor
	Mode      Mode
	ChunkSize int
	// ReadTimeout is set to true if Reader returns timeout errors or
	// zero bytes when idle, so Run can poll the context directly.
	ReadTimeout bool
}

// NewPump creates a Pump in streaming mode.
func NewPump(r io.Reader, m *Monitor) *Pump {
	return &Pump{Reader: r, Monitor: m, ChunkSize: DefaultChunkSize}
}

// Run implements framework.Runnable.
func (p *Pump) Run(ctx context.Context) error {
	size := p.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	if p.ReadTimeout {
		buf := make([]byte, size)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				n, err := p.Reader.Read(buf)
				if n > 0 {
					p.feed(buf[:n])
				}
				if err != nil && !os.IsTimeout(err) {
					return err
				}
			}
		}
	}

	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.readLoop(subCtx, size, chunkCh, errCh)
	for {
		select {
		case chunk := <-chunkCh:
			p.feed(chunk)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pump) feed(chunk []byte) {
	switch p.Mode {
	case ModeBatch:
		p.Monitor.FeedBuffer(chunk)
	default:
		if n := p.Monitor.Feed(chunk); n > 0 {
			glog.V(3).Infof("pump: %d frames from %d bytes", n, len(chunk))
		}
	}
}

func (p *Pump) readLoop(ctx context.Context, size int, chunkCh chan []byte, errCh chan error) {
	for {
		buf := make([]byte, size)
		n, err := p.Reader.Read(buf)
		if n > 0 {
			select {
			case chunkCh <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}
