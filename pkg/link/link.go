// Package link moves telemetry frames over message oriented transports.
//
// A packet carries exactly one frame, so packets are decoded with the
// batch decoder. Byte streams (serial ports, pipes) go through
// monitor.Pump instead.
package link

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/wire"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// BufferFeeder accepts one complete frame per call.
type BufferFeeder interface {
	FeedBuffer([]byte) bool
}

var _ BufferFeeder = (*monitor.Monitor)(nil)

// FramePump feeds every packet read into a Monitor as one frame.
type FramePump struct {
	Reader  PacketReader
	Monitor BufferFeeder
}

// NewFramePump creates a FramePump.
func NewFramePump(r PacketReader, m BufferFeeder) *FramePump {
	return &FramePump{Reader: r, Monitor: m}
}

// Run implements framework.Runnable. The Reader is closed when Run
// returns, if it is an io.Closer.
func (p *FramePump) Run(ctx context.Context) error {
	return framework.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.Reader.ReadPacket()
			if err != nil {
				return err
			}
			if !p.Monitor.FeedBuffer(pkt) {
				glog.V(2).Infof("packet of %d bytes dropped", len(pkt))
			}
		}
	})
}

// Close implements io.Closer.
func (p *FramePump) Close() error {
	if closer, ok := p.Reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (p *FramePump) AddToLoop(loop *framework.Loop) {
	if adder, ok := p.Reader.(framework.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.Reader.(framework.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}

// FrameSender encodes frames and writes one per packet.
type FrameSender struct {
	Writer PacketWriter

	lock sync.Mutex
}

// NewFrameSender creates a FrameSender.
func NewFrameSender(w PacketWriter) *FrameSender {
	return &FrameSender{Writer: w}
}

// Send encodes and writes a frame.
func (s *FrameSender) Send(records []wire.Record) error {
	pkt, err := (&wire.Frame{Records: records}).Bytes()
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.Writer.WritePacket(pkt)
}
