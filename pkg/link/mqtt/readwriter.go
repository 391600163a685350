package mqtt

import (
	"context"
	"io"
	"sync"
)

// Topic suffixes under a monitor id.
const (
	TopicMeta     = "meta"
	TopicSnapshot = "snapshot"
	TopicFrames   = "frames"
)

// TopicOf builds the topic of a monitor.
func TopicOf(id, suffix string) string {
	return id + "/" + suffix
}

// ReadWriter implements link.PacketReadWriter. Packets published on
// SubTopic are read, written packets go to PubTopic.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		closeCh:  make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForMonitor reads the frames sent to a monitor.
func (p *ReadWriter) ForMonitor(id string) *ReadWriter {
	return p.WithTopics(TopicOf(id, TopicFrames), "")
}

// ForHost writes frames to a monitor.
func (p *ReadWriter) ForHost(id string) *ReadWriter {
	return p.WithTopics("", TopicOf(id, TopicFrames))
}

// ReadPacket implements link.PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.closeCh:
		return nil, io.EOF
	}
}

// WritePacket implements link.PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer. Pending and later reads return io.EOF.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() { close(p.closeCh) })
	return nil
}

// Run implements framework.Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	defer p.Close()
	if p.SubTopic == "" {
		<-ctx.Done()
		return ctx.Err()
	}
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeCh:
		return nil
	}
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.closeCh:
	}
}
