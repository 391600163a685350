package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/msgs"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds monitors on a broker and watches their snapshots.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}, nil
}

// metaID extracts the monitor id from a meta topic.
func metaID(topic string) (string, bool) {
	items := strings.Split(topic, "/")
	if len(items) != 2 || items[1] != TopicMeta || items[0] == "" {
		return "", false
	}
	return items[0], true
}

// Discover collects the retained meta documents of online monitors.
func (c *Connector) Discover(ctx context.Context) (res []msgs.Meta, err error) {
	q := NewQueue(c.options, c.topicPrefix)
	token := q.Connect()
	token.Wait()
	if err = token.Error(); err != nil {
		return nil, err
	}
	defer q.Close()

	resCh := make(chan msgs.Meta, 1)
	q.Sub(TopicOf("+", TopicMeta), Handler(func(topic string, payload []byte) {
		id, ok := metaID(topic)
		if !ok || len(payload) == 0 {
			return
		}
		var meta msgs.Meta
		if err := json.Unmarshal(payload, &meta); err != nil {
			glog.Warningf("invalid meta of %s: %v", id, err)
			return
		}
		if meta.ID == "" {
			meta.ID = id
		}
		select {
		case resCh <- meta:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case meta := <-resCh:
			res = append(res, meta)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Watch calls fn with every snapshot published by monitor id, or by all
// monitors when id is "+", until ctx is done.
func (c *Connector) Watch(ctx context.Context, id string, fn func(*msgs.Snapshot)) error {
	q := NewQueue(c.options, c.topicPrefix)
	q.Sub(TopicOf(id, TopicSnapshot), Handler(func(topic string, payload []byte) {
		msg, err := msgs.Decode(payload)
		if err != nil {
			glog.Warningf("invalid snapshot on %s: %v", topic, err)
			return
		}
		if s, ok := msg.(*msgs.Snapshot); ok {
			fn(s)
		}
	}))
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer q.Close()
	<-ctx.Done()
	return ctx.Err()
}
