package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/hwmon.go/pkg/framework"
	"github.com/robotalks/hwmon.go/pkg/monitor"
	"github.com/robotalks/hwmon.go/pkg/msgs"
)

// Sink is where a Publisher sends messages. Queue implements it.
type Sink interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher sends a snapshot for each accepted frame. Frames arriving
// faster than the loop runs are coalesced into the latest snapshot.
type Publisher struct {
	ID   string
	Sink Sink
	QoS  byte
	// Interval republishes the latest snapshot when no frame arrives,
	// so subscribers see the age grow. Zero disables it.
	Interval time.Duration
	// Source provides snapshots for Interval publishing.
	Source func() *monitor.Snapshot

	lock      sync.Mutex
	pending   *monitor.Snapshot
	published time.Time
	trigger   framework.LoopControl
}

// NewPublisher creates a Publisher.
func NewPublisher(id string, sink Sink) *Publisher {
	return &Publisher{ID: id, Sink: sink}
}

// HandleFrame implements monitor.Handler.
func (p *Publisher) HandleFrame(s *monitor.Snapshot) {
	p.lock.Lock()
	p.pending = s
	trigger := p.trigger
	p.lock.Unlock()
	if trigger != nil {
		trigger.TriggerNext()
	}
}

// Control implements framework.Controller.
func (p *Publisher) Control(ctx framework.ControlContext) error {
	return p.Flush(ctx.Time())
}

// Flush publishes the pending snapshot, or the Source snapshot when
// Interval has elapsed since the last publish.
func (p *Publisher) Flush(now time.Time) error {
	p.lock.Lock()
	s := p.pending
	p.pending = nil
	due := p.Interval > 0 && p.Source != nil && now.Sub(p.published) >= p.Interval
	p.lock.Unlock()
	if s == nil {
		if !due {
			return nil
		}
		s = p.Source()
	}
	data, err := msgs.Encode(msgs.NewSnapshot(p.ID, s, now))
	if err != nil {
		return err
	}
	p.lock.Lock()
	p.published = now
	p.lock.Unlock()
	token := p.Sink.PubWith(TopicOf(p.ID, TopicSnapshot), data, p.QoS, false)
	go func() {
		if token.Wait() && token.Error() != nil {
			glog.Errorf("publish snapshot: %v", token.Error())
		}
	}()
	return nil
}

// PublishMeta publishes the retained meta document.
func (p *Publisher) PublishMeta() paho.Token {
	meta, err := json.Marshal(msgs.NewMeta(p.ID))
	if err != nil {
		panic(err)
	}
	return p.Sink.PubWith(TopicOf(p.ID, TopicMeta), meta, 1, true)
}

// ClearMeta removes the retained meta document.
func (p *Publisher) ClearMeta() paho.Token {
	return p.Sink.PubWith(TopicOf(p.ID, TopicMeta), nil, 1, true)
}

// AddToLoop implements framework.LoopAdder.
func (p *Publisher) AddToLoop(l *framework.Loop) {
	p.lock.Lock()
	p.trigger = l
	p.lock.Unlock()
	l.AddController(framework.PrLvPublish, p)
}

// Registrar connects a Queue, announces the monitor and publishes its
// snapshots until the context is done.
type Registrar struct {
	Queue     *Queue
	Publisher *Publisher
}

// NewRegistrar creates a Registrar from a broker URL. The will clears
// the retained meta document when the connection is lost.
func NewRegistrar(brokerURL, id string) (*Registrar, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	qos, err := QoSFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+TopicOf(id, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("hwmon:" + id)
	}
	q := NewQueue(opts, topicPrefix)
	q.QoS = qos
	r := &Registrar{Queue: q, Publisher: NewPublisher(id, q)}
	r.Publisher.QoS = qos
	q.OnConnect = func(*Queue) { r.Publisher.PublishMeta() }
	return r, nil
}

// HandleFrame implements monitor.Handler.
func (r *Registrar) HandleFrame(s *monitor.Snapshot) {
	r.Publisher.HandleFrame(s)
}

// AddToLoop implements framework.LoopAdder.
func (r *Registrar) AddToLoop(l *framework.Loop) {
	l.Add(r.Publisher)
	l.AddRunnable(r)
}

// Run implements framework.Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Publisher.ClearMeta().WaitTimeout(time.Second)
	r.Queue.Close()
	return nil
}
