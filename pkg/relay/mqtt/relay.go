package mqtt

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/msgs"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Topics relative to the queue prefix.
const (
	// TopicImages is the parent of the per kind image topics.
	TopicImages = "images/"
	// TopicOutbound receives frames to be sent to the device.
	TopicOutbound = "outbound"
)

// ImageTopic gets the topic images of kind are published to.
func ImageTopic(kind string) string {
	return TopicImages + kind
}

// Relay publishes transferred images and collects outbound ones.
type Relay struct {
	Queue *Queue

	lock    sync.Mutex
	latest  *msgs.ImageFrame
	updated chan struct{}
}

// NewRelay creates a Relay over q.
func NewRelay(q *Queue) *Relay {
	return &Relay{Queue: q, updated: make(chan struct{})}
}

// Publish publishes the image described by h and payload under kind.
// Publishing is asynchronous; failures are logged.
func (r *Relay) Publish(kind string, h transfer.Header, payload []byte) {
	data, err := msgs.NewImageFrame(kind, h, payload).Encode()
	if err != nil {
		glog.Errorf("encode %v: %v", h, err)
		return
	}
	token := r.Queue.Pub(ImageTopic(kind), data)
	go func() {
		if token.Wait(); token.Error() != nil {
			glog.Warningf("publish %v: %v", h, token.Error())
		}
	}()
}

// Subscribe starts collecting outbound frames.
func (r *Relay) Subscribe() *Subscription {
	return r.Queue.Sub(TopicOutbound, r.handleOutbound)
}

// Latest gets the most recent outbound frame, nil if none arrived yet.
func (r *Relay) Latest() *msgs.ImageFrame {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.latest
}

// Next waits for an outbound frame newer than the current one.
func (r *Relay) Next(ctx context.Context) (*msgs.ImageFrame, error) {
	r.lock.Lock()
	updated := r.updated
	r.lock.Unlock()
	select {
	case <-updated:
		return r.Latest(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Relay) handleOutbound(topic string, payload []byte) {
	frame, err := msgs.DecodeImageFrame(payload)
	if err != nil {
		glog.Warningf("%s: bad frame: %v", topic, err)
		return
	}
	if _, err := frame.Descriptor(); err != nil {
		glog.Warningf("%s: %v", topic, err)
		return
	}
	r.lock.Lock()
	r.latest = frame
	close(r.updated)
	r.updated = make(chan struct{})
	r.lock.Unlock()
}
