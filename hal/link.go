package hal

const (
	linkFrameQueue = 16
	linkEventQueue = 4
	linkMaxFrame   = 64
)

// linkPipe carries inbound frames and connection events from a transport
// callback goroutine to the link service. Delivery never blocks the transport.
type linkPipe struct {
	frames chan []byte
	events chan LinkEvent
}

func newLinkPipe() *linkPipe {
	return &linkPipe{
		frames: make(chan []byte, linkFrameQueue),
		events: make(chan LinkEvent, linkEventQueue),
	}
}

func (p *linkPipe) Frames() <-chan []byte    { return p.frames }
func (p *linkPipe) Events() <-chan LinkEvent { return p.events }

// deliver copies b onto the frame queue. It reports false when the frame was
// empty or the queue was full.
func (p *linkPipe) deliver(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if len(b) > linkMaxFrame {
		b = b[:linkMaxFrame]
	}
	frame := append([]byte(nil), b...)
	select {
	case p.frames <- frame:
		return true
	default:
		return false
	}
}

// event queues ev, discarding the oldest pending event when full.
func (p *linkPipe) event(ev LinkEvent) {
	for {
		select {
		case p.events <- ev:
			return
		default:
		}
		select {
		case <-p.events:
		default:
		}
	}
}

type nullLink struct{}

func (nullLink) Frames() <-chan []byte     { return nil }
func (nullLink) Events() <-chan LinkEvent  { return nil }
func (nullLink) Notify(frame []byte) error { return ErrNotConnected }
