package wire

// Options tunes the accept rules shared by Parser and Decode.
type Options struct {
	// VerifyChecksum rejects frames whose check bytes don't carry the
	// CRC of the payload.
	VerifyChecksum bool
	// RejectEmpty rejects frames announcing zero records.
	RejectEmpty bool
}

// State is the position of the parser within a frame.
type State int

const (
	// StateIdle is waiting for a start marker.
	StateIdle State = iota
	// StateSawStart is waiting for the version byte.
	StateSawStart
	// StateSawVersion is waiting for the record count.
	StateSawVersion
	// StateInData is receiving records.
	StateInData
	// StateInCheck1 is waiting for the low check byte.
	StateInCheck1
	// StateInCheck2 is waiting for the high check byte.
	StateInCheck2
	// StateExpectEnd is waiting for the end marker.
	StateExpectEnd
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateSawStart:   "saw-start",
	StateSawVersion: "saw-version",
	StateInData:     "in-data",
	StateInCheck1:   "in-check-1",
	StateInCheck2:   "in-check-2",
	StateExpectEnd:  "expect-end",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// IsReceiving indicates a frame is partially received.
func (s State) IsReceiving() bool {
	return s != StateIdle
}

// ParseResult indicates the result after one parsing step.
// At most one of Frame and Err is set.
type ParseResult struct {
	State State
	Frame *Frame
	Err   error
}

// Accepted indicates a complete frame was received.
func (r ParseResult) Accepted() bool {
	return r.Frame != nil
}

// Rejected indicates a frame was discarded.
func (r ParseResult) Rejected() bool {
	return r.Err != nil
}

// Parser parses bytes received. The zero value is ready to use.
//
// A Frame returned by Parser refers to storage owned by the parser and
// is only valid until the next call.
type Parser struct {
	Options

	state    State
	expected byte
	consumed byte
	recvLen  byte
	rec      [RecordSize]byte
	crc      uint16
	check    uint16
	records  [Capacity]Record
	frame    Frame
}

// NewParser creates a Parser with options.
func NewParser(opts Options) *Parser {
	return &Parser{Options: opts}
}

// State gets the current state.
func (p *Parser) State() State {
	return p.state
}

// Reset drops any partially received frame.
func (p *Parser) Reset() (pr ParseResult) {
	p.idle()
	pr.State = p.state
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Frame, pr.Err = p.parseByte(b)
	pr.State = p.state
	return
}

// Decode runs the parser over one complete buffer which must begin with
// a frame. Bytes after the frame are ignored. Any partially received
// frame is dropped first.
func (p *Parser) Decode(data []byte) (*Frame, error) {
	p.idle()
	if len(data) < MinFrameLen {
		return nil, &FrameError{Err: ErrTruncated, Offset: len(data)}
	}
	if data[0] != StartMarker {
		return nil, &FrameError{Err: ErrBadStart}
	}
	for i, b := range data {
		frame, err := p.parseByte(b)
		if err != nil {
			return nil, &FrameError{Err: err, Offset: i}
		}
		if frame != nil {
			return frame, nil
		}
	}
	p.idle()
	return nil, &FrameError{Err: ErrTruncated, Offset: len(data)}
}

// Decode decodes a complete buffer with a temporary Parser.
// The returned Frame is owned by the caller.
func Decode(data []byte, opts Options) (*Frame, error) {
	p := NewParser(opts)
	frame, err := p.Decode(data)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

func (p *Parser) parseByte(b byte) (*Frame, error) {
	switch p.state {
	case StateIdle:
		if b == StartMarker {
			p.crc, p.state = crcInit, StateSawStart
		}
	case StateSawStart:
		if b != Version {
			return p.reject(ErrBadVersion)
		}
		p.crc = updateCRC16(p.crc, b)
		p.state = StateSawVersion
	case StateSawVersion:
		p.crc = updateCRC16(p.crc, b)
		p.expected, p.consumed, p.recvLen = b, 0, 0
		switch {
		case b > Capacity:
			return p.reject(ErrInvalidCount)
		case b == 0 && p.RejectEmpty:
			return p.reject(ErrInvalidCount)
		case b == 0:
			p.state = StateInCheck1
		default:
			p.state = StateInData
		}
	case StateInData:
		p.crc = updateCRC16(p.crc, b)
		p.rec[p.recvLen] = b
		p.recvLen++
		if p.recvLen < RecordSize {
			break
		}
		p.records[p.consumed] = Record{ID: p.rec[0], Value: Float32(p.rec[1:])}
		p.consumed++
		p.recvLen = 0
		if p.consumed >= p.expected {
			p.state = StateInCheck1
		}
	case StateInCheck1:
		p.check = uint16(b)
		p.state = StateInCheck2
	case StateInCheck2:
		p.check |= uint16(b) << 8
		p.state = StateExpectEnd
	case StateExpectEnd:
		if b != EndMarker {
			return p.reject(ErrBadTerminator)
		}
		if p.VerifyChecksum && p.check != p.crc {
			return p.reject(ErrChecksum)
		}
		return p.frameReady(), nil
	}
	return nil, nil
}

func (p *Parser) idle() {
	p.state = StateIdle
	p.expected, p.consumed, p.recvLen = 0, 0, 0
}

func (p *Parser) reject(err error) (*Frame, error) {
	p.idle()
	return nil, err
}

func (p *Parser) frameReady() *Frame {
	p.frame = Frame{
		Records: p.records[:p.consumed],
		Check:   p.check,
		Sum:     p.crc,
	}
	p.idle()
	return &p.frame
}
