package stream

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eyetrace/preview/internal/log"
)

// frameEnvelope is the wire format of one published frame: a JSON
// header with the raw bytes carried base64-encoded.
type frameEnvelope struct {
	Topic  string `json:"topic"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Data   string `json:"data"`
}

// WSSource subscribes to a websocket frame publisher and buffers
// incoming frames for non-blocking polling. A slow consumer drops
// frames rather than backing up the reader.
type WSSource struct {
	conn   *websocket.Conn
	frames chan *TaggedFrame
	errs   chan error
	closed bool
}

// DialWS connects to the publisher at url and subscribes to the given
// topic prefixes.
func DialWS(url string, topics ...string) (*WSSource, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("stream: connecting to %q: %w", url, err)
	}

	if err := conn.WriteJSON(map[string]any{"type": "subscribe", "topics": topics}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("stream: subscribing on %q: %w", url, err)
	}

	s := &WSSource{
		conn:   conn,
		frames: make(chan *TaggedFrame, 64),
		errs:   make(chan error, 1),
	}
	go s.readLoop()
	return s, nil
}

func (s *WSSource) readLoop() {
	for {
		var env frameEnvelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if !s.closed {
				s.errs <- fmt.Errorf("stream: reading frame: %w", err)
			}
			return
		}

		raw, err := base64.StdEncoding.DecodeString(env.Data)
		if err != nil {
			s.errs <- fmt.Errorf("stream: frame payload on %q is not base64: %w", env.Topic, err)
			return
		}

		frame := &TaggedFrame{
			Topic: env.Topic,
			Payload: Payload{
				Width:       env.Width,
				Height:      env.Height,
				PixelFormat: env.Format,
				Data:        raw,
			},
		}

		select {
		case s.frames <- frame:
		default:
			log.Debug("dropping frame, consumer too slow", "topic", env.Topic)
		}
	}
}

// Poll returns the next buffered frame, or nil when none is pending.
// A reader failure is returned once and the source is dead afterwards.
func (s *WSSource) Poll() (*TaggedFrame, error) {
	select {
	case frame := <-s.frames:
		return frame, nil
	case err := <-s.errs:
		return nil, err
	default:
		return nil, nil
	}
}

// Close shuts the connection down. Pending buffered frames are
// discarded.
func (s *WSSource) Close() error {
	s.closed = true
	return s.conn.Close()
}
