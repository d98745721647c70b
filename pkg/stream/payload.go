// Package stream consumes tagged eye-frame payloads, samples them at a
// fixed interval per source and persists the sampled frames as preview
// records.
package stream

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported payload pixel formats. Anything else is rejected.
const (
	PixelFormatGray = "gray"
	PixelFormatBGR  = "bgr"
	PixelFormatJPEG = "jpeg"
)

// Payload is one raw frame as delivered by the transport.
type Payload struct {
	Width       int
	Height      int
	PixelFormat string

	// Data is the raw byte buffer: compressed for jpeg, packed pixels
	// for gray and bgr. The buffer may be reused by the transport after
	// the call returns.
	Data []byte
}

// TaggedFrame is a payload together with the topic it arrived on.
type TaggedFrame struct {
	Topic   string
	Payload Payload
}

// FrameSource is a subscribed stream of tagged frames. Poll never
// blocks: it returns nil when no frame is pending.
type FrameSource interface {
	Poll() (*TaggedFrame, error)
	Close() error
}

// SourceID extracts the source identifier from a dotted topic. The
// final segment must be the integer ID ("frame.eye.1" -> 1).
func SourceID(topic string) (int, error) {
	idx := strings.LastIndexByte(topic, '.')
	if idx < 0 || idx == len(topic)-1 {
		return 0, fmt.Errorf("stream: topic %q carries no source ID", topic)
	}
	id, err := strconv.Atoi(topic[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("stream: topic %q carries no source ID", topic)
	}
	return id, nil
}
