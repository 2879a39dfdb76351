package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	// maxFrame bounds a decoded envelope; full-resolution layers fit comfortably.
	maxFrame = 8 << 20
	// compressedBit in the length prefix marks a zstd payload. The low 31
	// bits are the payload length as sent.
	compressedBit = 1 << 31
)

var (
	frameEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	frameDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxFrame))
)

// Envelope is the wire format shared with the environment. Data stays raw so
// each handler decodes only the message type it owns.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", msgType, err)
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// ReadEnvelope reads one frame: a 4-byte little-endian prefix followed by a
// JSON envelope, zstd-compressed when the prefix's top bit is set.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Envelope{}, fmt.Errorf("read length: %w", err)
	}
	word := binary.LittleEndian.Uint32(prefix[:])
	compressed := word&compressedBit != 0
	length := word &^ compressedBit
	if length == 0 || length > maxFrame {
		return Envelope{}, fmt.Errorf("invalid message length: %d", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Envelope{}, fmt.Errorf("read payload: %w", err)
	}
	if compressed {
		plain, err := frameDecoder.DecodeAll(payload, nil)
		if err != nil {
			return Envelope{}, fmt.Errorf("decompress payload: %w", err)
		}
		payload = plain
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// WriteEnvelope writes env as a single uncompressed frame.
func WriteEnvelope(w io.Writer, env Envelope) error {
	return writeFrame(w, env, false)
}

// WriteCompressedEnvelope writes env as a single zstd frame.
func WriteCompressedEnvelope(w io.Writer, env Envelope) error {
	return writeFrame(w, env, true)
}

func writeFrame(w io.Writer, env Envelope, compress bool) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	word := uint32(0)
	if compress {
		payload = frameEncoder.EncodeAll(payload, nil)
		word = compressedBit
	}
	if len(payload) > maxFrame {
		return fmt.Errorf("envelope %s too large: %d bytes", env.Type, len(payload))
	}
	word |= uint32(len(payload))

	// One write per frame so concurrent readers never see a split prefix.
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf, word)
	copy(buf[4:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
