package piper

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wyoming protocol framing (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)

// Upper bounds on a single frame read from the server.
const (
	maxEventJSON    = 1 << 20
	maxEventPayload = 16 << 20
)

type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeEvent(w io.Writer, evt event, payload []byte) error {
	js, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(js), len(payload))
	buf.Write(js)
	buf.WriteByte('\n')
	buf.Write(payload)
	_, err = w.Write(buf.Bytes())
	return err
}

func readEvent(r *bufio.Reader) (event, []byte, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return event{}, nil, fmt.Errorf("reading header: %w", err)
	}
	jsStr, payloadStr, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return event{}, nil, fmt.Errorf("invalid wyoming header: %q", line)
	}
	jsLen, err := strconv.Atoi(jsStr)
	if err != nil {
		return event{}, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(payloadStr)
	if err != nil {
		return event{}, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	if jsLen < 0 || jsLen > maxEventJSON {
		return event{}, nil, fmt.Errorf("json_length %d out of range", jsLen)
	}
	if payloadLen < 0 || payloadLen > maxEventPayload {
		return event{}, nil, fmt.Errorf("payload_length %d out of range", payloadLen)
	}

	js := make([]byte, jsLen+1) // trailing newline
	if _, err := io.ReadFull(r, js); err != nil {
		return event{}, nil, fmt.Errorf("reading json: %w", err)
	}
	var evt event
	if err := json.Unmarshal(js[:jsLen], &evt); err != nil {
		return event{}, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return event{}, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return evt, payload, nil
}

// wavHeader is the canonical 44-byte PCM WAV header.
type wavHeader struct {
	RIFF          [4]byte
	FileLen       uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtLen        uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataLen       uint32
}

// pcmToWAV wraps raw little-endian PCM in a WAV container.
func pcmToWAV(pcm []byte, sampleRate, channels, width int) []byte {
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		FileLen:       uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtLen:        16,
		AudioFormat:   1,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * width),
		BlockAlign:    uint16(channels * width),
		BitsPerSample: uint16(width * 8),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataLen:       uint32(len(pcm)),
	}
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	_ = binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(pcm)
	return buf.Bytes()
}

// number reads a numeric event field, which JSON decodes as float64.
func number(data map[string]any, key string, def int) int {
	if f, ok := data[key].(float64); ok && f > 0 {
		return int(f)
	}
	return def
}
