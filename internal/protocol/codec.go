package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frames are delimited records: an unsigned LEB128 length followed by exactly
// that many bytes of encoded Envelope.

const DefaultMaxFrameSize = 1024 * 1024 // 1MB

var (
	// ErrDecode marks a frame that cannot be interpreted. It is fatal for the
	// connection: the stream cannot be resynchronized after it.
	ErrDecode = errors.New("malformed frame")

	ErrFrameTooLarge  = fmt.Errorf("%w: frame exceeds maximum size", ErrDecode)
	ErrMissingPayload = fmt.Errorf("%w: envelope carries no payload", ErrDecode)
)

// Encode returns the length-prefixed frame for env.
func Encode(env *Envelope) ([]byte, error) {
	body, err := env.Marshal()
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, protowire.SizeVarint(uint64(len(body)))+len(body))
	frame = protowire.AppendVarint(frame, uint64(len(body)))
	return append(frame, body...), nil
}

// WriteFrame writes the whole frame for env to w, retrying short writes.
func WriteFrame(w io.Writer, env *Envelope) error {
	frame, err := Encode(env)
	if err != nil {
		return err
	}
	for len(frame) > 0 {
		n, err := w.Write(frame)
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("write frame: %w", io.ErrShortWrite)
		}
		frame = frame[n:]
	}
	return nil
}

// Decoder reads frames from a stream. It is not safe for concurrent use.
type Decoder struct {
	r            *bufio.Reader
	maxFrameSize int
}

// NewDecoder wraps r; maxFrameSize <= 0 selects DefaultMaxFrameSize.
func NewDecoder(r io.Reader, maxFrameSize int) *Decoder {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br, maxFrameSize: maxFrameSize}
}

// Decode blocks until a full frame is available.
//
// It returns io.EOF when the stream ends before a length prefix is complete,
// an error wrapping io.ErrUnexpectedEOF when it ends inside a payload, and an
// error wrapping ErrDecode when the frame is not a valid envelope.
func (d *Decoder) Decode() (*Envelope, error) {
	size, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if size > uint64(d.maxFrameSize) {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, size, d.maxFrameSize)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(d.r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	env := &Envelope{}
	if err := env.Unmarshal(body); err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return env, nil
}

func (d *Decoder) readLength() (uint64, error) {
	var prefix [binary.MaxVarintLen64]byte
	for i := range prefix {
		c, err := d.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("read frame length: %w", err)
		}
		prefix[i] = c
		if c < 0x80 {
			v, n := protowire.ConsumeVarint(prefix[:i+1])
			if n < 0 {
				return 0, fmt.Errorf("%w: %v", ErrDecode, protowire.ParseError(n))
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: length prefix overflows 64 bits", ErrDecode)
}
