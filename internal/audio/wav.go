package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	HeaderSize = 44

	DefaultChannels    = 1
	DefaultSampleRate  = 24000
	DefaultSampleWidth = 2

	MIMEType      = "audio/wav"
	DataURIPrefix = "data:" + MIMEType + ";base64,"

	formatPCM    = 1
	fmtChunkSize = 16
)

var (
	ErrMalformedAudio = errors.New("malformed audio")
	ErrInvalidFormat  = errors.New("invalid audio format")
)

// Format describes interleaved little-endian PCM.
type Format struct {
	Channels    int `json:"channels"`
	SampleRate  int `json:"sample_rate"`
	SampleWidth int `json:"sample_width"`
}

func DefaultFormat() Format {
	return Format{
		Channels:    DefaultChannels,
		SampleRate:  DefaultSampleRate,
		SampleWidth: DefaultSampleWidth,
	}
}

func (f Format) Validate() error {
	if f.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1, got %d", ErrInvalidFormat, f.Channels)
	}
	if f.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate must be at least 1, got %d", ErrInvalidFormat, f.SampleRate)
	}
	switch f.SampleWidth {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: sample width must be 1, 2 or 4 bytes, got %d", ErrInvalidFormat, f.SampleWidth)
	}
	if int64(f.SampleRate)*int64(f.BlockAlign()) > math.MaxUint32 {
		return fmt.Errorf("%w: byte rate overflows 32 bits", ErrInvalidFormat)
	}
	return nil
}

func (f Format) BlockAlign() int {
	return f.Channels * f.SampleWidth
}

func (f Format) ByteRate() int {
	return f.SampleRate * f.Channels * f.SampleWidth
}

func (f Format) BitsPerSample() int {
	return f.SampleWidth * 8
}

// Duration returns the playback length of n bytes of PCM in this format.
func (f Format) Duration(n int) time.Duration {
	if f.ByteRate() <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(f.ByteRate()))
}

type header struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// Encode wraps pcm in a canonical 44-byte RIFF/WAVE header.
func Encode(pcm []byte, f Format) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Channels > math.MaxUint16 || f.BlockAlign() > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d channels do not fit a WAV header", ErrInvalidFormat, f.Channels)
	}
	if len(pcm)%f.BlockAlign() != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of block align %d", ErrMalformedAudio, len(pcm), f.BlockAlign())
	}
	if uint64(len(pcm))+HeaderSize-8 > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes exceeds the RIFF size limit", ErrMalformedAudio, len(pcm))
	}

	h := header{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(HeaderSize - 8 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       fmtChunkSize,
		AudioFormat:   formatPCM,
		Channels:      uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.ByteRate()),
		BlockAlign:    uint16(f.BlockAlign()),
		BitsPerSample: uint16(f.BitsPerSample()),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+len(pcm)))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// EncodeDataURI returns the WAV container as a data:audio/wav;base64 URI.
func EncodeDataURI(pcm []byte, f Format) (string, error) {
	wav, err := Encode(pcm, f)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(wav), nil
}

// Decode parses a canonical WAV produced by Encode.
func Decode(wav []byte) ([]byte, Format, error) {
	if len(wav) < HeaderSize {
		return nil, Format{}, fmt.Errorf("%w: %d bytes is shorter than a WAV header", ErrMalformedAudio, len(wav))
	}

	var h header
	if err := binary.Read(bytes.NewReader(wav[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, Format{}, fmt.Errorf("%w: read header: %v", ErrMalformedAudio, err)
	}

	switch {
	case string(h.RIFF[:]) != "RIFF" || string(h.WAVE[:]) != "WAVE":
		return nil, Format{}, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrMalformedAudio)
	case string(h.Fmt[:]) != "fmt " || h.FmtSize != fmtChunkSize:
		return nil, Format{}, fmt.Errorf("%w: unexpected fmt chunk", ErrMalformedAudio)
	case h.AudioFormat != formatPCM:
		return nil, Format{}, fmt.Errorf("%w: audio format %d is not PCM", ErrMalformedAudio, h.AudioFormat)
	case string(h.Data[:]) != "data":
		return nil, Format{}, fmt.Errorf("%w: missing data chunk", ErrMalformedAudio)
	case int(h.DataSize) != len(wav)-HeaderSize || int(h.ChunkSize) != len(wav)-8:
		return nil, Format{}, fmt.Errorf("%w: declared sizes do not match %d bytes", ErrMalformedAudio, len(wav))
	}

	f := Format{
		Channels:    int(h.Channels),
		SampleRate:  int(h.SampleRate),
		SampleWidth: int(h.BitsPerSample) / 8,
	}
	if err := f.Validate(); err != nil {
		return nil, Format{}, err
	}
	if int(h.BlockAlign) != f.BlockAlign() || int(h.ByteRate) != f.ByteRate() {
		return nil, Format{}, fmt.Errorf("%w: inconsistent block align or byte rate", ErrMalformedAudio)
	}
	if int(h.DataSize)%f.BlockAlign() != 0 {
		return nil, Format{}, fmt.Errorf("%w: data is not block aligned", ErrMalformedAudio)
	}

	return wav[HeaderSize:], f, nil
}
