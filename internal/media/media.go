package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
)

const MaxVideoBytes = 50 * 1024 * 1024

var (
	ErrInvalidDataURI = errors.New("invalid data uri")
	ErrTooLarge       = errors.New("media exceeds size limit")
	ErrUnsupported    = errors.New("unsupported media type")
)

// Video is an uploaded clip held in memory for the duration of one request.
type Video struct {
	Data     []byte
	MIMEType string
}

func (v Video) Size() int {
	return len(v.Data)
}

func NewVideo(data []byte, mimeType string) (Video, error) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %q", ErrUnsupported, mimeType)
	}
	if !strings.HasPrefix(mt, "video/") {
		return Video{}, fmt.Errorf("%w: %q is not a video type", ErrUnsupported, mt)
	}
	if len(data) == 0 {
		return Video{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	if len(data) > MaxVideoBytes {
		return Video{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), MaxVideoBytes)
	}
	return Video{Data: data, MIMEType: mt}, nil
}

// ParseVideo decodes a data:<mime>;base64,<payload> URI into a Video.
func ParseVideo(uri string) (Video, error) {
	mimeType, payload, err := split(uri)
	if err != nil {
		return Video{}, err
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxVideoBytes+2 {
		return Video{}, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, MaxVideoBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return NewVideo(data, mimeType)
}

// Payload returns everything after the first comma of a media URI.
func Payload(uri string) (string, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return "", fmt.Errorf("%w: no comma separator", ErrInvalidDataURI)
	}
	return payload, nil
}

// DecodePayload base64-decodes the part of uri after its first comma.
func DecodePayload(uri string) ([]byte, error) {
	payload, err := Payload(uri)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, nil
}

func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func split(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("%w: no comma separator", ErrInvalidDataURI)
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("%w: payload must be base64 encoded", ErrInvalidDataURI)
	}
	if mimeType == "" {
		return "", "", fmt.Errorf("%w: missing mime type", ErrInvalidDataURI)
	}
	return mimeType, payload, nil
}
