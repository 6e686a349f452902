package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Resample converts interleaved 16-bit PCM to toRate using linear interpolation per channel.
func Resample(pcm []byte, f Format, toRate int) ([]byte, Format, error) {
	if err := f.Validate(); err != nil {
		return nil, Format{}, err
	}
	if f.SampleWidth != 2 {
		return nil, Format{}, fmt.Errorf("%w: resampling needs 16-bit samples, got %d-byte", ErrInvalidFormat, f.SampleWidth)
	}
	if toRate < 1 {
		return nil, Format{}, fmt.Errorf("%w: target sample rate must be at least 1, got %d", ErrInvalidFormat, toRate)
	}
	if len(pcm)%f.BlockAlign() != 0 {
		return nil, Format{}, fmt.Errorf("%w: %d bytes is not a multiple of block align %d", ErrMalformedAudio, len(pcm), f.BlockAlign())
	}

	out := f
	out.SampleRate = toRate
	if f.SampleRate == toRate {
		return pcm, out, nil
	}

	samples := PCMBytesToInt16(pcm)
	frames := len(samples) / f.Channels
	ratio := float64(toRate) / float64(f.SampleRate)
	outFrames := int(math.Ceil(float64(frames) * ratio))

	channel := make([]float32, frames)
	resampled := make([]float32, outFrames)
	result := make([]int16, outFrames*f.Channels)

	for ch := 0; ch < f.Channels; ch++ {
		for i := 0; i < frames; i++ {
			channel[i] = float32(samples[i*f.Channels+ch]) / 32768.0
		}
		resampleCore(resampled, channel, ratio)
		for i, s := range resampled {
			result[i*f.Channels+ch] = float32ToInt16(s)
		}
	}

	return Int16ToPCMBytes(result), out, nil
}

func resampleCore(output, input []float32, ratio float64) {
	for i := range output {
		srcPos := float64(i) / ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		switch {
		case srcIdx+1 < len(input):
			output[i] = input[srcIdx]*(1-frac) + input[srcIdx+1]*frac
		case srcIdx < len(input):
			output[i] = input[srcIdx]
		default:
			output[i] = 0
		}
	}
}

func PCMBytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

func Int16ToPCMBytes(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return pcm
}

// Peak returns the largest absolute 16-bit sample as a fraction of full scale.
func Peak(pcm []byte) float64 {
	var peak int32
	for _, s := range PCMBytesToInt16(pcm) {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return float64(peak) / 32768.0
}

func float32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
