package bridge

import (
	"encoding/binary"
	"fmt"
	"math"
)

// G.711 helpers for agent services that can only emit linear PCM. The carrier
// leg is always mulaw at 8 kHz, so linear16 agent output gets resampled and
// companded before it goes out.

// transcodeToMulaw converts little-endian linear16 PCM at fromRate to mulaw
// at 8 kHz.
func transcodeToMulaw(pcm []byte, fromRate int) ([]byte, error) {
	if fromRate != 8000 {
		var err error
		pcm, err = resampleLinear16(pcm, fromRate, 8000)
		if err != nil {
			return nil, err
		}
	}
	return encodeMulaw(pcm)
}

// encodeMulaw compands little-endian linear16 PCM to G.711 mulaw.
func encodeMulaw(pcm []byte) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("linear16 data must be an even byte count")
	}
	out := make([]byte, len(pcm)/2)
	for i := range out {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		out[i] = linearToMulaw(sample)
	}
	return out, nil
}

func linearToMulaw(sample int16) byte {
	sign := byte(0)
	if sample < 0 {
		sign = 0x80
		if sample == math.MinInt16 {
			sample = math.MaxInt16
		} else {
			sample = -sample
		}
	}
	if sample > 32635 {
		sample = 32635
	}

	exponent := int16(7)
	for exp := int16(0); exp < 7; exp++ {
		if sample <= (int16(1) << (exp + 5)) {
			exponent = exp
			break
		}
	}
	mantissa := byte(sample>>(exponent+1)) & 0x0F

	return (byte(exponent<<4) | mantissa | sign) ^ 0xFF
}

// resampleLinear16 resamples little-endian linear16 PCM with linear
// interpolation, which is adequate for narrowband telephony.
func resampleLinear16(pcm []byte, fromRate, toRate int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("linear16 data must be an even byte count")
	}
	in := len(pcm) / 2
	if in < 2 {
		return nil, nil
	}
	n := in * toRate / fromRate
	out := make([]byte, n*2)
	ratio := float64(fromRate) / float64(toRate)

	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= in-1 {
			idx = in - 2
		}
		frac := pos - float64(idx)

		a := int16(binary.LittleEndian.Uint16(pcm[idx*2 : idx*2+2]))
		b := int16(binary.LittleEndian.Uint16(pcm[(idx+1)*2 : (idx+2)*2]))
		v := float64(a)*(1-frac) + float64(b)*frac
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16(v)))
	}
	return out, nil
}
