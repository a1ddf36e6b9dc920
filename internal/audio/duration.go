// Package audio provides duration measurement for synthesized narration
// files. The pipeline only needs seconds, not decoding.
package audio

import (
	"fmt"
	"os"
)

// fallbackBitrate is assumed when no frame header can be read. The synthesis
// service emits 128 kbps CBR mp3, so the estimate is close in practice.
const fallbackBitrate = 128000

// bitrate tables for MPEG layer III, kbps. Index 0 and 15 are invalid.
var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

// Duration estimates the playing time of an mp3 file in seconds from its
// size and bitrate. The bitrate is read from the first MPEG frame header;
// when none is found the standard narration bitrate is assumed.
func Duration(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("unable to stat audio file: %w", err)
	}
	size := info.Size()

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("unable to open audio file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	head := make([]byte, 16*1024)
	n, _ := f.Read(head)
	head = head[:n]

	audioBytes := size
	offset := 0
	if tag := id3v2Size(head); tag > 0 {
		audioBytes -= int64(tag)
		if tag < len(head) {
			offset = tag
		}
	}

	bitrate := frameBitrate(head[offset:])
	if bitrate == 0 {
		bitrate = fallbackBitrate
	}
	return float64(audioBytes) * 8 / float64(bitrate), nil
}

// EstimateFromBytes is Duration for in-memory audio.
func EstimateFromBytes(data []byte) float64 {
	audioBytes := len(data)
	offset := 0
	if tag := id3v2Size(data); tag > 0 && tag < len(data) {
		audioBytes -= tag
		offset = tag
	}
	bitrate := frameBitrate(data[offset:])
	if bitrate == 0 {
		bitrate = fallbackBitrate
	}
	return float64(audioBytes) * 8 / float64(bitrate)
}

// id3v2Size returns the size of a leading ID3v2 tag, or 0.
func id3v2Size(data []byte) int {
	if len(data) < 10 || data[0] != 'I' || data[1] != 'D' || data[2] != '3' {
		return 0
	}
	// Syncsafe 28-bit size, excluding the 10-byte header.
	size := int(data[6]&0x7f)<<21 | int(data[7]&0x7f)<<14 | int(data[8]&0x7f)<<7 | int(data[9]&0x7f)
	return size + 10
}

// frameBitrate scans for the first MPEG audio frame sync and returns its
// bitrate in bits per second, or 0 when no valid header is found.
func frameBitrate(data []byte) int {
	for i := 0; i+4 <= len(data); i++ {
		if data[i] != 0xff || data[i+1]&0xe0 != 0xe0 {
			continue
		}
		version := (data[i+1] >> 3) & 0x03 // 3 = MPEG1, 2 = MPEG2, 0 = MPEG2.5
		layer := (data[i+1] >> 1) & 0x03   // 1 = layer III
		if version == 1 || layer != 1 {
			continue
		}
		idx := (data[i+2] >> 4) & 0x0f
		var kbps int
		if version == 3 {
			kbps = bitratesV1[idx]
		} else {
			kbps = bitratesV2[idx]
		}
		if kbps == 0 {
			continue
		}
		return kbps * 1000
	}
	return 0
}
