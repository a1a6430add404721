// Package wavio reads one channel of a PCM WAV file as int16 samples and
// writes interleaved 16-bit PCM WAV files for the command-line drivers.
package wavio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	bitsPerByte     = 8

	// WAV header layout
	wavHeaderSize      = 44
	wavRiffHeaderSize  = 36 // file size − 8 = riffHeaderSize + dataSize
	wavPCMSubchunkSize = 16
	wavFileSizeOffset  = 4
	wavDataSizeOffset  = 40

	writerBufferSize = 256 * 1024
	readChunkFrames  = 65536
)

// Reader decodes one channel of a WAV file into int16 samples. 24- and
// 32-bit files are narrowed by dropping the low-order bits.
type Reader struct {
	file     *os.File
	decoder  *wav.Decoder
	buf      *audio.IntBuffer
	pending  []int // decoded interleaved samples not yet returned
	channel  int
	Rate     int
	Channels int
	BitDepth int
}

// Open opens path and selects channel for reading.
func Open(path string, channel int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		_ = f.Close()
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	if channel < 0 || channel >= format.NumChannels {
		_ = f.Close()
		return nil, fmt.Errorf("channel %d out of range, file has %d", channel, format.NumChannels)
	}

	return &Reader{
		file:    f,
		decoder: decoder,
		buf: &audio.IntBuffer{
			Data:   make([]int, readChunkFrames*format.NumChannels),
			Format: format,
		},
		channel:  channel,
		Rate:     format.SampleRate,
		Channels: format.NumChannels,
		BitDepth: bitDepth,
	}, nil
}

// Read fills dst with samples of the selected channel and returns the
// count. It returns io.EOF once the file is exhausted.
func (r *Reader) Read(dst []int16) (int, error) {
	shift := uint(r.BitDepth - bitsPerSample16)
	n := 0
	for n < len(dst) {
		if len(r.pending) < r.Channels {
			r.buf.Data = r.buf.Data[:cap(r.buf.Data)]
			got, err := r.decoder.PCMBuffer(r.buf)
			if err != nil && !errors.Is(err, io.EOF) {
				return n, fmt.Errorf("failed to read audio data: %w", err)
			}
			if got == 0 {
				break
			}
			r.pending = r.buf.Data[:got]
		}

		frames := min(len(r.pending)/r.Channels, len(dst)-n)
		for i := range frames {
			dst[n+i] = int16(r.pending[i*r.Channels+r.channel] >> shift)
		}
		n += frames
		r.pending = r.pending[frames*r.Channels:]
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close closes the input file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Writer writes interleaved 16-bit PCM straight to a buffered file and
// patches the header sizes on Close.
type Writer struct {
	w        *bufio.Writer
	f        *os.File
	rate     int
	channels int
	dataSize uint32
	byteBuf  []byte
}

// Create creates path and writes a header with placeholder sizes.
func Create(path string, rate, channels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{
		w:        bufio.NewWriterSize(f, writerBufferSize),
		f:        f,
		rate:     rate,
		channels: channels,
	}
	if err := w.writeHeader(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	bytesPerSample := bitsPerSample16 / bitsPerByte
	blockAlign := w.channels * bytesPerSample
	byteRate := w.rate * blockAlign

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample16)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0)

	_, err := w.w.Write(header)
	return err
}

// WriteInt16 writes interleaved samples.
func (w *Writer) WriteInt16(samples []int16) error {
	needed := len(samples) * 2
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}

	buf := w.byteBuf[:needed]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data, writes the final sizes and closes the file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return err
	}

	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+w.dataSize)
	if _, err := w.f.WriteAt(sizeBytes, wavFileSizeOffset); err != nil {
		_ = w.f.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.f.WriteAt(sizeBytes, wavDataSizeOffset); err != nil {
		_ = w.f.Close()
		return err
	}

	return w.f.Close()
}
