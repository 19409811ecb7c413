// Package framesource memory-maps a capture file and cursors over its
// [u16_be length][payload] frames without copying the underlying bytes.
package framesource

import (
	"fmt"
	"os"
	"syscall"
)

// lengthPrefixSize is the width of the big-endian frame length header that
// precedes every ITCH message in a capture file.
const lengthPrefixSize = 2

// Source owns a read-only mmap of a capture file and hands out successive
// frames from it. It is not safe for concurrent use by multiple goroutines;
// the decoder loop that owns a Source is the sole reader.
type Source struct {
	f      *os.File
	data   []byte
	cursor int
}

// Open mmaps path read-only. The mapping is released by Close.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("framesource: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("framesource: stat %s: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		return &Source{f: f, data: nil}, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("framesource: mmap %s: %w", path, err)
	}
	return &Source{f: f, data: data}, nil
}

// Close unmaps the file and releases the descriptor. It is safe to call
// once, after the last call to NextFrame.
func (s *Source) Close() error {
	var err error
	if s.data != nil {
		err = syscall.Munmap(s.data)
		s.data = nil
	}
	if cerr := s.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NextFrame returns the payload bytes of the next frame (length prefix
// stripped) and true, or nil and false when the mapping is exhausted. A
// trailing sliver too short to hold a full length prefix, or a length
// prefix whose payload runs past the end of the mapping, ends the stream
// cleanly rather than raising an error: a truncated capture is expected,
// not exceptional, per the frame source's design.
//
// The returned slice aliases the mmap directly; it is valid only until the
// next call to NextFrame or to Close.
func (s *Source) NextFrame() ([]byte, bool) {
	if s.cursor+lengthPrefixSize > len(s.data) {
		return nil, false
	}
	n := int(s.data[s.cursor])<<8 | int(s.data[s.cursor+1])
	start := s.cursor + lengthPrefixSize
	end := start + n
	if end > len(s.data) {
		return nil, false
	}
	s.cursor = end
	return s.data[start:end], true
}

// Offset returns the current byte cursor into the mapping, usable as a
// resumable replay position.
func (s *Source) Offset() int { return s.cursor }

// Len returns the total mapped size in bytes.
func (s *Source) Len() int { return len(s.data) }
