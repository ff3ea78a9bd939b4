// Package ingest loads the inputs a simulation run consumes: an existing
// identity roster, a recorded stream of data requests, or (absent both) a
// synthetically generated block stream.
package ingest

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rawblock/ars-simulator/internal/ars"
)

// bz2Magic is the three leading bytes of a bzip2 stream ("BZh").
var bz2Magic = []byte{0x42, 0x5a, 0x68}

// OpenRosterFile opens path, transparently decompressing it if its first
// three bytes are the bzip2 magic number. Roster files are usually a
// bzip2-compressed export of the live network's reputation state; this
// lets the simulator accept either form without a separate flag.
func OpenRosterFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open roster file: %w", err)
	}

	head := make([]byte, len(bz2Magic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("ingest: read roster header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("ingest: seek roster file: %w", err)
	}

	if n == len(bz2Magic) && bytes.Equal(head, bz2Magic) {
		return &bz2File{underlying: f, Reader: bzip2.NewReader(f)}, nil
	}
	return f, nil
}

// bz2File adapts a bzip2.Reader (no Close method) to io.ReadCloser by
// closing the underlying file instead.
type bz2File struct {
	io.Reader
	underlying *os.File
}

func (b *bz2File) Close() error { return b.underlying.Close() }

// ParseRoster reads "name,reputation" lines from r into RosterEntry
// values, skipping blank lines.
func ParseRoster(r io.Reader) ([]ars.RosterEntry, error) {
	var entries []ars.RosterEntry
	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("ingest: roster line %d: expected \"name,reputation\", got %q", lineNum, line)
		}
		reputation, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ingest: roster line %d: invalid reputation: %w", lineNum, err)
		}
		entries = append(entries, ars.RosterEntry{
			Name:       strings.TrimSpace(fields[0]),
			Reputation: reputation,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan roster: %w", err)
	}
	return entries, nil
}

// LoadRosterFile opens, decompresses if needed, and parses a roster file
// in one call.
func LoadRosterFile(path string) ([]ars.RosterEntry, error) {
	f, err := OpenRosterFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRoster(f)
}
