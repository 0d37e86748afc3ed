// Package source provides snapshot-source implementations for the session.
// The indexer transport proper is an external collaborator; these sources
// consume its already-exported snapshot records.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"poolScope/internal/datum"
	"poolScope/internal/model"
)

// JSONLSource reads pool snapshots from a JSONL file, one snapshot per line.
// With Follow enabled it tails the file, polling with backoff when it reaches
// the end. Snapshots at or below the starting slot watermark are skipped, so
// a restart from a checkpoint does not replay old deliveries.
type JSONLSource struct {
	Follow       bool
	PollInterval time.Duration
	StartAfter   uint64

	file    *os.File
	scanner *bufio.Scanner
}

func NewJSONLSource(path string) (*JSONLSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshots: %w", err)
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	return &JSONLSource{
		PollInterval: 500 * time.Millisecond,
		file:         file,
		scanner:      scanner,
	}, nil
}

// Next returns the next snapshot, or io.EOF when the file is exhausted and
// Follow is off.
func (s *JSONLSource) Next(ctx context.Context) (model.PoolSnapshot, error) {
	for {
		line, err := s.nextLine(ctx)
		if err != nil {
			return model.PoolSnapshot{}, err
		}

		var snap model.PoolSnapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
		}
		if _, err := model.ParsePolicyID(snap.Pool.TokenPolicy); err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
		}
		if snap.DatumCbor != "" {
			raw, err := hex.DecodeString(snap.DatumCbor)
			if err != nil {
				return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: datum cbor is not hex: %w", err)
			}
			decoded, size, err := datum.DecodePoolDatum(raw)
			if err != nil {
				return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
			}
			snap.Datum = decoded
			snap.DatumSize = size
		}
		if snap.Slot <= s.StartAfter {
			continue
		}
		return snap, nil
	}
}

func (s *JSONLSource) nextLine(ctx context.Context) ([]byte, error) {
	delay := s.PollInterval
	for {
		for s.scanner.Scan() {
			line := bytes.TrimSpace(s.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			// The scanner reuses its buffer across Scan calls.
			out := make([]byte, len(line))
			copy(out, line)
			return out, nil
		}
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan snapshots: %w", err)
		}

		if !s.Follow {
			return nil, io.EOF
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if delay < 8*s.PollInterval {
			delay *= 2
		}

		// Reset the scanner so appended lines become visible.
		s.scanner = bufio.NewScanner(s.file)
		buf := make([]byte, 0, 64*1024)
		s.scanner.Buffer(buf, 10*1024*1024)
	}
}

func (s *JSONLSource) Close() error {
	return s.file.Close()
}
