// Package bpmlog reads the request/response interceptor log written by the
// BPM web service stack and pairs inbound and outbound messages.
package bpmlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

const (
	TimestampLayout = "02 Jan 2006 15:04:05,000"

	inboundMarker  = "LoggingInInterceptor"
	outboundMarker = "LoggingOutInterceptor"
	idMarker       = "ID:"
	responseMarker = "Response-Code:"
	resetMarker    = "reset "
	maxLineBytes   = 1 << 20
)

// Analysis is the outcome of one pass over a log.
type Analysis struct {
	Transactions []domain.Transaction
	// Resets counts exchange ids that logged a connection reset, paired or not.
	Resets  int
	First   time.Time
	Last    time.Time
	Skipped int
}

// Totals summarizes the paired transactions over the whole log span.
func (a Analysis) Totals() domain.TransactionTotals {
	totals := domain.Summarize(a.Transactions)
	totals.Resets = a.Resets
	totals.Span = 0
	if !a.First.IsZero() && a.Last.After(a.First) {
		totals.Span = a.Last.Sub(a.First)
	}
	return totals
}

type direction int

const (
	none direction = iota
	inbound
	outbound
)

type scanState struct {
	pending   []domain.Transaction
	completed []domain.Transaction
	responses map[string]string
	resets    map[string]struct{}
	stamp     time.Time
	expecting direction
	currentID string
	first     time.Time
	last      time.Time
	skipped   int
}

// Scan pairs every inbound message with the next outbound message carrying
// the same exchange id. Transactions are returned in completion order.
func Scan(r io.Reader) (Analysis, error) {
	state := &scanState{
		responses: map[string]string{},
		resets:    map[string]struct{}{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		state.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Analysis{}, fmt.Errorf("read log: %w", err)
	}

	for i := range state.completed {
		tx := &state.completed[i]
		tx.Response = state.responses[tx.ID]
		_, tx.Reset = state.resets[tx.ID]
	}

	return Analysis{
		Transactions: state.completed,
		Resets:       len(state.resets),
		First:        state.first,
		Last:         state.last,
		Skipped:      state.skipped,
	}, nil
}

// ScanFile scans the log at path. A missing file is reported as
// domain.ErrLogFileNotFound.
func ScanFile(path string) (Analysis, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Analysis{}, fmt.Errorf("%s: %w", path, domain.ErrLogFileNotFound)
		}
		return Analysis{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	return Scan(file)
}

func (s *scanState) line(text string) {
	switch {
	case strings.Contains(text, inboundMarker):
		stamp, ok := s.parseStamp(text)
		if !ok {
			return
		}
		s.stamp = stamp
		s.expecting = inbound
		if s.first.IsZero() {
			s.first = stamp
		}
	case strings.Contains(text, outboundMarker):
		stamp, ok := s.parseStamp(text)
		if !ok {
			return
		}
		s.stamp = stamp
		s.expecting = outbound
		s.last = stamp
	case strings.Contains(text, idMarker):
		id, ok := secondToken(text)
		if !ok {
			s.skipped++
			return
		}
		s.currentID = id
		switch s.expecting {
		case outbound:
			s.close(id)
		case inbound:
			s.pending = append(s.pending, domain.Transaction{ID: id, Start: s.stamp})
		}
		s.expecting = none
	case strings.Contains(text, responseMarker):
		if code, ok := secondToken(text); ok && s.currentID != "" {
			s.responses[s.currentID] = code
		}
	case strings.Contains(text, resetMarker):
		if s.currentID != "" {
			s.resets[s.currentID] = struct{}{}
		}
	}
}

func (s *scanState) close(id string) {
	kept := s.pending[:0]
	for _, tx := range s.pending {
		if tx.ID != id {
			kept = append(kept, tx)
			continue
		}
		tx.End = s.stamp
		tx.Elapsed = s.stamp.Sub(tx.Start)
		s.completed = append(s.completed, tx)
	}
	s.pending = kept
}

func (s *scanState) parseStamp(text string) (time.Time, bool) {
	prefix, _, _ := strings.Cut(text, "[")
	stamp, err := time.Parse(TimestampLayout, strings.TrimSpace(prefix))
	if err != nil {
		s.skipped++
		return time.Time{}, false
	}
	return stamp, true
}

func secondToken(text string) (string, bool) {
	fields := strings.Split(text, " ")
	if len(fields) < 2 {
		return "", false
	}
	token := strings.TrimRight(fields[1], " \t\r\n")
	return token, token != ""
}
