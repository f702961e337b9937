// Package log stores the tick log of every session. Each session gets its own directory
// of hourly zstd-compressed JSONL segments:
//
//	<data>/sessions/<session-id>/ticks-YYYY-MM-DD-HH.jsonl.zst
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"munaypaq.game/internal/sim/world"
)

const (
	segmentPrefix = "ticks-"
	segmentSuffix = ".jsonl.zst"
	hourLayout    = "2006-01-02-15"
)

// SessionLog appends tick entries to the segment of the entry's session. A new session
// id or a new UTC hour starts a new segment.
type SessionLog struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	session string
	hour    string
	seg     *segment
}

type segment struct {
	f   *os.File
	enc *zstd.Encoder
	buf *bufio.Writer
}

func NewSessionLog(dataDir string) *SessionLog {
	return &SessionLog{dir: SessionsDir(dataDir), now: time.Now}
}

// SessionsDir is where NewSessionLog keeps its sessions under dataDir.
func SessionsDir(dataDir string) string { return filepath.Join(dataDir, "sessions") }

func (l *SessionLog) WriteTick(e world.TickLogEntry) error {
	if err := checkSessionID(e.SessionID); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	hour := l.now().UTC().Format(hourLayout)
	if l.seg == nil || e.SessionID != l.session || hour != l.hour {
		if err := l.openLocked(e.SessionID, hour); err != nil {
			return err
		}
	}
	if _, err := l.seg.buf.Write(b); err != nil {
		return err
	}
	return l.seg.buf.Flush()
}

func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *SessionLog) openLocked(session, hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Join(l.dir, session)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, segmentPrefix+hour+segmentSuffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.seg = &segment{f: f, enc: enc, buf: bufio.NewWriterSize(enc, 128*1024)}
	l.session = session
	l.hour = hour
	return nil
}

func (l *SessionLog) closeLocked() error {
	if l.seg == nil {
		return nil
	}
	s := l.seg
	l.seg = nil
	return errors.Join(s.buf.Flush(), s.enc.Close(), s.f.Close())
}

// checkSessionID keeps ids usable as a single path element.
func checkSessionID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("tick log: bad session id %q", id)
	}
	return nil
}
