package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"munaypaq.game/internal/sim/world"
)

// Session is one logged session and its segments in chronological order.
type Session struct {
	ID       string
	Segments []string
}

// ListSessions returns the sessions under dir ordered by their first segment. Directories
// without segments are skipped.
func ListSessions(dir string) ([]Session, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []Session
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		segs, err := listSegments(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if len(segs) > 0 {
			out = append(out, Session{ID: e.Name(), Segments: segs})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := filepath.Base(out[i].Segments[0]), filepath.Base(out[j].Segments[0])
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func listSegments(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadSession decodes every entry of s in order.
func ReadSession(s Session, fn func(world.TickLogEntry) error) error {
	for _, path := range s.Segments {
		if err := ReadTicks(path, fn); err != nil {
			return err
		}
	}
	return nil
}

// ReadTicks decodes every entry of one segment in order.
func ReadTicks(path string, fn func(world.TickLogEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var entry world.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return sc.Err()
}
