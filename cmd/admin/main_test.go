package main

import (
	"bytes"
	"strings"
	"testing"

	"munaypaq.game/internal/score"
)

func TestPrintScores(t *testing.T) {
	var buf bytes.Buffer
	printScores(&buf, score.List{Entries: []score.Entry{
		{PlayerName: "ana", Score: 12500, CityDirtLevel: 3, Date: "2024-05-01 12:01", DurationSeconds: 95},
		{PlayerName: "wayra", Score: 40, CityDirtLevel: 0, Date: "2024-05-02 09:00", DurationSeconds: 5},
	}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%q", lines)
	}
	for _, want := range []string{"1st", "ana", "12,500", "1:35", "2024-05-01 12:01"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.Contains(lines[2], "2nd") || !strings.Contains(lines[2], "0:05") {
		t.Fatalf("row=%q", lines[2])
	}
}

func TestPrintScoresEmpty(t *testing.T) {
	var buf bytes.Buffer
	printScores(&buf, score.List{})
	if strings.TrimSpace(buf.String()) != "no high scores" {
		t.Fatalf("out=%q", buf.String())
	}
}
