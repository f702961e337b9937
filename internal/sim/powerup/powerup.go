package powerup

import (
	"fmt"
	"strings"
)

type Kind string

const (
	TrashBin     Kind = "TRASH_BIN"
	Announcement Kind = "ANNOUNCEMENT"
	SpeedBoost   Kind = "SPEED_BOOST"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case TrashBin, Announcement, SpeedBoost:
		return k, nil
	default:
		return "", fmt.Errorf("unknown powerup kind %q", s)
	}
}

func ParseKinds(ss []string) ([]Kind, error) {
	out := make([]Kind, 0, len(ss))
	for _, s := range ss {
		k, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
