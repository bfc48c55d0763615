package osm

import (
	"strconv"
	"strings"
)

// wayDirection says which directed edges a way contributes.
type wayDirection int

const (
	directionBoth wayDirection = iota
	directionForward
	directionReverse
)

// parseOneway maps the oneway tag value to a direction. Anything that is not
// an explicit oneway marker, including an absent tag, means bidirectional.
func parseOneway(value string) wayDirection {
	switch value {
	case "yes", "true", "1":
		return directionForward
	case "-1":
		return directionReverse
	}
	return directionBoth
}

// parseLanes extracts a lane count from the lanes tag. Tags may carry
// several semicolon-separated values when the count changes along the way;
// the greatest one wins. Returns 0 when no value parses, recording the count
// as unknown.
func parseLanes(value string) int {
	if value == "" {
		return 0
	}
	lanes := 0
	for _, part := range strings.Split(value, ";") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			continue
		}
		lanes = max(lanes, n)
	}
	return lanes
}
