package game

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
)

const UnknownMinor = -1

// RoundMarker is a stage-round label like 3-4. Minor is UnknownMinor when only the stage could be seen.
type RoundMarker struct {
	Major int
	Minor int
}

func (r RoundMarker) String() string {
	if r.Minor == UnknownMinor {
		return fmt.Sprintf("%d-?", r.Major)
	}

	return fmt.Sprintf("%d-%d", r.Major, r.Minor)
}

func (r RoundMarker) IsZero() bool {
	return r.Major == 0
}

// ParseRoundText reads OCR output of the round label. Separators are optional, "34" and "3-4" are both 3-4.
func ParseRoundText(text string) (RoundMarker, bool) {
	digits := make([]int, 0, 2)
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 2 || digits[0] == 0 || digits[1] == 0 {
		return RoundMarker{}, false
	}

	return RoundMarker{Major: digits[0], Minor: digits[1]}, true
}

// RoundFromTemplate reads the label encoded in a round template name: "2-" gives stage 2 with an unknown
// round, "3-1" gives 3-1.
func RoundFromTemplate(t Template) (RoundMarker, bool) {
	name := strings.TrimSuffix(path.Base(string(t)), path.Ext(string(t)))
	majorText, minorText, found := strings.Cut(name, "-")
	if !found {
		return RoundMarker{}, false
	}
	major, err := strconv.Atoi(majorText)
	if err != nil || major <= 0 {
		return RoundMarker{}, false
	}
	if minorText == "" {
		return RoundMarker{Major: major, Minor: UnknownMinor}, true
	}
	minor, err := strconv.Atoi(minorText)
	if err != nil || minor <= 0 {
		return RoundMarker{}, false
	}

	return RoundMarker{Major: major, Minor: minor}, true
}

// RoundTracker keeps the highest stage seen in the current match. Misreads that would move the stage
// backwards are ignored.
type RoundTracker struct {
	mu      sync.Mutex
	current RoundMarker
}

// Observe records r and returns the round the match is considered to be in.
func (t *RoundTracker) Observe(r RoundMarker) RoundMarker {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r.IsZero() || r.Major < t.current.Major {
		return t.current
	}
	if r.Major > t.current.Major || r.Minor != UnknownMinor {
		t.current = r
	}

	return t.current
}

func (t *RoundTracker) Current() RoundMarker {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.current
}

func (t *RoundTracker) Reset() {
	t.mu.Lock()
	t.current = RoundMarker{}
	t.mu.Unlock()
}
