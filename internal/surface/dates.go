package surface

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const cardSuffix = "-TodayCard.md"

// CardName returns the daily card filename for a date: 2026-08-25-TodayCard.md.
func CardName(date time.Time) string {
	return date.Format("2006-01-02") + cardSuffix
}

// CardPath returns the workspace-relative path of a date's daily card.
func CardPath(date time.Time) string {
	return CardsDir + "/" + CardName(date)
}

// ParseCardDate extracts the date from a card filename or path.
func ParseCardDate(name string) (time.Time, error) {
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if !strings.HasSuffix(base, cardSuffix) {
		return time.Time{}, fmt.Errorf("not a daily card: %s", name)
	}
	date, err := time.Parse("2006-01-02", strings.TrimSuffix(base, cardSuffix))
	if err != nil {
		return time.Time{}, fmt.Errorf("not a daily card: %s", name)
	}
	return date, nil
}

// LatestCard returns the workspace-relative path of the most recent daily
// card on disk, or "" when no cards exist yet.
func (l Layout) LatestCard() (string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Root, CardsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var cards []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := ParseCardDate(e.Name()); err == nil {
			cards = append(cards, e.Name())
		}
	}
	if len(cards) == 0 {
		return "", nil
	}
	sort.Strings(cards) // ISO dates sort chronologically
	return CardsDir + "/" + cards[len(cards)-1], nil
}

// ParseDateArg parses a date argument: "today", "yesterday", "tomorrow", or
// YYYY-MM-DD. Empty defaults to today.
func ParseDateArg(arg string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return time.Now(), nil
	case "yesterday":
		return time.Now().AddDate(0, 0, -1), nil
	case "tomorrow":
		return time.Now().AddDate(0, 0, 1), nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(arg))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or today/yesterday/tomorrow", arg)
	}
	return parsed, nil
}
