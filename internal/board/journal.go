package board

import (
	"math"
	"planboard/internal/filter"
	"planboard/internal/models/journal"
	"planboard/internal/richtext"
	"strconv"
	"time"
)

// ArchiveCriteria narrows the journal archive. Zero values keep everything.
type ArchiveCriteria struct {
	Query string
	Start *time.Time
	End   *time.Time
	Tags  []string
	Moods []int
}

type MonthGroup struct {
	Month   string
	Entries []journal.Entry
	// Happiness is the average mood as a percentage of the top of the scale, nil when no
	// entry of the month has a mood.
	Happiness *int
}

// JournalArchive filters entries and groups them by month, newest month first.
func JournalArchive(entries []journal.Entry, c ArchiveCriteria) []MonthGroup {
	filtered := filter.FilterByQuery(entries, c.Query, func(e journal.Entry) []string {
		return append([]string{e.Title, richtext.StripHTML(e.Content)}, e.Tags...)
	})
	filtered = filter.FilterByDateRange(filtered, c.Start, c.End, func(e journal.Entry) *time.Time {
		return &e.CreatedAt
	})
	filtered = filter.FilterByFacet(filtered, c.Tags, func(e journal.Entry) []string { return e.Tags })
	filtered = filter.FilterByScalarFacet(filtered, c.Moods, func(e journal.Entry) (int, bool) {
		if e.Mood == nil {
			return 0, false
		}
		return *e.Mood, true
	})

	groups := filter.GroupByMonth(filtered, func(e journal.Entry) time.Time { return e.CreatedAt })
	keys := filter.MonthKeys(groups)
	out := make([]MonthGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthGroup{Month: k, Entries: groups[k], Happiness: happiness(groups[k])})
	}
	return out
}

func happiness(entries []journal.Entry) *int {
	sum, n := 0, 0
	for _, e := range entries {
		if e.Mood != nil {
			sum += *e.Mood
			n++
		}
	}
	if n == 0 {
		return nil
	}
	pct := int(math.Round(float64(sum) / float64(n) / journal.MaxMood * 100))
	return &pct
}

// MonthLabel renders a YYYY-MM key as "January 2024".
func MonthLabel(key string) string {
	t, err := time.Parse(filter.MonthLayout, key)
	if err != nil {
		return key
	}
	return t.Month().String() + " " + strconv.Itoa(t.Year())
}
