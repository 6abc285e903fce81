package fastpin

import (
	"fmt"
	"time"
)

// Filter selects items for display. Zero values mean "not filtered".
// Active filters compose conjunctively; Search alone matches disjunctively
// across text content, file name, and linked tag names.
type Filter struct {
	// Search is a case-insensitive substring matched against TextContent,
	// FileName, and any linked tag's name.
	Search string

	// Type restricts results to one item type.
	Type *ItemType

	// TagName restricts results to items linked to the named tag
	// (exact match).
	TagName string

	// Day restricts results to items created on that calendar day.
	Day *time.Time
}

// LabelSet is the formatting context for date-bucket labels. It is passed
// explicitly into grouping instead of reading process-wide locale state.
type LabelSet struct {
	Today     string
	Yesterday string
	ThisWeek  string
	ThisMonth string

	// MonthYear formats the month-year label for items from earlier this
	// calendar year, and Year the label for older items.
	MonthYear func(t time.Time) string
	Year      func(t time.Time) string
}

// EnglishLabels returns the default label set.
func EnglishLabels() LabelSet {
	return LabelSet{
		Today:     "Today",
		Yesterday: "Yesterday",
		ThisWeek:  "This Week",
		ThisMonth: "This Month",
		MonthYear: func(t time.Time) string { return t.Format("January 2006") },
		Year:      func(t time.Time) string { return fmt.Sprintf("%d", t.Year()) },
	}
}

// ItemGroup is one date bucket of a grouped query result.
type ItemGroup struct {
	Label string
	Items []*PinnedItem
}

// BucketLabel returns the date-bucket label for an item created at t,
// evaluated against now. Membership is computed fresh per query: the same
// item can move from Today to Yesterday between two reloads spanning
// midnight without any data mutation.
func BucketLabel(t, now time.Time, labels LabelSet) string {
	today := truncateToDay(now)
	day := truncateToDay(t)

	switch {
	case day.Equal(today):
		return labels.Today
	case day.Equal(today.AddDate(0, 0, -1)):
		return labels.Yesterday
	case t.After(today.AddDate(0, 0, -7)):
		return labels.ThisWeek
	case t.After(today.AddDate(0, 0, -30)):
		return labels.ThisMonth
	case t.Year() == now.Year():
		return labels.MonthYear(t)
	default:
		return labels.Year(t)
	}
}

// GroupByDate partitions items (already ordered by CreatedAt descending)
// into date buckets. Because input order is newest-first and buckets keep
// first-seen order, buckets come out ordered by each bucket's most recent
// member, descending.
func GroupByDate(items []*PinnedItem, now time.Time, labels LabelSet) []*ItemGroup {
	var groups []*ItemGroup
	index := make(map[string]*ItemGroup)

	for _, item := range items {
		label := BucketLabel(item.CreatedAt, now, labels)
		g, ok := index[label]
		if !ok {
			g = &ItemGroup{Label: label}
			index[label] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, item)
	}

	return groups
}

// truncateToDay drops the time-of-day component, keeping t's location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
