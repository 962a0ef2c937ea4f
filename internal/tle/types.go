package tle

import "time"

// Entry is a single satellite's two-line element set, plus the optional
// name line that precedes it in the 3-line catalog format.
type Entry struct {
	NoradID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// EpochRange is the span of element-set epochs in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Dataset is a complete element-set catalog from one fetch.
type Dataset struct {
	Source     string
	FetchedAt  time.Time
	EpochRange EpochRange
	Satellites []Entry
}

// ByNoradID builds a lookup table over the dataset's satellites. Later
// duplicates win, matching catalog files where a refreshed element set
// for the same object appears further down.
func (d *Dataset) ByNoradID() map[int]Entry {
	m := make(map[int]Entry, len(d.Satellites))
	for _, e := range d.Satellites {
		m[e.NoradID] = e
	}
	return m
}

// ComputeEpochRange scans the satellites and fills in EpochRange.
func (d *Dataset) ComputeEpochRange() {
	for i, e := range d.Satellites {
		if i == 0 || e.Epoch.Before(d.EpochRange.Min) {
			d.EpochRange.Min = e.Epoch
		}
		if i == 0 || e.Epoch.After(d.EpochRange.Max) {
			d.EpochRange.Max = e.Epoch
		}
	}
}
