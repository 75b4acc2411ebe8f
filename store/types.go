package store

import "time"

// Ref is one import reference recorded for a file.
type Ref struct {
	Module string
	Name   string
	Line   int
}

// ModuleUsage aggregates reference counts per module path.
type ModuleUsage struct {
	Module string
	Refs   int
}

// UnresolvedRef is a recorded reference with no successful resolution.
type UnresolvedRef struct {
	Path   string
	Line   int
	Module string
	Name   string
}

// LoadStat aggregates module load events.
type LoadStat struct {
	Module    string
	Loads     int
	AvgMicros int64
}

// Resolution is one recorded resolution event.
type Resolution struct {
	Module string
	Name   string
	OK     bool
	Error  string
	At     time.Time
}
