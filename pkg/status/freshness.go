package status

// Freshness classifies a published result against the repository's
// current local HEAD. The comparison is strict hash equality; an
// ancestor of HEAD is still stale, since the suite did not run against
// what is checked out now.
type Freshness int

const (
	FreshnessUnknown Freshness = iota
	Fresh
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Classify compares the commit hash recorded in a published result
// with the local HEAD.
func Classify(publishedHash, localHead string) Freshness {
	if publishedHash == "" || localHead == "" {
		return FreshnessUnknown
	}
	if publishedHash == localHead {
		return Fresh
	}
	return Stale
}
