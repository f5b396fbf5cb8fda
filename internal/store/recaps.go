package store

// Recap is one generated day summary for a source feed, keyed by
// (feed URL, day). ItemCount records how many items fed the summary so a
// later refresh can tell whether the day gained articles.
type Recap struct {
	Feed      string `json:"feed"`
	Day       string `json:"day"` // UTC, YYYY-MM-DD
	Summary   string `json:"summary"`
	ItemCount int    `json:"itemCount"`
}

// Recaps is the recapfeed service's per-feed recap store.
type Recaps struct {
	file *File[Recap]
}

// OpenRecaps opens (and wipes) the recap store at path.
func OpenRecaps(path string) (*Recaps, error) {
	f, err := Open[Recap](path)
	if err != nil {
		return nil, err
	}
	return &Recaps{file: f}, nil
}

// Get loads the full store and scans for (feed, day).
func (s *Recaps) Get(feed, day string) (Recap, bool) {
	for _, r := range s.file.Load() {
		if r.Feed == feed && r.Day == day {
			return r, true
		}
	}
	return Recap{}, false
}

// Put upserts by (feed, day).
func (s *Recaps) Put(r Recap) error {
	records := s.file.Load()
	for i := range records {
		if records[i].Feed == r.Feed && records[i].Day == r.Day {
			records[i] = r
			return s.file.Save(records)
		}
	}
	return s.file.Save(append(records, r))
}
