package store

// Article is one cached image selection, keyed by the upstream feed item's
// guid. At most one record exists per guid.
type Article struct {
	GUID        string `json:"guid"`
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Articles is the imagefeed service's cache of selected images.
type Articles struct {
	file *File[Article]
}

// OpenArticles opens (and wipes) the article store at path.
func OpenArticles(path string) (*Articles, error) {
	f, err := Open[Article](path)
	if err != nil {
		return nil, err
	}
	return &Articles{file: f}, nil
}

// Get loads the full store and scans for guid.
func (s *Articles) Get(guid string) (Article, bool) {
	for _, a := range s.file.Load() {
		if a.GUID == guid {
			return a, true
		}
	}
	return Article{}, false
}

// Put upserts by guid: an existing record is updated in place, otherwise
// the record is appended, then the whole store is rewritten.
func (s *Articles) Put(a Article) error {
	records := s.file.Load()
	for i := range records {
		if records[i].GUID == a.GUID {
			records[i] = a
			return s.file.Save(records)
		}
	}
	return s.file.Save(append(records, a))
}
