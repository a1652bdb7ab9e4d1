package model

// FileMetadata is the descriptive metadata derived for a single file.
// Instances are replaced wholesale on re-extraction, never mutated.
type FileMetadata struct {
	Title      string   `json:"title"`
	Date       string   `json:"date"` // ISO-8601 calendar date, e.g. "2024-03-15"
	Department string   `json:"department"`
	Tags       []string `json:"tags"`
}

// MetadataSet maps file names to their FileMetadata while remembering the
// order names were first added. Go maps are unordered, and the aggregation
// rules below depend on first-seen order, so the set carries it explicitly.
type MetadataSet struct {
	names  []string
	byName map[string]FileMetadata
}

// NewMetadataSet returns an empty set.
func NewMetadataSet() *MetadataSet {
	return &MetadataSet{byName: make(map[string]FileMetadata)}
}

// Put stores metadata for a file name. Re-adding an existing name replaces
// the entry but keeps its original position (last write wins).
func (s *MetadataSet) Put(name string, md FileMetadata) {
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = md
}

// Get returns the metadata stored for name.
func (s *MetadataSet) Get(name string) (FileMetadata, bool) {
	md, ok := s.byName[name]
	return md, ok
}

// Len returns the number of entries.
func (s *MetadataSet) Len() int {
	return len(s.names)
}

// Names returns the file names in first-seen order.
func (s *MetadataSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// DateRange bounds the dates seen across a batch. Both bounds are nil when
// no file supplied a date.
type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// MetadataSummary is a derived, batch-level view over a MetadataSet.
// It is recomputed on demand and never persisted on its own.
type MetadataSummary struct {
	TotalFiles          int       `json:"totalFiles"`
	DepartmentsDetected []string  `json:"departmentsDetected"`
	AllTags             []string  `json:"allTags"`
	DateRange           DateRange `json:"dateRange"`
}
