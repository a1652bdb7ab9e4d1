package ingest

import "dochub/internal/model"

// Summarize folds per-file metadata into a batch summary. It is a pure
// function over the set: distinct non-empty departments and distinct tags in
// first-seen order, and the lexicographic min/max of the ISO dates (valid
// because the format is fixed-width and zero-padded). Missing departments,
// tags and dates are tolerated; the date bounds stay nil when no file
// supplied a date.
func Summarize(set *model.MetadataSet) model.MetadataSummary {
	summary := model.MetadataSummary{
		DepartmentsDetected: []string{},
		AllTags:             []string{},
	}
	if set == nil {
		return summary
	}
	summary.TotalFiles = set.Len()

	seenDept := make(map[string]struct{})
	seenTag := make(map[string]struct{})

	for _, name := range set.Names() {
		md, _ := set.Get(name)

		if md.Department != "" {
			if _, ok := seenDept[md.Department]; !ok {
				seenDept[md.Department] = struct{}{}
				summary.DepartmentsDetected = append(summary.DepartmentsDetected, md.Department)
			}
		}

		for _, tag := range md.Tags {
			if _, ok := seenTag[tag]; !ok {
				seenTag[tag] = struct{}{}
				summary.AllTags = append(summary.AllTags, tag)
			}
		}

		if md.Date == "" {
			continue
		}
		date := md.Date
		if summary.DateRange.Earliest == nil || date < *summary.DateRange.Earliest {
			summary.DateRange.Earliest = &date
		}
		if summary.DateRange.Latest == nil || date > *summary.DateRange.Latest {
			summary.DateRange.Latest = &date
		}
	}

	return summary
}
