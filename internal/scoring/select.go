package scoring

import (
	"sort"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// Sorted returns the assessments ordered for selection: recency date
// descending, insertion sequence descending on ties. The recency date is
// the effective date, falling back to the raw assessment date and then the
// insertion time (see Assessment.SortDate). The input slice is not
// modified.
func Sorted(rows []models.Assessment) []models.Assessment {
	ordered := make([]models.Assessment, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].SortDate(), ordered[j].SortDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return ordered[i].EnteredSeq > ordered[j].EnteredSeq
	})
	return ordered
}

// Qualifying filters to rows usable for scoring: non-draft with a non-nil
// normalized score. Unscored rows never qualify, so a missing score can
// never masquerade as zero.
func Qualifying(rows []models.Assessment) []models.Assessment {
	out := make([]models.Assessment, 0, len(rows))
	for _, row := range rows {
		if row.IsDraft || row.ScoreNormalized == nil {
			continue
		}
		out = append(out, row)
	}
	return out
}

// SelectCurrent picks the single authoritative assessment among rows: the
// maximum (recency date, insertion sequence) key over qualifying rows.
// ok is false when no row qualifies, which callers must surface as
// "no current score" rather than a synthetic zero.
func SelectCurrent(rows []models.Assessment) (models.Assessment, bool) {
	qualifying := Qualifying(rows)
	if len(qualifying) == 0 {
		return models.Assessment{}, false
	}
	return Sorted(qualifying)[0], true
}
