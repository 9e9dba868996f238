package analyzer

import (
	"sort"
	"strings"

	"github.com/OrPerets/proctorscan/internal/model"
)

// SharedIPs cross-references the IP index and returns one row per IP
// used by more than one distinct canonical student key.
//
// Rows are ordered by descending student count, then by IP string as a
// deterministic tie-break. The student sample is sorted lexicographically
// and capped; relying on map iteration order here would make the sample
// flap between otherwise identical runs.
func (a *Analyzer) SharedIPs(index model.IPIndex) []model.SharedIPRow {
	rows := make([]model.SharedIPRow, 0)
	for ip := range index {
		count := index.StudentCount(ip)
		if count <= 1 {
			continue
		}

		students := index.Students(ip)
		sort.Strings(students)
		if len(students) > a.sampleStudents {
			students = students[:a.sampleStudents]
		}

		rows = append(rows, model.SharedIPRow{
			ClientIP:       ip,
			NumStudents:    count,
			StudentsSample: strings.Join(students, ", "),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NumStudents != rows[j].NumStudents {
			return rows[i].NumStudents > rows[j].NumStudents
		}
		return rows[i].ClientIP < rows[j].ClientIP
	})
	return rows
}
