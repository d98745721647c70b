package preview

import (
	"sort"
)

// Set is the time-aligned, cross-source regrouping of persisted
// records. Each tuple holds one record per eye, matched by ordinal
// position within the per-eye frame-sorted sequences, not by equal
// frame numbers: the eyes sample independently and skip different
// frame counts.
type Set [][]Record

// LoadAll scans dir, groups the parseable records by eye, sorts each
// group by frame number and zips the groups positionally. The result
// is truncated to the shortest eye's count. An empty or unrelated
// directory yields an empty Set, not an error.
func LoadAll(dir string) (Set, error) {
	records, err := DecodeAll(dir)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]Record)
	for _, record := range records {
		groups[record.Eye] = append(groups[record.Eye], record)
	}
	if len(groups) == 0 {
		return Set{}, nil
	}

	// Columns are ordered by ascending eye ID so the alignment is
	// deterministic regardless of arrival order.
	eyes := make([]int, 0, len(groups))
	for eye := range groups {
		eyes = append(eyes, eye)
	}
	sort.Ints(eyes)

	shortest := -1
	for _, eye := range eyes {
		group := groups[eye]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Frame < group[j].Frame
		})
		if shortest < 0 || len(group) < shortest {
			shortest = len(group)
		}
	}

	set := make(Set, 0, shortest)
	for i := 0; i < shortest; i++ {
		tuple := make([]Record, 0, len(eyes))
		for _, eye := range eyes {
			tuple = append(tuple, groups[eye][i])
		}
		set = append(set, tuple)
	}
	return set, nil
}
