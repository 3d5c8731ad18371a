// Package ordering computes placements inside a sort-order partition.
//
// A partition is the list of row ids sharing one (date, done, owner) key,
// ordered by their persisted sort_order field. The functions here are pure;
// persisting the result is the repository's repack concern, which rewrites
// sort orders to the 1-based positions of the returned slice.
package ordering

// Position states where the moving id lands relative to the target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// ValidPosition reports whether p is a known relative position.
func ValidPosition(p Position) bool {
	return p == Before || p == After
}

// PlaceRelative removes movingID from ids (when present) and re-inserts it
// relative to targetID. With no target, or a target missing from the list,
// the moving id is appended to the end. The input slice is not modified.
func PlaceRelative(ids []int64, movingID int64, targetID *int64, pos Position) []int64 {
	result := make([]int64, 0, len(ids)+1)
	for _, id := range ids {
		if id != movingID {
			result = append(result, id)
		}
	}

	if targetID == nil || *targetID == movingID {
		return append(result, movingID)
	}

	for i, id := range result {
		if id != *targetID {
			continue
		}
		at := i
		if pos != Before {
			at = i + 1
		}
		result = append(result, 0)
		copy(result[at+1:], result[at:])
		result[at] = movingID
		return result
	}

	return append(result, movingID)
}
