package statistics

import (
	"sort"
	"strconv"
	"strings"
)

// ResolvePlanFilter turns a plan selection into the ids to filter on. It
// returns nil, meaning no filter, when nothing is selected, when the
// selection covers every known plan, or when none of the selected ids exist.
func ResolvePlanFilter(selected, known []int64) []int64 {
	if len(selected) == 0 {
		return nil
	}

	knownSet := make(map[int64]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(selected))
	var ids []int64
	for _, id := range selected {
		if _, ok := knownSet[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 || len(ids) == len(knownSet) {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ParsePlanIDs reads repeated or comma separated plan ids, skipping junk.
func ParsePlanIDs(values []string) []int64 {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func planFilterKey(ids []int64) string {
	if len(ids) == 0 {
		return "all"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
