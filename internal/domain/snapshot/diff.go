package snapshot

import "dnsmonitor/internal/domain/dnsrecord"

// Modification pairs a previous record with the current record replacing it.
type Modification struct {
	Previous dnsrecord.Record
	Current  dnsrecord.Record
}

// Changes is the detailed classification of a comparison.
type Changes struct {
	Added     []dnsrecord.Record
	Removed   []dnsrecord.Record
	Modified  []Modification
	Unchanged int
}

// Summary counts the classified records.
func (c Changes) Summary() ChangeSummary {
	return NewChangeSummary(len(c.Added), len(c.Removed), len(c.Modified))
}

// Compare classifies current against previous.
//
// Records are matched by canonical key first. A matched pair whose fields
// differ (TTL aside) is a modification. The records left over on each side
// are then paired by owner name and type, in order, so a record whose value
// changed in place counts as one modification rather than an addition plus a
// removal. Whatever stays unpaired is added or removed.
//
// An empty previous set is a baseline, not a change, and yields no changes.
// When a key occurs more than once on one side the first occurrence wins.
func Compare(current, previous []dnsrecord.Record) Changes {
	var changes Changes
	if len(previous) == 0 {
		return changes
	}

	prevByKey := make(map[string]dnsrecord.Record, len(previous))
	for _, r := range previous {
		key := dnsrecord.CanonicalKey(r)
		if _, ok := prevByKey[key]; !ok {
			prevByKey[key] = r
		}
	}

	currentKeys := make(map[string]bool, len(current))
	var added []dnsrecord.Record
	for _, r := range current {
		key := dnsrecord.CanonicalKey(r)
		if currentKeys[key] {
			continue
		}
		currentKeys[key] = true

		prev, ok := prevByKey[key]
		switch {
		case !ok:
			added = append(added, r)
		case !dnsrecord.Equal(prev, r):
			changes.Modified = append(changes.Modified, Modification{Previous: prev, Current: r})
		default:
			changes.Unchanged++
		}
	}

	// Removal candidates queued per slot, in previous order.
	var removed []dnsrecord.Record
	slots := make(map[string][]int)
	seen := make(map[string]bool, len(previous))
	for _, r := range previous {
		key := dnsrecord.CanonicalKey(r)
		if currentKeys[key] || seen[key] {
			continue
		}
		seen[key] = true
		slot := dnsrecord.SlotKey(r)
		slots[slot] = append(slots[slot], len(removed))
		removed = append(removed, r)
	}

	paired := make([]bool, len(removed))
	for _, r := range added {
		slot := dnsrecord.SlotKey(r)
		queue := slots[slot]
		if len(queue) == 0 {
			changes.Added = append(changes.Added, r)
			continue
		}
		i := queue[0]
		slots[slot] = queue[1:]
		paired[i] = true
		changes.Modified = append(changes.Modified, Modification{Previous: removed[i], Current: r})
	}
	for i, r := range removed {
		if !paired[i] {
			changes.Removed = append(changes.Removed, r)
		}
	}

	return changes
}

// Diff returns the change counts of current relative to previous.
func Diff(current, previous []dnsrecord.Record) ChangeSummary {
	return Compare(current, previous).Summary()
}
