package siege

// OwnerCount tallies one owner's cells. Alive never exceeds Territory.
type OwnerCount struct {
	Alive     int `json:"alive"`
	Territory int `json:"territory"`
}

// CountAlive returns the number of alive cells.
func CountAlive(grid Grid) int {
	n := 0
	for _, c := range grid {
		if c.Alive {
			n++
		}
	}
	return n
}

// CountByOwner tallies territory and alive cells per owner. Unclaimed cells
// (owner 0) are left out.
func CountByOwner(grid Grid) map[uint8]OwnerCount {
	counts := make(map[uint8]OwnerCount)
	for _, c := range grid {
		if c.Owner == 0 {
			continue
		}
		oc := counts[c.Owner]
		oc.Territory++
		if c.Alive {
			oc.Alive++
		}
		counts[c.Owner] = oc
	}
	return counts
}
