package analytics

import "sort"

// CategoryCount is a raw (category, batch count) pair from the snapshot.
type CategoryCount struct {
	Category string
	Count    int64
}

// CategorySlice is one slice of the category distribution. Percentages carry
// one decimal place and always sum to exactly 100 for a non-empty input.
type CategorySlice struct {
	Category   string  `json:"category"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribute converts raw counts into percentage slices using the largest
// remainder method in tenths of a percent. Remainder ties go to the larger
// count, then to the lexicographically smaller category, so output is
// deterministic.
func Distribute(counts []CategoryCount) []CategorySlice {
	if len(counts) == 0 {
		return nil
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		out := make([]CategorySlice, len(counts))
		for i, c := range counts {
			out[i] = CategorySlice{Category: c.Category}
		}
		return out
	}

	type share struct {
		idx       int
		tenths    int64
		remainder int64
	}
	shares := make([]share, len(counts))
	var allocated int64
	for i, c := range counts {
		scaled := c.Count * 1000
		shares[i] = share{idx: i, tenths: scaled / total, remainder: scaled % total}
		allocated += scaled / total
	}
	leftover := int64(1000) - allocated
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		if counts[shares[i].idx].Count != counts[shares[j].idx].Count {
			return counts[shares[i].idx].Count > counts[shares[j].idx].Count
		}
		return counts[shares[i].idx].Category < counts[shares[j].idx].Category
	})
	for i := int64(0); i < leftover && int(i) < len(shares); i++ {
		shares[i].tenths++
	}

	out := make([]CategorySlice, len(counts))
	for _, s := range shares {
		c := counts[s.idx]
		out[s.idx] = CategorySlice{
			Category:   c.Category,
			Count:      c.Count,
			Percentage: float64(s.tenths) / 10,
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
