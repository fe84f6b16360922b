package util

import "github.com/sahilm/fuzzy"

// Rank returns the indexes of src entries matching input, best first, at
// most n of them (n <= 0 means all). An empty input ranks every entry in
// source order.
func Rank(input string, src fuzzy.Source, n int) []int {
	total := src.Len()
	if input == "" {
		if n <= 0 || n > total {
			n = total
		}
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.FindFrom(input, src)
	if n <= 0 || n > len(matches) {
		n = len(matches)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = matches[i].Index
	}
	return out
}
