package lsh

import "sort"

// DisjointSet is a union-find over sample IDs with union by rank and path compression
type DisjointSet struct {
	parent map[int]int
	rank   map[int]int
}

// NewDisjointSet creates an empty disjoint set
func NewDisjointSet() *DisjointSet {
	return &DisjointSet{
		parent: make(map[int]int),
		rank:   make(map[int]int),
	}
}

// Add inserts x as a singleton if it is not already present
func (d *DisjointSet) Add(x int) {
	if _, ok := d.parent[x]; !ok {
		d.parent[x] = x
		d.rank[x] = 0
	}
}

// Len returns the number of elements
func (d *DisjointSet) Len() int { return len(d.parent) }

// Find returns the representative of x, adding x if needed
func (d *DisjointSet) Find(x int) int {
	d.Add(x)
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	// compress
	for x != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing a and b. Returns false if they were already joined.
func (d *DisjointSet) Union(a, b int) bool {
	ra := d.Find(a)
	rb := d.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
	return true
}

// Components returns every set as a sorted slice, ordered by smallest member
func (d *DisjointSet) Components() [][]int {
	byRoot := make(map[int][]int)
	for x := range d.parent {
		r := d.Find(x)
		byRoot[r] = append(byRoot[r], x)
	}

	comps := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Ints(members)
		comps = append(comps, members)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
