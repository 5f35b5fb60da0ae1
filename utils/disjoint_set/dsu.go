package disjoint_set

// DSU represents a Disjoint Set Union data structure over dense integer
// elements. It is not safe for concurrent use.
type DSU = dsu

type dsu struct {
	root []int
	rank []int
}

// NewDSU creates a new DSU holding size singleton sets, numbered 0..size-1.
func NewDSU(size int) *dsu {
	d := &dsu{
		root: make([]int, size),
		rank: make([]int, size),
	}
	for i := range d.root {
		d.root[i] = i
	}
	return d
}

// find returns the root of the set containing x
func (d *dsu) find(x int) int {
	for d.root[x] != x {
		d.root[x] = d.root[d.root[x]] // Path halving
		x = d.root[x]
	}
	return x
}

// Union merges the sets containing x and y
func (d *dsu) Union(x int, y int) {
	rootX := d.find(x)
	rootY := d.find(y)

	if rootX == rootY {
		return
	}

	if d.rank[rootX] > d.rank[rootY] {
		d.root[rootY] = rootX
	} else if d.rank[rootX] < d.rank[rootY] {
		d.root[rootX] = rootY
	} else {
		d.root[rootY] = rootX
		d.rank[rootX]++
	}
}

// CountSets returns the number of disjoint sets in the DSU
func (d *dsu) CountSets() int {
	count := 0
	for i := range d.root {
		if d.find(i) == i {
			count++
		}
	}
	return count
}

// Sets returns every disjoint set as a list of its elements. Sets are ordered
// by their smallest element and elements within a set are ascending.
func (d *dsu) Sets() [][]int {
	position := make(map[int]int)
	sets := make([][]int, 0)
	for i := range d.root {
		r := d.find(i)
		idx, ok := position[r]
		if !ok {
			idx = len(sets)
			position[r] = idx
			sets = append(sets, nil)
		}
		sets[idx] = append(sets[idx], i)
	}
	return sets
}
