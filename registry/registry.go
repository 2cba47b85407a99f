// Package registry maintains the asset/pool graph a search operates over,
// using slice-backed adjacency data with index-based references.
package registry

import (
	"sort"

	"github.com/arbsim/arbsim-go/pool"
)

// View is an immutable snapshot of the graph's core data structures, for
// consumers who want to run their own traversal or report on the search
// space. Indices in Adjacency point into EdgeTargets/EdgePools; EdgeTargets
// holds asset indices and EdgePools holds pool indices.
type View struct {
	Assets      []string `json:"assets"`
	Pools       []string `json:"pools"`
	Adjacency   [][]int  `json:"adjacency"`
	EdgeTargets []int    `json:"edgeTargets"`
	EdgePools   [][]int  `json:"edgePools"`
}

// Registry is a non-thread-safe graph of assets connected by pools. It is
// built once from a fixed pool set and then only read; there is no
// incremental removal.
type Registry struct {
	assetToIndex map[string]int
	poolToIndex  map[*pool.Pool]int

	assets      []string
	pools       []*pool.Pool
	adjacency   [][]int
	edgeTargets []int
	edgePools   [][]int
}

// NewRegistry builds the graph for the given pools: every pair of assets
// inside one pool becomes a bidirectional edge carrying that pool.
func NewRegistry(pools []*pool.Pool) *Registry {
	r := &Registry{
		assetToIndex: make(map[string]int),
		poolToIndex:  make(map[*pool.Pool]int, len(pools)),
	}
	for _, p := range pools {
		r.add(p)
	}
	return r
}

// add connects all assets of the pool into a clique.
func (r *Registry) add(p *pool.Pool) {
	assets := p.Assets()
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			r.addEdge(assets[i], assets[j], p)
			r.addEdge(assets[j], assets[i], p)
		}
	}
}

// addEdge creates or updates a directed edge from one asset to another,
// associating it with the given pool.
func (r *Registry) addEdge(from, to string, p *pool.Pool) {
	fromIndex, exists := r.assetToIndex[from]
	if !exists {
		fromIndex = len(r.assets)
		r.assets = append(r.assets, from)
		r.assetToIndex[from] = fromIndex
		r.adjacency = append(r.adjacency, nil)
	}
	toIndex, exists := r.assetToIndex[to]
	if !exists {
		toIndex = len(r.assets)
		r.assets = append(r.assets, to)
		r.assetToIndex[to] = toIndex
		r.adjacency = append(r.adjacency, nil)
	}
	poolIndex, exists := r.poolToIndex[p]
	if !exists {
		poolIndex = len(r.pools)
		r.pools = append(r.pools, p)
		r.poolToIndex[p] = poolIndex
	}

	// Reuse an existing edge between the two assets if there is one.
	for _, edgeIndex := range r.adjacency[fromIndex] {
		if r.edgeTargets[edgeIndex] == toIndex {
			for _, existing := range r.edgePools[edgeIndex] {
				if existing == poolIndex {
					return
				}
			}
			r.edgePools[edgeIndex] = append(r.edgePools[edgeIndex], poolIndex)
			return
		}
	}

	newEdgeIndex := len(r.edgeTargets)
	r.edgeTargets = append(r.edgeTargets, toIndex)
	r.edgePools = append(r.edgePools, []int{poolIndex})
	r.adjacency[fromIndex] = append(r.adjacency[fromIndex], newEdgeIndex)
}

// PoolsForAsset returns the pools reachable from the asset, sorted by name.
func (r *Registry) PoolsForAsset(asset string) []*pool.Pool {
	assetIndex, ok := r.assetToIndex[asset]
	if !ok {
		return nil
	}

	unique := make(map[int]struct{})
	for _, edgeIndex := range r.adjacency[assetIndex] {
		for _, poolIndex := range r.edgePools[edgeIndex] {
			unique[poolIndex] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return nil
	}

	pools := make([]*pool.Pool, 0, len(unique))
	for poolIndex := range unique {
		pools = append(pools, r.pools[poolIndex])
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Name() < pools[j].Name() })
	return pools
}

// NeighborsOf returns the assets directly exchangeable with the given asset.
func (r *Registry) NeighborsOf(asset string) []string {
	assetIndex, ok := r.assetToIndex[asset]
	if !ok {
		return nil
	}
	neighbors := make([]string, 0, len(r.adjacency[assetIndex]))
	for _, edgeIndex := range r.adjacency[assetIndex] {
		neighbors = append(neighbors, r.assets[r.edgeTargets[edgeIndex]])
	}
	sort.Strings(neighbors)
	return neighbors
}

// Assets returns all known assets in insertion order.
func (r *Registry) Assets() []string {
	return append([]string(nil), r.assets...)
}

// View returns a deep-copied snapshot of the graph.
func (r *Registry) View() *View {
	poolNames := make([]string, len(r.pools))
	for i, p := range r.pools {
		poolNames[i] = p.Name()
	}

	adjacency := make([][]int, len(r.adjacency))
	for i, edges := range r.adjacency {
		adjacency[i] = append([]int(nil), edges...)
	}
	edgePools := make([][]int, len(r.edgePools))
	for i, pools := range r.edgePools {
		edgePools[i] = append([]int(nil), pools...)
	}

	return &View{
		Assets:      append([]string(nil), r.assets...),
		Pools:       poolNames,
		Adjacency:   adjacency,
		EdgeTargets: append([]int(nil), r.edgeTargets...),
		EdgePools:   edgePools,
	}
}
