package img2cell

import "sync"

// cellSize keys calibrations: coverage depends only on the font and the
// cell's pixel dimensions.
type cellSize struct {
	width, height int
}

// calibration is a rendered sheet and the coverage measured from it.
type calibration struct {
	sheet *CalibrationSheet
	table *CoverageTable
}

// coverageCache holds one calibration per cell size. It is safe for
// concurrent use; a miss builds the calibration while holding the lock,
// so concurrent conversions at the same size calibrate once.
type coverageCache struct {
	mu      sync.Mutex
	entries map[cellSize]calibration
	build   func(width, height int) (calibration, error)
	hits    int
	misses  int
}

func newCoverageCache(build func(width, height int) (calibration, error)) *coverageCache {
	return &coverageCache{
		entries: make(map[cellSize]calibration),
		build:   build,
	}
}

// get returns the calibration for the cell size, building it on a miss.
// Failed builds are not cached.
func (c *coverageCache) get(width, height int) (calibration, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cellSize{width, height}
	if cal, ok := c.entries[key]; ok {
		c.hits++
		return cal, true, nil
	}
	c.misses++
	cal, err := c.build(width, height)
	if err != nil {
		return calibration{}, false, err
	}
	c.entries[key] = cal
	return cal, false, nil
}

// put stores a calibration under its own cell size.
func (c *coverageCache) put(cal calibration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cellSize{cal.table.CellWidth, cal.table.CellHeight}] = cal
}

// reset drops every calibration and the counters.
func (c *coverageCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cellSize]calibration)
	c.hits, c.misses = 0, 0
}

func (c *coverageCache) stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
