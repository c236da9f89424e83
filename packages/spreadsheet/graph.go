package spreadsheet

// dependency edges live on the cells themselves: from.dependsOn[to] and
// to.dependents[from] are always added and removed together.

// addDependency adds a cell-to-cell dependency (from depends on to)
func addDependency(from, to *Cell) {
	from.dependsOn[to.address] = to
	to.dependents[from.address] = from
}

// removeDependency removes a cell-to-cell dependency
func removeDependency(from, to *Cell) {
	delete(from.dependsOn, to.address)
	delete(to.dependents, from.address)
}

// clearPrecedents removes every dependency of a cell, leaving the cells
// that depend on it untouched
func clearPrecedents(c *Cell) {
	for _, precedent := range c.dependsOn {
		delete(precedent.dependents, c.address)
	}
	c.dependsOn = make(map[CellAddress]*Cell)
}

// dependsTransitively reports whether target depends on start, directly or
// through other cells, i.e. target is reachable from start by following
// dependents
func dependsTransitively(start, target *Cell) bool {
	visited := make(map[CellAddress]struct{})
	return reachesViaDependents(start, target, visited)
}

func reachesViaDependents(current, target *Cell, visited map[CellAddress]struct{}) bool {
	if _, seen := visited[current.address]; seen {
		return false
	}
	visited[current.address] = struct{}{}

	for addr, dependent := range current.dependents {
		if addr == target.address {
			return true
		}
		if reachesViaDependents(dependent, target, visited) {
			return true
		}
	}
	return false
}

// sortedDependents snapshots the direct dependents of a cell, row-major
func sortedDependents(c *Cell) []*Cell {
	result := make([]*Cell, 0, len(c.dependents))
	for _, addr := range addressesOf(c.dependents) {
		result = append(result, c.dependents[addr])
	}
	return result
}

// allDependents returns all cells affected by this cell (transitive
// closure), row-major. the cell itself is included only when it sits on a
// cycle.
func allDependents(c *Cell) []CellAddress {
	visited := make(map[CellAddress]struct{})
	var result []CellAddress
	collectDependents(c, visited, &result)
	sortAddresses(result)
	return result
}

// collectDependents recursively collects all dependents
func collectDependents(c *Cell, visited map[CellAddress]struct{}, result *[]CellAddress) {
	for addr, dependent := range c.dependents {
		if _, seen := visited[addr]; seen {
			continue
		}
		visited[addr] = struct{}{}
		*result = append(*result, addr)
		collectDependents(dependent, visited, result)
	}
}
