package record

// Row is one normalized measurement: a single implementation, workload and
// mode.
type Row struct {
	Implementation string
	Workload       Workload
	Mode           Mode
	Elapsed        float64
	Workers        int
}

// Table is an immutable list of normalized rows.
type Table []Row

// Normalize flattens records into rows. A workload contributes rows only when
// the record carries both its serial and parallel timings, so every
// (implementation, workload) in the table has exactly one row per mode.
//
// Records are grouped by canonical implementation name; when the same name
// appears more than once the later record replaces the earlier one. Row order
// follows the first appearance of each name, then workload, then mode.
func Normalize(records []RunRecord) Table {
	var order []string
	latest := make(map[string]RunRecord, len(records))
	for _, rec := range records {
		name := CanonicalName(rec.Language)
		if _, seen := latest[name]; !seen {
			order = append(order, name)
		}
		latest[name] = rec
	}

	var table Table
	for _, name := range order {
		rec := latest[name]
		workers := rec.WorkerCount()
		for _, w := range Workloads {
			serial, okS := rec.Elapsed(w, Serial)
			par, okP := rec.Elapsed(w, Parallel)
			if !okS || !okP {
				continue
			}
			table = append(table,
				Row{Implementation: name, Workload: w, Mode: Serial, Elapsed: serial, Workers: workers},
				Row{Implementation: name, Workload: w, Mode: Parallel, Elapsed: par, Workers: workers},
			)
		}
	}
	return table
}

// Implementations returns the distinct implementation names in table order.
func (t Table) Implementations() []string {
	var names []string
	seen := make(map[string]bool)
	for _, row := range t {
		if !seen[row.Implementation] {
			seen[row.Implementation] = true
			names = append(names, row.Implementation)
		}
	}
	return names
}

// Lookup returns the row for an implementation/workload/mode triple.
func (t Table) Lookup(impl string, w Workload, m Mode) (Row, bool) {
	for _, row := range t {
		if row.Implementation == impl && row.Workload == w && row.Mode == m {
			return row, true
		}
	}
	return Row{}, false
}

// Filter returns the rows matching a workload and mode, in table order.
func (t Table) Filter(w Workload, m Mode) Table {
	var out Table
	for _, row := range t {
		if row.Workload == w && row.Mode == m {
			out = append(out, row)
		}
	}
	return out
}
