package incident

// View provides read-only indexed access to incidents. The filter engine
// and aggregator only ever read through this interface.
type View interface {
	Len() int
	Value(index int, col string) (string, bool)
	Recovered(index int) int
	HasColumn(col string) bool
}

// Dataset is the loaded incident table. It is treated as immutable once
// EnsureRecovered01 has run.
type Dataset struct {
	columns []string
	colSet  map[string]bool
	records []Record
	derived bool
}

// NewDataset wraps records with their column header. Columns are kept in
// the given order; duplicates are dropped.
func NewDataset(columns []string, records []Record) *Dataset {
	d := &Dataset{colSet: make(map[string]bool, len(columns))}
	for _, c := range columns {
		if c == "" || d.colSet[c] {
			continue
		}
		d.colSet[c] = true
		d.columns = append(d.columns, c)
	}
	d.records = records
	return d
}

// EnsureRecovered01 populates the derived Recovered01 flag on every record.
// A dataset that already carries a Recovered01 column keeps its stored
// values. Subsequent calls are no-ops.
func (d *Dataset) EnsureRecovered01() error {
	if d.derived {
		return nil
	}

	switch {
	case d.colSet[ColRecovered01]:
		for i := range d.records {
			d.records[i].Recovered01 = parseFlag(d.records[i].Value(ColRecovered01))
		}
	case d.colSet[ColRecovered]:
		for i := range d.records {
			d.records[i].Recovered01 = RecoveredFlag(d.records[i].Value(ColRecovered))
		}
		d.colSet[ColRecovered01] = true
		d.columns = append(d.columns, ColRecovered01)
	default:
		return &MissingColumnError{Column: ColRecovered}
	}

	d.derived = true
	return nil
}

// Derived reports whether Recovered01 is available on every record.
func (d *Dataset) Derived() bool { return d.derived }

// Columns returns the dataset header.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Record returns a copy of the record at i.
func (d *Dataset) Record(i int) Record { return d.records[i] }

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Value(i int, col string) (string, bool) {
	if i < 0 || i >= len(d.records) {
		return "", false
	}
	return d.records[i].Value(col)
}

func (d *Dataset) Recovered(i int) int {
	if i < 0 || i >= len(d.records) {
		return 0
	}
	return d.records[i].Recovered01
}

func (d *Dataset) HasColumn(col string) bool { return d.colSet[col] }

// SubView is a subset of a parent view held as indices into it.
type SubView struct {
	parent  View
	indices []int
}

// NewSubView returns the records of parent at the given indices.
func NewSubView(parent View, indices []int) *SubView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, col string) (string, bool) {
	if i < 0 || i >= len(v.indices) {
		return "", false
	}
	return v.parent.Value(v.indices[i], col)
}

func (v *SubView) Recovered(i int) int {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Recovered(v.indices[i])
}

func (v *SubView) HasColumn(col string) bool { return v.parent.HasColumn(col) }
