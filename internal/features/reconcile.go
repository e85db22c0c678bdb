package features

// Vector is a row aligned to a schema, one value per schema column.
type Vector struct {
	Schema *Schema
	Values []float64
}

// Get returns the value of a named column, or false when the schema lacks it.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := v.Schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.Values[i], true
}

// ReconcileReport lists what happened to each row column.
type ReconcileReport struct {
	Matched    []string
	Dropped    []string // not in the schema
	Duplicates []string // repeated names after the first occurrence
	ZeroFilled int      // schema columns the row did not provide
}

// Reconcile writes each row column into its schema slot. The first occurrence
// of a repeated name wins, columns the schema lacks are dropped and schema
// columns the row lacks stay zero. It never fails.
func Reconcile(row Row, schema *Schema) (Vector, ReconcileReport) {
	values := make([]float64, schema.Len())
	filled := make([]bool, schema.Len())
	seen := make(map[string]struct{}, len(row))
	var rep ReconcileReport

	for _, c := range row {
		if _, dup := seen[c.Name]; dup {
			rep.Duplicates = append(rep.Duplicates, c.Name)
			continue
		}
		seen[c.Name] = struct{}{}
		i, ok := schema.Index(c.Name)
		if !ok {
			rep.Dropped = append(rep.Dropped, c.Name)
			continue
		}
		values[i] = c.Value
		filled[i] = true
		rep.Matched = append(rep.Matched, c.Name)
	}
	for _, f := range filled {
		if !f {
			rep.ZeroFilled++
		}
	}
	return Vector{Schema: schema, Values: values}, rep
}
