package series

// Value is an explicit tri-state for derived quantities: either a defined
// float64 or "no data". Missing history must never silently decay to zero,
// since a zero flips comparison outcomes downstream.
type Value struct {
	num     float64
	defined bool
}

// Of wraps a defined numeric value
func Of(f float64) Value {
	return Value{num: f, defined: true}
}

// NoData returns the undefined value
func NoData() Value {
	return Value{}
}

// Defined reports whether the value carries a number
func (v Value) Defined() bool {
	return v.defined
}

// Float returns the numeric value and whether it is defined
func (v Value) Float() (float64, bool) {
	return v.num, v.defined
}

// MustFloat returns the numeric value, panicking if undefined.
// Callers must check Defined first; this exists for test convenience.
func (v Value) MustFloat() float64 {
	if !v.defined {
		panic("series: MustFloat on no-data value")
	}
	return v.num
}
