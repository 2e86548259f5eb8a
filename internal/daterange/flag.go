package daterange

import "github.com/spf13/pflag"

// Value adapts a DateRange for use as a command-line flag. The zero value
// holds All().
type Value struct {
	r   DateRange
	set bool
}

var _ pflag.Value = (*Value)(nil)

// Range returns the parsed range, or All() if the flag was never set.
func (v *Value) Range() DateRange {
	if v == nil || !v.set {
		return All()
	}
	return v.r
}

// IsSet reports whether the flag was supplied.
func (v *Value) IsSet() bool {
	return v != nil && v.set
}

func (v *Value) String() string {
	if v == nil || !v.set {
		return ""
	}
	return v.r.String()
}

func (v *Value) Set(text string) error {
	r, err := Parse(text)
	if err != nil {
		return err
	}
	v.r = r
	v.set = true
	return nil
}

func (v *Value) Type() string {
	return "MM-DD[..MM-DD]"
}
