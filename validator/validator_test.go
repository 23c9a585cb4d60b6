package validator

import "testing"

type opt struct {
	v   float64
	set bool
}

func (o opt) Float() (float64, bool) { return o.v, o.set }

type limits struct {
	A opt
	B opt
	C float64
	D int
	S string
}

func TestOrderValidator(t *testing.T) {
	ov := &OrderValidator{Fields: []string{"A", "B", "C", "D"}}

	cases := []struct {
		name    string
		data    interface{}
		wantErr bool
	}{
		{"ascending", limits{A: opt{1, true}, B: opt{2, true}, C: 3, D: 4}, false},
		{"equal", limits{A: opt{2, true}, B: opt{2, true}, C: 2, D: 2}, false},
		{"descending", limits{A: opt{5, true}, B: opt{2, true}, C: 3, D: 4}, true},
		{"unset_skipped", limits{A: opt{5, true}, B: opt{0, false}, C: 6, D: 7}, false},
		{"unset_still_compares_neighbours", limits{A: opt{5, true}, B: opt{0, false}, C: 1, D: 7}, true},
		{"pointer", &limits{A: opt{1, true}, B: opt{2, true}, C: 3, D: 4}, false},
		{"not_struct", 42, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ov.Validate(c.data)
			if c.wantErr && err == nil {
				t.Fatalf("expected error for %+v, got nil", c.data)
			}
			if !c.wantErr && err != nil {
				t.Fatalf("expected no error for %+v, got %v", c.data, err)
			}
		})
	}
}

func TestOrderValidatorBadField(t *testing.T) {
	if err := (&OrderValidator{Fields: []string{"Missing"}}).Validate(limits{}); err == nil {
		t.Fatal("expected error for missing field")
	}
	if err := (&OrderValidator{Fields: []string{"S"}}).Validate(limits{}); err == nil {
		t.Fatal("expected error for non-numeric field")
	}
}

func TestRangeValidator(t *testing.T) {
	rv := &RangeValidator{Field: "C", Min: 0, Max: 100}
	if err := rv.Validate(limits{C: 45}); err != nil {
		t.Fatalf("in range: %v", err)
	}
	if err := rv.Validate(limits{C: 101}); err == nil {
		t.Fatal("expected error above max")
	}
	if err := (&RangeValidator{Field: "B", Min: 0, Max: 1}).Validate(limits{}); err != nil {
		t.Fatalf("unset optional field should pass: %v", err)
	}
}
