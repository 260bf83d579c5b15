package quota

import "testing"

func TestCheck(t *testing.T) {
	cases := []struct {
		usage     Usage
		allowed   bool
		remaining int
		state     State
	}{
		{Usage{Used: 10, Limit: 10}, false, 0, StateExhausted},
		{Usage{Used: 9, Limit: 10}, true, 1, StateAvailable},
		{Usage{Used: 0, Limit: 10}, true, 10, StateAvailable},
		{Usage{Used: 12, Limit: 10}, false, 0, StateExhausted},
	}
	for _, tc := range cases {
		got := Check(tc.usage)
		if got.Allowed != tc.allowed || got.Remaining != tc.remaining || got.State != tc.state {
			t.Fatalf("Check(%+v) = %+v", tc.usage, got)
		}
	}
}
