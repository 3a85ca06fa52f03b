package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		minimum int64
		want    Level
	}{
		{"zero stock always critical", 0, 10, LevelCritical},
		{"zero stock zero minimum", 0, 0, LevelCritical},
		{"quarter boundary is critical", 5, 20, LevelCritical},
		{"just above quarter is low", 6, 20, LevelLow},
		{"half boundary is low", 5, 10, LevelLow},
		{"above half is medium", 6, 10, LevelMedium},
		{"just below minimum is medium", 9, 10, LevelMedium},
		{"at minimum is good", 10, 10, LevelGood},
		{"above minimum is good", 25, 10, LevelGood},
		{"zero minimum never divides by zero", 3, 0, LevelGood},
		{"one of one is good", 1, 1, LevelGood},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyStock(tc.current, tc.minimum))
		})
	}
}
