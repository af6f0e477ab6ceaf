package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelate(t *testing.T) {
	table := mustIngestCSV(t, "a,b,label,c,k\n1,2,x,3,5\n2,4,y,2,5\n3,6,z,1,5\n")

	m := Correlate(table)
	require.Equal(t, []string{"a", "b", "c", "k"}, m.Columns)

	for i := range m.Columns {
		assert.Equal(t, 1.0, m.At(i, i), "diagonal of %s", m.Columns[i])
		for j := range m.Columns {
			if i == j {
				continue
			}
			a, b := m.Values[i][j], m.Values[j][i]
			if a.IsNaN() {
				assert.True(t, b.IsNaN(), "symmetry at %d,%d", i, j)
			} else {
				assert.Equal(t, a, b, "symmetry at %d,%d", i, j)
			}
		}
	}
	assert.InDelta(t, 1.0, m.At(0, 1), 1e-12)
	assert.InDelta(t, -1.0, m.At(0, 2), 1e-12)
	assert.True(t, m.Values[0][3].IsNaN(), "constant column has no correlation")
}

func TestCorrelate_PairwiseComplete(t *testing.T) {
	table := mustIngestCSV(t, "a,b,c\n1,1,\n2,2,9\n3,3,\n4,100,\n")

	m := Correlate(table)
	// a and c share one row only
	assert.True(t, m.Values[0][2].IsNaN())
	assert.Less(t, m.At(0, 1), 1.0)
	assert.Greater(t, m.At(0, 1), 0.0)
}

func TestCorrelate_JSONEncodesNaNAsNull(t *testing.T) {
	table := mustIngestCSV(t, "a,b\n1,5\n2,5\n")
	data, err := json.Marshal(Correlate(table))
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["a","b"],"values":[[1,null],[null,1]]}`, string(data))
}
