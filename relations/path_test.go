package relations

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_String(t *testing.T) {
	p := NewPath("A").Extend("is_a", "B").Extend("is_a", "C")

	assert.Equal(t, "A.is_a~B.is_a~C", p.String())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "A", p.Source())
	assert.Equal(t, "C", p.Terminal())
	assert.True(t, p.Contains("B"))
	assert.False(t, p.Contains("D"))

	assert.Equal(t, "A", NewPath("A").String())
	assert.Equal(t, "", Path{}.String())
}

func TestPath_ExtendCopies(t *testing.T) {
	base := NewPath("A").Extend("is_a", "B")
	left := base.Extend("is_a", "C")
	right := base.Extend("part_of", "D")

	assert.Equal(t, "A.is_a~B", base.String())
	assert.Equal(t, "A.is_a~B.is_a~C", left.String())
	assert.Equal(t, "A.is_a~B.part_of~D", right.String())
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
	}{
		{"", Path{}},
		{"A", Path{Terms: []string{"A"}, Relations: []string{}}},
		{"A.is_a~B.is_a~C", Path{Terms: []string{"A", "B", "C"}, Relations: []string{"is_a", "is_a"}}},
		{"UBERON:0001.5.part_of~GO:0005", Path{Terms: []string{"UBERON:0001.5", "GO:0005"}, Relations: []string{"part_of"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePath(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestPath_ZeroValue(t *testing.T) {
	var p Path
	assert.True(t, p.IsZero())
	assert.Equal(t, "", p.Source())
	assert.Equal(t, "", p.Terminal())
	assert.Zero(t, p.Len())
}

func TestPath_JSON(t *testing.T) {
	p := NewPath("A").Extend("part_of", "B")

	data, err := json.Marshal(struct {
		P Path `json:"p"`
	}{p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"A.part_of~B"}`, string(data))

	var back struct {
		P Path `json:"p"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back.P)
}
