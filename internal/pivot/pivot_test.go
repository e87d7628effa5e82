package pivot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildZeroFillsMissingPairs(t *testing.T) {
	got := Build([]Row{
		{Bucket: "2023", Series: "Alice", Count: 3},
		{Bucket: "2023", Series: "Bob", Count: 1},
		{Bucket: "2024", Series: "Alice", Count: 2},
	})

	assert.Equal(t, []string{"2023", "2024"}, got.Buckets)
	assert.Equal(t, []string{"Alice", "Bob"}, got.Series)
	assert.Equal(t, []SeriesData{
		{Name: "Alice", Data: []int64{3, 2}},
		{Name: "Bob", Data: []int64{1, 0}},
	}, got.Rows)
}

func TestBuildKeepsFirstSeenOrder(t *testing.T) {
	got := Build([]Row{
		{Bucket: "2024", Series: "Alice", Count: 2},
		{Bucket: "2023", Series: "Bob", Count: 1},
		{Bucket: "2023", Series: "Alice", Count: 3},
	})

	assert.Equal(t, []string{"2024", "2023"}, got.Buckets)
	assert.Equal(t, []string{"Alice", "Bob"}, got.Series)
	assert.Equal(t, []SeriesData{
		{Name: "Alice", Data: []int64{2, 3}},
		{Name: "Bob", Data: []int64{0, 1}},
	}, got.Rows)
}

func TestBuildEmptyInput(t *testing.T) {
	got := Build(nil)

	assert.Empty(t, got.Buckets)
	assert.Empty(t, got.Series)
	assert.Empty(t, got.Rows)
	assert.NotNil(t, got.Rows, "empty slices marshal as [] not null")
}

func TestBuildEveryRowHasOneEntryPerBucket(t *testing.T) {
	rows := []Row{
		{Bucket: "2022/01", Series: "call", Count: 1},
		{Bucket: "2022/02", Series: "meeting", Count: 4},
		{Bucket: "2022/03", Series: "email", Count: 7},
		{Bucket: "2022/03", Series: "call", Count: 2},
	}
	got := Build(rows)

	assert.Len(t, got.Buckets, 3)
	for _, r := range got.Rows {
		assert.Len(t, r.Data, len(got.Buckets), r.Name)
	}
	assert.Equal(t, []int64{1, 0, 2}, got.Rows[0].Data)
	assert.Equal(t, []int64{0, 4, 0}, got.Rows[1].Data)
	assert.Equal(t, []int64{0, 0, 7}, got.Rows[2].Data)
}
