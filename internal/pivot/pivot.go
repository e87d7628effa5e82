// Package pivot turns grouped (bucket, series, count) rows into dense reporting matrices.
package pivot

// Row 一条分组统计结果
type Row struct {
	Bucket string
	Series string
	Count  int64
}

// SeriesData 单个序列在各 bucket 上的取值，Data 与 Matrix.Buckets 按位置对齐
type SeriesData struct {
	Name string  `json:"name"`
	Data []int64 `json:"data"`
}

// Matrix 稠密矩阵
type Matrix struct {
	Buckets []string     `json:"buckets"`
	Series  []string     `json:"series"`
	Rows    []SeriesData `json:"rows"`
}

type cell struct {
	bucket string
	series string
}

// Build 按首次出现顺序收集 bucket 与 series（不重新排序），缺失组合补 0。
// 输入顺序由上游查询决定；同一 (bucket, series) 多次出现时以最后一次为准。
func Build(rows []Row) Matrix {
	m := Matrix{
		Buckets: []string{},
		Series:  []string{},
		Rows:    []SeriesData{},
	}
	seenBucket := make(map[string]struct{}, len(rows))
	seenSeries := make(map[string]struct{}, len(rows))
	counts := make(map[cell]int64, len(rows))

	for _, r := range rows {
		if _, ok := seenBucket[r.Bucket]; !ok {
			seenBucket[r.Bucket] = struct{}{}
			m.Buckets = append(m.Buckets, r.Bucket)
		}
		if _, ok := seenSeries[r.Series]; !ok {
			seenSeries[r.Series] = struct{}{}
			m.Series = append(m.Series, r.Series)
		}
		counts[cell{r.Bucket, r.Series}] = r.Count
	}

	for _, s := range m.Series {
		data := make([]int64, len(m.Buckets))
		for i, b := range m.Buckets {
			data[i] = counts[cell{b, s}]
		}
		m.Rows = append(m.Rows, SeriesData{Name: s, Data: data})
	}
	return m
}
