package aggregate

import "hash/fnv"

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ColorAt returns the palette color for the i-th series.
func ColorAt(i int) string {
	return palette[i%len(palette)]
}

// ColorFor returns a color derived from the label alone.
func ColorFor(label string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return palette[h.Sum32()%uint32(len(palette))]
}
