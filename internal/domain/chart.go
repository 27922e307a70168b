package domain

type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Color  string    `json:"color"`
	Dashed bool      `json:"dashed,omitempty"`
}

// ChartData is aligned index-for-index: every dataset has one value per label.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}
