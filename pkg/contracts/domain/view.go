package domain

// Prompts shown in place of an empty chart or table
const (
	PromptSelectYears       = "Select one or more years."
	PromptSelectChartFruits = "Select fruits to display in the chart."
	PromptSelectTableFruits = "Select fruits to display in the table."
)

// DashboardView is everything the view layer needs to render one screen
type DashboardView struct {
	Mode            Mode      `json:"mode"`
	AvailableYears  []int     `json:"available_years"`
	SelectedYears   []int     `json:"selected_years"`
	AvailableFruits []string  `json:"available_fruits"`
	ChartFruits     []string  `json:"chart_fruits"`
	TableFruits     []string  `json:"table_fruits"`
	Chart           ChartView `json:"chart"`
	Table           TableView `json:"table"`
}

// ChartView holds one line-chart panel per distinct year
type ChartView struct {
	Panels []YearPanel `json:"panels"`
	Empty  bool        `json:"empty"`
	Prompt string      `json:"prompt,omitempty"`
}

// YearPanel is a single chart panel: x = month, y = quantity, one line per fruit
type YearPanel struct {
	Year   int           `json:"year"`
	Series []FruitSeries `json:"series"`
}

// FruitSeries is one line of a panel
type FruitSeries struct {
	Fruit  string  `json:"fruit"`
	Points []Point `json:"points"`
}

// Point is a single month/quantity pair
type Point struct {
	Month    int `json:"month"`
	Quantity int `json:"y"`
}

// TableView is the flat detail table
type TableView struct {
	Rows   []TableRow `json:"rows"`
	Empty  bool       `json:"empty"`
	Prompt string     `json:"prompt,omitempty"`
}

// TableRow mirrors the table columns: year, month, fruit type, quantity
type TableRow struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	FruitType string `json:"fruit_type"`
	Quantity  int    `json:"quantity"`
}
