package types

import "time"

// WorldCO2Row is one element of the emissions payload as it arrives on the wire.
type WorldCO2Row struct {
	Date                  string  `json:"date"`
	DomesticAviation      float64 `json:"domestic_aviation"`
	GroundTransport       float64 `json:"ground_transport"`
	Industry              float64 `json:"industry"`
	InternationalAviation float64 `json:"international_aviation"`
	Power                 float64 `json:"power"`
	Residential           float64 `json:"residential"`
	Total                 float64 `json:"total"`
}

// Sectors holds the per-sector breakdown of a day's emissions.
type Sectors struct {
	DomesticAviation      float64 `json:"domestic_aviation"`
	GroundTransport       float64 `json:"ground_transport"`
	Industry              float64 `json:"industry"`
	InternationalAviation float64 `json:"international_aviation"`
	Power                 float64 `json:"power"`
	Residential           float64 `json:"residential"`
}

// DailyRecord is a parsed row. Date is midnight UTC.
type DailyRecord struct {
	Date    time.Time `json:"date"`
	Total   float64   `json:"total"`
	Sectors Sectors   `json:"sectors"`
}

// YearGroup is a contiguous run of records sharing one calendar year.
type YearGroup struct {
	Year int           `json:"year"`
	Data []DailyRecord `json:"data"`
}

// Tooltip describes the sample closest to the pointer and where it sits on the chart.
type Tooltip struct {
	Year  int     `json:"year"`
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}
