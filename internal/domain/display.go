package domain

import "time"

// DisplayState holds one value per on-screen label, always rebuilt from a full WeatherResponse
type DisplayState struct {
	Country         string `json:"country"`
	DateTime        string `json:"date_time"`
	Status          string `json:"status"`
	Temperature     string `json:"temperature"`
	MinTemperature  string `json:"min_temperature"`
	MaxTemperature  string `json:"max_temperature"`
	Sunrise         string `json:"sunrise"`
	Sunset          string `json:"sunset"`
	WindSpeed       string `json:"wind_speed"`
	Humidity        string `json:"humidity"`
	Pressure        string `json:"pressure"`
	MoreInfo        string `json:"more_info"`
	MoreInfoEnabled bool   `json:"more_info_enabled"`
}

// MoreInfoTitle is the title of the detail dialog
const MoreInfoTitle = "More Info"

// Observation is a rendered flow result, used only by the opt-in history store
type Observation struct {
	FlowID     string       `json:"flow_id"`
	Coordinate Coordinate   `json:"coordinate"`
	City       string       `json:"city"`
	Display    DisplayState `json:"display"`
	Dt         int64        `json:"dt"`
	ObservedAt time.Time    `json:"observed_at"`
}

// HistoryResponse wraps observation history with metadata
type HistoryResponse struct {
	Data    []Observation `json:"data"`
	Count   int           `json:"count"`
	Success bool          `json:"success"`
}

// WeatherDisplayResponse wraps a rendered display state with metadata
type WeatherDisplayResponse struct {
	Data    DisplayState `json:"data"`
	FlowID  string       `json:"flow_id"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
}
