package types

// Rows as returned by the storage layer.

type PrecipitationRow struct {
	Date          Date
	Precipitation *float64
}

type StationRow struct {
	Station string
	Name    string
}

type TemperatureRow struct {
	Date        Date
	Temperature int
}

type TemperatureSummary struct {
	Min *float64
	Avg *float64
	Max *float64
}

// Response payloads.

// PrecipitationByDate maps an ISO date to the precipitation recorded for it.
// A nil value means the reading was missing, not zero.
type PrecipitationByDate map[string]*float64

type StationEntry struct {
	Station string `json:"Station"`
	Name    string `json:"Name"`
}

type TemperatureEntry struct {
	Date        Date `json:"Date"`
	Temperature int  `json:"Temperature"`
}

type TemperatureStats struct {
	Start Date     `json:"Start"`
	End   *Date    `json:"End"`
	TMIN  *float64 `json:"TMIN"`
	TAVG  *float64 `json:"TAVG"`
	TMAX  *float64 `json:"TMAX"`
}
