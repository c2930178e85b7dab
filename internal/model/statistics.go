package model

// LedgerStatistics aggregates the cash registers of one owner (or of every owner)
type LedgerStatistics struct {
	Registers       int64   `json:"registers"`
	ActiveRegisters int64   `json:"activeRegisters"`
	MainBalance     float64 `json:"mainBalance"`
	TotalBalance    float64 `json:"totalBalance"`
	Movements       int64   `json:"movements"`
	SweptValue      float64 `json:"sweptValue"`
	SettledValue    float64 `json:"settledValue"`
}
