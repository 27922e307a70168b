package domain

type InventoryKPIs struct {
	AvgInventory      float64 `json:"avg_inventory"`
	InventoryTurns    string  `json:"inventory_turns"`
	OnTimeFulfillment string  `json:"on_time_fulfillment"`
}

type ProductionKPIs struct {
	TotalProduction   float64 `json:"total_production"`
	AvgTimeToRecovery float64 `json:"avg_time_to_recovery"`
}

type FlowKPIs struct {
	CostToServe   float64 `json:"cost_to_serve"`
	ExpediteRatio float64 `json:"expedite_ratio"`
}

type OccurrenceKPIs struct {
	BackorderVolume float64 `json:"backorder_volume"`
}

// KPIs groups the tile metrics; a nil group means the output was not available.
type KPIs struct {
	Inventory  *InventoryKPIs  `json:"inventory,omitempty"`
	Production *ProductionKPIs `json:"production,omitempty"`
	Flow       *FlowKPIs       `json:"flow,omitempty"`
	Occurrence *OccurrenceKPIs `json:"occurrence,omitempty"`
}
