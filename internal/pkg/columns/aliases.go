// Package columns resolves logical fields against CSV rows whose column names are not
// consistent across producers.
package columns

// Field is a logical column, independent of how a given file spells it.
type Field string

const (
	SKU            Field = "sku"
	Date           Field = "date"
	Facility       Field = "facility"
	Inventory      Field = "inventory"
	Produced       Field = "produced"
	Flow           Field = "flow"
	Event          Field = "event"
	Quantity       Field = "quantity"
	Capacity       Field = "capacity"
	RecoveryDays   Field = "recovery_days"
	CostPerUnit    Field = "cost_per_unit"
	Expedited      Field = "expedited"
	DisruptionType Field = "disruption_type"
	StartDate      Field = "start_date"
	EndDate        Field = "end_date"
	Severity       Field = "severity"
)

// Aliases is the candidate list per field, in priority order. When several candidates are
// present in one row the earliest one wins.
var Aliases = map[Field][]string{
	SKU:  {"sku", "SKU", "Sku", "material", "Material", "product", "item"},
	Date: {"date", "Date", "DATE", "day", "period", "timestamp"},
	Facility: {
		"facility", "Facility", "FACILITY", "location", "Location", "location_name",
		"site", "plant", "node",
	},
	Inventory: {
		"initial_inventory", "Initial_Inventory", "INITIAL_INVENTORY", "Initial Inventory",
		"inventory", "Inventory", "on_hand", "inventory_level",
	},
	Produced: {
		"produced_quantity", "quantity_produced", "Produced_Quantity", "production",
		"Production", "produced", "output",
	},
	Flow: {
		"flow_quantity", "shipped_quantity", "quantity", "Quantity", "flow", "Flow", "qty",
	},
	Event: {
		"event", "Event", "EVENT", "occurrence", "Occurrence", "backorder", "backorders",
		"backorder_quantity", "count",
	},
	Quantity: {
		"demand", "Demand", "DEMAND", "quantity", "Quantity", "qty", "demand_quantity",
		"order_quantity",
	},
	Capacity: {
		"capacity", "Capacity", "CAPACITY", "max_capacity", "production_capacity",
		"supply_capacity", "capacity_per_day",
	},
	RecoveryDays: {"recovery_days", "Recovery_Days", "recoveryDays", "time_to_recovery", "ttr"},
	CostPerUnit:  {"cost_per_unit", "Cost_Per_Unit", "unit_cost", "cost"},
	Expedited:    {"expedited", "Expedited", "is_expedited", "expedite"},
	DisruptionType: {
		"type", "Type", "disruption_type", "Disruption_Type", "event_type",
	},
	StartDate: {"start_date", "Start_Date", "startDate", "start", "from"},
	EndDate:   {"end_date", "End_Date", "endDate", "end", "to"},
	Severity:  {"severity", "Severity", "SEVERITY", "impact", "intensity"},
}

func (f Field) Candidates() []string {
	return Aliases[f]
}
