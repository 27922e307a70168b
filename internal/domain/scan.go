package domain

import (
	"encoding/json"
	"fmt"
)

// jsonb columns are scanned through sql.Scanner so that row scanners treat these types as
// single values rather than nested structs.

func (p *ScenarioPayload) Scan(src interface{}) error {
	return scanJSON(src, p)
}

func (k *KPIs) Scan(src interface{}) error {
	return scanJSON(src, k)
}

func (u *OutputURLs) Scan(src interface{}) error {
	return scanJSON(src, u)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
