package refdata

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// requiredColumns must exist in every procedure catalog.
var requiredColumns = []string{"procedure_id", "display_name"}

// ValidateSchema checks that the catalog schema carries the identifying columns
// and at least one typical-range column for the cost and stay checks.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	for _, col := range requiredColumns {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	rangeCols := []string{"typical_cost_max", "typical_stay_max"}
	for _, col := range rangeCols {
		if columns[col] {
			return nil
		}
	}
	return fmt.Errorf("no typical range columns found; need at least one of: %s",
		strings.Join(rangeCols, ", "))
}
