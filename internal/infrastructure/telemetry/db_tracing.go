package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterDBTracing adds otelgorm spans to every statement on db.
// Bind variables are left out of db.statement unless withVariables is set.
func RegisterDBTracing(db *gorm.DB, withVariables bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName("postgres")}
	if !withVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}
	return nil
}
