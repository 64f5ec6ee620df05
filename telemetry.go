package csvsort

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	rowsInCounter      otelmetric.Int64Counter
	rowsOutCounter     otelmetric.Int64Counter
	runsCreatedCounter otelmetric.Int64Counter
	mergePassesCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/lanrat/csvsort")

	var err error
	rowsInCounter, err = meter.Int64Counter(
		"csvsort.rows.in",
		otelmetric.WithDescription("Number of data rows read from sort inputs"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.in counter: %w", err))
	}

	rowsOutCounter, err = meter.Int64Counter(
		"csvsort.rows.out",
		otelmetric.WithDescription("Number of data rows written to sorted outputs"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.out counter: %w", err))
	}

	runsCreatedCounter, err = meter.Int64Counter(
		"csvsort.runs.created",
		otelmetric.WithDescription("Number of sorted runs persisted to temporary storage"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create runs.created counter: %w", err))
	}

	mergePassesCounter, err = meter.Int64Counter(
		"csvsort.merge.passes",
		otelmetric.WithDescription("Number of merge passes, including intermediate cascade passes"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create merge.passes counter: %w", err))
	}
}
