package report

import (
	"fmt"
	"io"

	"aqi-query/internal/domain"
)

const EmptyResponse = "Empty response"

// PrintTable writes obs as a fixed-width, right-aligned table.
func PrintTable(w io.Writer, obs []domain.Observation) {
	if len(obs) == 0 {
		fmt.Fprintln(w, EmptyResponse)
		return
	}

	fmt.Fprintf(w, "%10s%10s%12s%10s\n", "Date", "Hour", "Parameter", "AQI")
	for _, o := range obs {
		fmt.Fprintf(w, "%10s%10d%12s%10d\n", o.DateObserved, o.HourObserved, o.ParameterName, o.AQI)
	}
}
