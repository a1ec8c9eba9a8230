package application

import (
	"fmt"
	"strings"

	"github.com/bnema/apex-activities-cli/internal/ports"
)

const RunningDividendsName = "running_dividends"

var viewFlavors = map[string]struct{}{
	"postgresql":  {},
	"timescaledb": {},
	"sqlite":      {},
}

// runningDividendsDefinition builds the running incoming-transfer total for a
// target table. It reports false when the connector cannot host it.
func runningDividendsDefinition(target string, connector ports.InstanceConnector) (ports.DerivedDefinition, bool) {
	if connector == nil || connector.Type() != "sql" {
		return ports.DerivedDefinition{}, false
	}
	flavor := strings.ToLower(connector.Flavor())
	if _, ok := viewFlavors[flavor]; !ok {
		return ports.DerivedDefinition{}, false
	}

	q := func(name string) string { return QuoteIdentifier(flavor, name) }
	query := fmt.Sprintf(
		"SELECT DISTINCT %s, sum(%s) OVER (ORDER BY %s ASC) AS %s FROM %s "+
			"WHERE %s IS NOT NULL AND %s != '' AND %s = 'INCOMING' AND %s = 'MONEY_MOVEMENTS'",
		q("timestamp"), q("netAmount"), q("timestamp"), q(RunningDividendsName), q(target),
		q("symbol"), q("symbol"), q("transferDirection"), q("activityType"),
	)

	return ports.DerivedDefinition{
		Name:    RunningDividendsName,
		Parent:  target,
		Query:   query,
		Columns: map[string]string{"datetime": "timestamp"},
	}, true
}

// QuoteIdentifier quotes a column or table name for the given SQL flavor.
func QuoteIdentifier(flavor, name string) string {
	switch strings.ToLower(flavor) {
	case "mysql", "mariadb":
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case "mssql":
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}
