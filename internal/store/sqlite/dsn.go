package sqlite

import (
	"fmt"
	"net/url"
	"strings"
)

var defaultPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

var memoryPragmas = []string{
	"foreign_keys(ON)",
}

// parseDSN turns sqlite://<path>[?query] into a driver URI with the default
// pragmas. Query parameters on the input are kept.
func parseDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	rest := strings.TrimPrefix(dsn, "sqlite://")
	path, query, _ := strings.Cut(rest, "?")

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	path = unescaped
	if path == "" {
		return "", fmt.Errorf("sqlite DSN has no path")
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", fmt.Errorf("parsing query: %w", err)
	}
	pragmas := defaultPragmas
	if path == ":memory:" {
		values.Set("mode", "memory")
		path = "worldforge"
		pragmas = memoryPragmas
	}
	for _, pragma := range pragmas {
		values.Add("_pragma", pragma)
	}

	return "file:" + path + "?" + values.Encode(), nil
}

func isMemory(driverDSN string) bool {
	return strings.Contains(driverDSN, "mode=memory")
}
