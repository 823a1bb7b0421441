package extract

import (
	"strings"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
	"github.com/supabase/pg-toolbelt-sub004/internal/maskconfig"
)

// optionMapFromEntries parses "key=value" entries (the shape
// pg_catalog.*options columns report) into an order-preserving OptionMap,
// masking any sensitive key's value (spec §4.1 "Masking").
func optionMapFromEntries(entries []string, cfg *maskconfig.Config) catalog.OptionMap {
	m := catalog.NewOptionMap()
	sensitive := maskconfig.SensitiveOptionKeySet(cfg)
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if sensitive[strings.ToLower(key)] {
			value = "__OPTION_" + strings.ToUpper(key) + "__"
		}
		m.Set(key, value)
	}
	return m
}

// maskConnInfo masks sensitive keys in a libpq conninfo string
// ("host=x password=y") into an order-preserving OptionMap, replacing each
// sensitive value with __CONN_<KEY>__ so a subscription's extracted catalog
// never carries a live credential (invariant behind scenario S5).
func maskConnInfo(conninfo string, cfg *maskconfig.Config) catalog.OptionMap {
	sensitive := maskconfig.SensitiveConnKeySet(cfg)
	m := catalog.NewOptionMap()
	for _, f := range strings.Fields(conninfo) {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		if sensitive[strings.ToLower(key)] {
			value = "__CONN_" + strings.ToUpper(key) + "__"
		}
		m.Set(key, value)
	}
	return m
}
