// Package flexconf resolves one configuration tree from many small
// configuration fragments.
//
// Fragments are files named <namespace>[.<key>-<value>]*.<ext>, optionally
// nested in folders named <key>-<value>. A TagRegistry holds one TagRule per
// tag key: the rule decides whether a fragment carrying the tag applies to
// the current run, normalizes the raw value and scores it. Applicable
// fragments are merged under their namespace, highest score first, below
// the command-line and environment layers:
//
//	registry := flexconf.NewTagRegistry()
//	registry.MustRegister("env", flexconf.NewRule(
//		flexconf.WithValues(map[string]string{"dev": "development", "prod": "production"}),
//		flexconf.AppliesTo(os.Getenv("APP_ENV")),
//		flexconf.WithConstantWeight(10),
//	))
//	resolver, err := flexconf.New("./config", registry)
//	if err != nil {
//		return err
//	}
//	port, err := resolver.Get("database.port")
//
// Rules can also be declared with expr, CEL or JS expressions and loaded
// from a rule set file, see LoadRuleSet.
package flexconf
