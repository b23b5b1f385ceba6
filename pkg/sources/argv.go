package sources

import "strings"

// PositionalKey holds positional arguments in the argv tree.
const PositionalKey = "_"

// ArgvOptions controls how arguments become a tree.
type ArgvOptions struct {
	// Separator splits flag names into nested keys. Defaults to ".".
	Separator string
	// ParseValues converts literals with ParseValue. Bare flags are always
	// booleans.
	ParseValues bool
}

// Argv builds a tree from command-line arguments (without the program name).
// Recognised forms: --key=value, --key value, --flag, --no-flag, -k value.
// Dotted keys nest (--database.port=5000). Arguments after "--" and
// arguments that are not flags are collected under "_".
func Argv(args []string, opts ArgvOptions) map[string]any {
	separator := opts.Separator
	if separator == "" {
		separator = "."
	}

	tree := map[string]any{}
	var positional []any
	convert := func(raw string) any {
		if opts.ParseValues {
			return ParseValue(raw)
		}
		return raw
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			for _, rest := range args[i+1:] {
				positional = append(positional, convert(rest))
			}
			break
		}
		name, ok := flagName(arg)
		if !ok {
			positional = append(positional, convert(arg))
			continue
		}

		if key, value, hasValue := strings.Cut(name, "="); hasValue {
			setFlag(tree, key, convert(value), separator)
			continue
		}
		if strings.HasPrefix(name, "no-") && len(name) > 3 {
			setFlag(tree, strings.TrimPrefix(name, "no-"), false, separator)
			continue
		}
		if i+1 < len(args) {
			if _, nextIsFlag := flagName(args[i+1]); !nextIsFlag && args[i+1] != "--" {
				setFlag(tree, name, convert(args[i+1]), separator)
				i++
				continue
			}
		}
		setFlag(tree, name, true, separator)
	}

	if len(positional) > 0 {
		tree[PositionalKey] = positional
	}
	return tree
}

func flagName(arg string) (string, bool) {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		return arg[2:], true
	case strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNegativeNumber(arg):
		return arg[1:], true
	default:
		return "", false
	}
}

func isNegativeNumber(arg string) bool {
	return len(arg) > 1 && looksNumeric(arg[1:]) && arg[1] >= '0' && arg[1] <= '9'
}

func setFlag(tree map[string]any, key string, value any, separator string) {
	path := splitKey(key, separator)
	if len(path) == 0 {
		return
	}
	setPath(tree, path, value)
}
