package sources

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnv(t *testing.T) {
	cases := []struct {
		name    string
		environ []string
		opts    EnvOptions
		expect  map[string]any
	}{
		{
			name:    "nested keys lower cased",
			environ: []string{"DATABASE__PORT=5000", "DATABASE__HOST=db"},
			opts:    EnvOptions{LowerCase: true},
			expect:  map[string]any{"database": map[string]any{"port": "5000", "host": "db"}},
		},
		{
			name:    "parse values",
			environ: []string{"APP__DEBUG=true", "APP__WORKERS=4", "APP__TAGS=[\"a\"]"},
			opts:    EnvOptions{LowerCase: true, ParseValues: true},
			expect:  map[string]any{"app": map[string]any{"debug": true, "workers": 4.0, "tags": []any{"a"}}},
		},
		{
			name:    "prefix filters and strips",
			environ: []string{"MYAPP_DATABASE__PORT=1", "HOME=/root"},
			opts:    EnvOptions{Prefix: "MYAPP_", LowerCase: true},
			expect:  map[string]any{"database": map[string]any{"port": "1"}},
		},
		{
			name:    "nested key replaces scalar regardless of input order",
			environ: []string{"CACHE__TTL=10", "CACHE=off"},
			opts:    EnvOptions{},
			expect:  map[string]any{"CACHE": map[string]any{"TTL": "10"}},
		},
		{
			name:    "custom separator and malformed entries",
			environ: []string{"A:B=c", "=nokey", "NOVALUE"},
			opts:    EnvOptions{Separator: ":"},
			expect:  map[string]any{"A": map[string]any{"B": "c"}},
		},
		{
			name:    "dot separator nested key replaces scalar",
			environ: []string{"DATABASE=x", "DATABASE.PORT=5000"},
			opts:    EnvOptions{Separator: "."},
			expect:  map[string]any{"DATABASE": map[string]any{"PORT": "5000"}},
		},
		{
			name:    "dash separator with scalar listed last",
			environ: []string{"DATABASE-PORT=5000", "DATABASE=x"},
			opts:    EnvOptions{Separator: "-", LowerCase: true},
			expect:  map[string]any{"database": map[string]any{"port": "5000"}},
		},
		{
			name:    "keys differing only in case",
			environ: []string{"Cache=off", "CACHE__TTL=10"},
			opts:    EnvOptions{LowerCase: true},
			expect:  map[string]any{"cache": map[string]any{"ttl": "10"}},
		},
		{
			name:    "same path after lower casing applies in raw key order",
			environ: []string{"port=2", "PORT=1"},
			opts:    EnvOptions{LowerCase: true},
			expect:  map[string]any{"port": "2"},
		},
		{
			name:    "value keeps equal signs",
			environ: []string{"DSN=user=app password=x"},
			opts:    EnvOptions{LowerCase: true},
			expect:  map[string]any{"dsn": "user=app password=x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Env(tc.environ, tc.opts)
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("env tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArgv(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		opts   ArgvOptions
		expect map[string]any
	}{
		{
			name:   "equals and space forms",
			args:   []string{"--database.port=5000", "--database.host", "db"},
			expect: map[string]any{"database": map[string]any{"port": "5000", "host": "db"}},
		},
		{
			name:   "bare and negated flags",
			args:   []string{"--verbose", "--no-color", "-q"},
			expect: map[string]any{"verbose": true, "color": false, "q": true},
		},
		{
			name:   "positionals and terminator",
			args:   []string{"serve", "--port", "80", "--", "--not-a-flag"},
			expect: map[string]any{"port": "80", "_": []any{"serve", "--not-a-flag"}},
		},
		{
			name:   "parse values",
			args:   []string{"--workers=4", "--offset", "-1", "--debug=false"},
			opts:   ArgvOptions{ParseValues: true},
			expect: map[string]any{"workers": 4.0, "offset": -1.0, "debug": false},
		},
		{
			name:   "flag followed by flag is boolean",
			args:   []string{"--dry-run", "--out=x"},
			expect: map[string]any{"dry-run": true, "out": "x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Argv(tc.args, tc.opts)
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("argv tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		input string
		want  any
	}{
		{input: "true", want: true},
		{input: "false", want: false},
		{input: "null", want: nil},
		{input: "3", want: 3.0},
		{input: "5.1", want: 5.1},
		{input: "NaN", want: "NaN"},
		{input: "Inf", want: "Inf"},
		{input: `{"a":1}`, want: map[string]any{"a": 1.0}},
		{input: "{broken", want: "{broken"},
		{input: "hello", want: "hello"},
		{input: "", want: ""},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, ParseValue(tc.input)); diff != "" {
			t.Fatalf("ParseValue(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}
