package cli

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	flexconf "github.com/goliatone/go-flexconf"
	"github.com/goliatone/go-flexconf/pkg/codec"
	"github.com/goliatone/go-flexconf/schema/openapi"
)

func newResolveCommand(a *app) *cobra.Command {
	var format, indent string
	cmd := &cobra.Command{
		Use:   "resolve [namespace]",
		Short: "Print the merged configuration or one namespace",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			args = a.positional(cmd, args)
			if len(args) > 1 {
				return fmt.Errorf("resolve accepts at most one namespace, got %d", len(args))
			}
			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			var value any
			if len(args) == 1 {
				value, err = resolver.Namespace(args[0])
			} else {
				value, err = resolver.Final()
			}
			if err != nil {
				return err
			}
			return a.encode(value, format, indent)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml, toml)")
	cmd.Flags().StringVar(&indent, "indent", "  ", "indentation per level")
	return cmd
}

func newFragmentsCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "fragments",
		Short: "List the fragments in merge order with their scores",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.positional(cmd, args)
			resolver, err := a.resolver()
			if err != nil {
				return err
			}
			loaded, err := resolver.Fragments()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tSCORE\tNAMESPACE\tTAGS\tPATH")
			for _, fragment := range loaded {
				writeFragment(w, "loaded", strconv.FormatFloat(fragment.Score, 'g', -1, 64), fragment.Fragment, resolver.Root())
			}
			if all {
				excluded, err := resolver.Excluded()
				if err != nil {
					return err
				}
				for _, fragment := range excluded {
					writeFragment(w, "skipped", "-", fragment, resolver.Root())
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include fragments rejected by their tags")
	return cmd
}

func writeFragment(w *tabwriter.Writer, status, score string, fragment *flexconf.Fragment, root string) {
	tags := make([]string, 0, len(fragment.Tags))
	for key, value := range fragment.Tags {
		tags = append(tags, key+"="+value)
	}
	sort.Strings(tags)
	path := fragment.Path
	if rel, err := filepath.Rel(root, path); err == nil {
		path = rel
	}
	tagList := strings.Join(tags, ",")
	if tagList == "" {
		tagList = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", status, score, fragment.Namespace, tagList, path)
}

func newTraceCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "trace <path>",
		Short: "Show which layers set a dotted path",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			args = a.positional(cmd, args)
			if len(args) != 1 {
				return fmt.Errorf("trace needs exactly one path, got %d", len(args))
			}
			resolver, err := a.resolver()
			if err != nil {
				return err
			}
			trace, err := resolver.Trace(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				payload, err := trace.ToJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, string(payload))
				return err
			}

			effective, ok := trace.Effective()
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tLAYER\tKIND\tSCORE\tVALUE")
			for _, layer := range trace.Layers {
				if !layer.Found {
					continue
				}
				marker := ""
				if ok && layer.Layer == effective.Layer {
					marker = "*"
				}
				value, _ := json.Marshal(layer.Value)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, displayLayer(layer.Layer, resolver.Root()), layer.Kind,
					strconv.FormatFloat(layer.Score, 'g', -1, 64), value)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", flexconf.ErrPathNotFound, trace.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace as JSON")
	return cmd
}

func displayLayer(name, root string) string {
	if !filepath.IsAbs(name) {
		return name
	}
	if rel, err := filepath.Rel(root, name); err == nil {
		return rel
	}
	return name
}

func newSaveCommand(a *app) *cobra.Command {
	var (
		out      string
		format   string
		indent   string
		encoding string
		mode     string
	)
	cmd := &cobra.Command{
		Use:   "save <namespace>",
		Short: "Write the merged subtree of a namespace to a file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			args = a.positional(cmd, args)
			if len(args) != 1 {
				return fmt.Errorf("save needs exactly one namespace, got %d", len(args))
			}
			perm, err := strconv.ParseUint(mode, 8, 32)
			if err != nil {
				return fmt.Errorf("invalid --mode %q: %w", mode, err)
			}
			resolver, err := a.resolver()
			if err != nil {
				return err
			}
			path, err := resolver.SaveToFileContext(cmd.Context(), args[0], flexconf.SaveOptions{
				Path:     out,
				Format:   format,
				Indent:   indent,
				Encoding: encoding,
				Mode:     fs.FileMode(perm),
			})
			if err != nil {
				return err
			}
			a.logger.Info("saved", "namespace", args[0], "path", path)
			_, err = fmt.Fprintln(a.stdout, path)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file (default <tmp>/<namespace>.json)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format; defaults to the destination extension")
	cmd.Flags().StringVar(&indent, "indent", "", "indentation per level")
	cmd.Flags().StringVar(&encoding, "encoding", flexconf.DefaultEncoding, "text encoding label, e.g. utf-8 or latin1")
	cmd.Flags().StringVar(&mode, "mode", "600", "octal file mode")
	return cmd
}

func newDescribeCommand(a *app) *cobra.Command {
	var (
		format   string
		examples bool
		servers  []string
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "List the leaf paths of the merged configuration and their types",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.positional(cmd, args)
			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			switch format {
			case "openapi":
				final, err := resolver.Final()
				if err != nil {
					return err
				}
				opts := []openapi.Option{openapi.WithExamples(examples)}
				for _, server := range servers {
					opts = append(opts, openapi.WithServer(server))
				}
				doc, err := openapi.Generate(final, opts...)
				if err != nil {
					return err
				}
				return a.encode(doc, "json", "  ")
			case "text", "":
				fields, err := resolver.Describe()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PATH\tTYPE\tLAYER")
				for _, field := range fields {
					fmt.Fprintf(w, "%s\t%s\t%s\n", field.Path, field.Type, displayLayer(field.Layer, resolver.Root()))
				}
				return w.Flush()
			default:
				return fmt.Errorf("unknown describe format %q, expected text or openapi", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, openapi)")
	cmd.Flags().BoolVar(&examples, "examples", false, "include resolved values as examples (openapi)")
	cmd.Flags().StringArrayVar(&servers, "server", nil, "server URL listed in the document (openapi), repeatable")
	return cmd
}

func (a *app) encode(value any, format, indent string) error {
	c, ok := codec.Default().Lookup(format)
	if !ok {
		return fmt.Errorf("unknown format %q", format)
	}
	payload, err := c.Encode(value, codec.EncodeOptions{Indent: indent})
	if err != nil {
		return err
	}
	if _, err := a.stdout.Write(payload); err != nil {
		return err
	}
	if len(payload) > 0 && payload[len(payload)-1] != '\n' {
		_, err = fmt.Fprintln(a.stdout)
	}
	return err
}
