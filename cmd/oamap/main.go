package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/oamap"
	"github.com/reoring/oamap/capability"
	"github.com/reoring/oamap/i18n"
	"github.com/reoring/oamap/schemadoc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "describe":
		describeCmd(os.Args[2:])
	case "compile":
		compileCmd(os.Args[2:])
	case "resolve":
		resolveCmd(os.Args[2:])
	case "require":
		requireCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "oamap CLI\n\nUsage:\n  oamap describe -schema s.yaml\n  oamap compile -schema s.yaml [-prefix object] [-delimiter -] [-mask int32] [-o tree.json]\n  oamap resolve -schema s.yaml -arrays a.yaml -at N [-path 0/field/1] [-depth 32]\n  oamap require -schema s.yaml -attr startarray,endarray,data\n\nCommon flags:\n  -lang en|ja   message language\n  -v            debug logging to stderr")
}

// common holds the flags every subcommand accepts.
type common struct {
	schema    string
	prefix    string
	delimiter string
	mask      string
	lang      string
	verbose   bool
}

func commonFlags(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.schema, "schema", "", "schema document (.json, .yaml)")
	fs.StringVar(&c.prefix, "prefix", "", "array name prefix (default object)")
	fs.StringVar(&c.delimiter, "delimiter", "", "array name delimiter (default -)")
	fs.StringVar(&c.mask, "mask", "", "mask dtype (default int32)")
	fs.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logs")
	return c
}

func (c *common) setup() *slog.Logger {
	i18n.SetLanguage(c.lang)
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (c *common) load() oamap.Schema {
	if c.schema == "" {
		fatalf("-schema is required")
	}
	s, err := schemadoc.ReadFile(c.schema)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	return s
}

func (c *common) compile(log *slog.Logger) *oamap.Tree {
	opts := oamap.CompileOptions{Prefix: c.prefix, Delimiter: c.delimiter, Logger: log}
	if c.mask != "" {
		d, err := oamap.ParseDType(c.mask)
		if err != nil {
			fatalf("-mask: %v", err)
		}
		opts.MaskDType = d
	}
	tree, err := oamap.Compile(c.load(), opts)
	if err != nil {
		reportIssues(err)
		fatalf("compile failed")
	}
	return tree
}

func describeCmd(args []string) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)
	c.setup()
	fmt.Println(c.load().String())
}

func compileCmd(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	c := commonFlags(fs)
	var out string
	var text bool
	fs.StringVar(&out, "o", "", "output filename (stdout when empty)")
	fs.BoolVar(&text, "text", false, "print one line per node instead of JSON")
	_ = fs.Parse(args)
	log := c.setup()

	tree := c.compile(log)
	var data []byte
	if text {
		data = []byte(tree.String() + "\n")
	} else {
		raw, err := tree.MarshalJSON()
		if err != nil {
			fatalf("encoding tree: %v", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			fatalf("encoding tree: %v", err)
		}
		buf.WriteByte('\n')
		data = buf.Bytes()
	}
	if out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fatalf("creating output dir: %v", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
	log.Debug("tree written", "file", out, "fingerprint", tree.Fingerprint())
}

func resolveCmd(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	c := commonFlags(fs)
	var arraysFile, path string
	var at int64
	var depth int
	fs.StringVar(&arraysFile, "arrays", "", "array fixture document (.json, .yaml)")
	fs.Int64Var(&at, "at", 0, "position of the root value")
	fs.StringVar(&path, "path", "", "slash-separated list indexes and field names below the root")
	fs.IntVar(&depth, "depth", 32, "maximum nesting rendered")
	_ = fs.Parse(args)
	log := c.setup()
	if arraysFile == "" {
		fs.Usage()
		os.Exit(2)
	}

	tree := c.compile(log)
	arrays, err := schemadoc.ReadArrays(arraysFile)
	if err != nil {
		reportIssues(err)
		fatalf("reading arrays failed")
	}
	bag := oamap.Bind(tree, arrays, nil)
	v, err := bag.Get(at)
	if err != nil {
		reportIssues(err)
		fatalf("resolve failed")
	}
	for _, step := range splitPath(path) {
		if v, err = descend(v, step); err != nil {
			reportIssues(err)
			fatalf("resolve failed at %q", step)
		}
	}
	r, err := render(v, depth)
	if err != nil {
		reportIssues(err)
		fatalf("resolve failed")
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fatalf("encoding value: %v", err)
	}
	fmt.Println(string(out))
}

func requireCmd(args []string) {
	fs := flag.NewFlagSet("require", flag.ExitOnError)
	c := commonFlags(fs)
	var attrs string
	var name string
	fs.StringVar(&attrs, "attr", "startarray,endarray,data,mask,tags,offsets,indexes", "comma-separated attributes to require from every member")
	fs.StringVar(&name, "name", "obj", "parameter name")
	_ = fs.Parse(args)
	log := c.setup()

	tree := c.compile(log)
	p := capability.New(0, name, tree.Root(), capability.NewSymbols(name))
	for _, m := range p.Members() {
		for _, a := range splitCSV(attrs) {
			if _, err := p.Require(m, capability.Attribute(a)); err != nil {
				if errors.Is(err, oamap.ErrCapability) {
					log.Debug("attribute not provided", "member", m.ID(), "kind", m.Kind(), "attr", a)
					continue
				}
				fatalf("require: %v", err)
			}
		}
	}
	for _, r := range p.Required() {
		fmt.Printf("%s\t%s\n", r.Symbol, r.Array.Name)
	}
}

// descend applies one path step: a list or tuple index, or a record field.
func descend(v any, step string) (any, error) {
	switch x := v.(type) {
	case oamap.ListView:
		i, err := strconv.ParseInt(step, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list index %q: %w", step, err)
		}
		return x.Get(i)
	case oamap.TupleView:
		i, err := strconv.ParseInt(step, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("tuple index %q: %w", step, err)
		}
		return x.Get(i)
	case oamap.RecordView:
		return x.Field(step)
	case nil:
		return nil, errors.New("cannot descend into an absent value")
	}
	return nil, fmt.Errorf("cannot descend into %T", v)
}

// render turns a resolved value into plain data for JSON output. Records keep
// their field order.
func render(v any, depth int) (any, error) {
	if depth < 0 {
		return "...", nil
	}
	switch x := v.(type) {
	case oamap.ListView:
		out := make([]any, 0, x.Len())
		for e, err := range x.All() {
			if err != nil {
				return nil, err
			}
			r, err := render(e, depth-1)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case oamap.TupleView:
		out := make([]any, x.Len())
		for i := range out {
			e, err := x.Get(int64(i))
			if err != nil {
				return nil, err
			}
			if out[i], err = render(e, depth-1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case oamap.RecordView:
		out := make(orderedFields, 0, len(x.Fields()))
		for _, name := range x.Fields() {
			e, err := x.Field(name)
			if err != nil {
				return nil, err
			}
			r, err := render(e, depth-1)
			if err != nil {
				return nil, err
			}
			out = append(out, orderedField{name, r})
		}
		return out, nil
	case oamap.Block:
		out := make([]any, x.Len())
		for i := range out {
			e, err := x.Flat(int64(i))
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return map[string]any{"dims": x.Dims(), "values": out}, nil
	}
	return v, nil
}

type orderedField struct {
	name  string
	value any
}

type orderedFields []orderedField

func (f orderedFields) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, kv := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(kv.name)
		v, err := json.Marshal(kv.value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func reportIssues(err error) {
	iss, ok := oamap.AsIssues(err)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, it := range iss {
		if it.Path != "" {
			fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", it.Path, it.Message, it.Code)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s (%s)\n", it.Message, it.Code)
	}
}

func splitPath(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
