package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/geofilter/geofilter/geofilter"
	"github.com/geofilter/geofilter/geofilter/eval"
	"github.com/geofilter/geofilter/geofilter/planner"
	"github.com/geofilter/geofilter/geofilter/query"
	"github.com/geofilter/geofilter/geofilter/storage"
	"github.com/geofilter/geofilter/internal/cliopt"
)

// Execute runs the CLI and returns an exit code. Positional arguments form
// a one-shot expression; with none, a REPL starts.
func Execute(argv []string) int {
	fs := flag.NewFlagSet("geofilter", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	g := cliopt.DefaultGlobalOptions()
	cliopt.BindGlobalFlags(fs, &g)

	if err := fs.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	s, err := newSession(g)
	if err != nil {
		warn(err)
		return 1
	}
	defer s.close()

	if fs.NArg() > 0 {
		if !s.run(strings.Join(fs.Args(), " ")) {
			return 1
		}
		return 0
	}

	info("Enter a text or JSON filter expression. Ctrl-D exits.")
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Printf("%s>%s ", green, reset)
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.run(line)
	}
	fmt.Println()
	return 0
}

// session holds everything an expression is processed against.
type session struct {
	fz      *geofilter.Frozen
	res     geofilter.Resource
	dialect *planner.Dialect
	source  storage.DataSource
	ctx     context.Context
}

func newSession(g cliopt.GlobalOptions) (*session, error) {
	cfg := geofilter.Config{CRS: g.CRS, Precision: g.Precision}
	fctx, err := geofilter.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{fz: fctx.Freeze(), ctx: context.Background()}

	if g.Resource != "" {
		if s.res, err = ParseResource(g.Resource, g.Precision); err != nil {
			return nil, err
		}
	}
	switch g.Dialect {
	case "":
	case "gpkg":
		d := planner.GeoPackage(g.Precision)
		s.dialect = &d
	case "postgis":
		d := planner.PostGIS(g.Precision)
		s.dialect = &d
	default:
		return nil, geofilter.New(geofilter.ErrConfig,
			fmt.Sprintf("unknown dialect %q", g.Dialect))
	}
	if s.source, err = ResolveSource(s.ctx, g); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	if s.source != nil {
		_ = s.source.Close()
	}
}

// run parses the input as text first, then as JSON, reduces, and applies
// every configured output: evaluation against the inline resource, SQL for
// the chosen dialect, and filtering of the feature source.
func (s *session) run(input string) bool {
	e, terr := query.ParseWithPrecision(input, s.fz.Precision())
	if terr != nil {
		var jerr error
		e, jerr = query.ParseJSONWithPrecision([]byte(input), s.fz.Precision())
		if jerr != nil {
			warn(terr)
			return false
		}
	}

	reduced, err := query.Reduce(e, s.fz)
	if err != nil {
		warn(err)
		return false
	}
	result("%s", reduced.String())

	if s.res != nil {
		out, err := s.evaluate(reduced, s.res)
		if err != nil {
			warn(err)
			return false
		}
		fmt.Printf("=> %s\n", out)
	}

	if s.dialect != nil {
		sql, args, err := planner.Compile(reduced, *s.dialect)
		if err != nil {
			warn(err)
			return false
		}
		fmt.Printf("%s: %s %v\n", s.dialect.Name, sql, args)
	}

	if s.source != nil {
		if err := s.query(reduced); err != nil {
			warn(err)
			return false
		}
	}
	return true
}

func (s *session) evaluate(e query.Expr, res geofilter.Resource) (geofilter.Outcome, error) {
	ev := eval.New(s.fz)
	if err := ev.Setup(e); err != nil {
		return geofilter.Unknown, err
	}
	defer ev.Teardown()
	return ev.Evaluate(res)
}

// query filters the feature source: engines that can evaluate SQL do so
// server-side, everything else goes through the in-process evaluator.
func (s *session) query(e query.Expr) error {
	matched := 0
	show := func(res geofilter.Resource) {
		matched++
		fmt.Printf("match %d:\n", matched)
		printResource(os.Stdout, res)
	}

	switch src := s.source.(type) {
	case storage.Streamable:
		stream, err := src.StreamWhere(s.ctx, e)
		if err != nil {
			return err
		}
		defer stream.Close()
		for stream.Next() {
			show(stream.Resource())
		}
		if err := stream.Err(); err != nil {
			return err
		}

	case storage.Iterable:
		ev := eval.New(s.fz)
		if err := ev.Setup(e); err != nil {
			return err
		}
		defer ev.Teardown()
		err := src.Iterate(s.ctx, func(res geofilter.Resource) error {
			out, err := ev.Evaluate(res)
			if err != nil {
				return err
			}
			if out == geofilter.True {
				show(res)
			}
			return nil
		})
		if err != nil {
			return err
		}

	default:
		return geofilter.New(geofilter.ErrConfig, "source supports neither streaming nor iteration")
	}

	info("%d feature(s) matched", matched)
	return nil
}
