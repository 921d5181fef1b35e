package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"mincc/ir"
	"mincc/lex"
	"mincc/parse"
	"mincc/report"
	"mincc/symtab"
)

func main() {
	app := &cli.App{
		Name:      "mincc",
		Usage:     "C compiler front end",
		ArgsUsage: "FILE.c",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "tokenize",
				Aliases: []string{"T"},
				Usage:   "print tokens after lexing (for debugging)",
			},
			&cli.BoolFlag{
				Name:    "parse",
				Aliases: []string{"P"},
				Usage:   "stop after parsing, reporting only diagnostics",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "file to write IL to, - for stdout",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("please specify a single source file", 1)
	}
	path := c.Args().First()

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}

	var out io.Writer = os.Stdout
	if p := c.String("output"); p != "-" {
		f, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("failed to open output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	errs := report.NewCollector()
	tokens := lex.Tokenize(string(src), path, errs)

	if c.Bool("tokenize") {
		for _, tok := range tokens {
			fmt.Fprintf(out, "%s:%s:%d:%d\n",
				tok.Kind, tok, tok.R.Start.Line, tok.R.Start.Col)
		}
		return finish(errs)
	}

	root := parse.Parse(tokens, errs)
	if c.Bool("parse") || root == nil {
		return finish(errs)
	}

	il := ir.NewBuilder()
	root.GenIL(il, symtab.NewTable(), errs)
	if err := finish(errs); err != nil {
		return err
	}
	il.WriteTo(out)
	return nil
}

// finish prints every collected diagnostic; compilation fails if any
// was fatal-class.
func finish(errs *report.Collector) error {
	errs.Show(os.Stderr)
	if !errs.OK() {
		return cli.Exit("", 1)
	}
	return nil
}
