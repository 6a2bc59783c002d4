package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wbrown/janus-ram/ram"
	"github.com/wbrown/janus-ram/ram/analysis"
	"github.com/wbrown/janus-ram/ram/ast"
	"github.com/wbrown/janus-ram/ram/eval"
	"github.com/wbrown/janus-ram/ram/parser"
	"github.com/wbrown/janus-ram/ram/report"
	"github.com/wbrown/janus-ram/ram/transform"
	"github.com/wbrown/janus-ram/ram/translate"
)

// fileConfig mirrors translate.Config for the optional YAML
// configuration file. Flags given on the command line win.
type fileConfig struct {
	FactDir     string `yaml:"fact_dir"`
	OutputDir   string `yaml:"output_dir"`
	Engine      string `yaml:"engine"`
	Provenance  bool   `yaml:"provenance"`
	Profile     bool   `yaml:"profile"`
	DebugReport string `yaml:"debug_report"`
}

func main() {
	var (
		configPath  string
		factDir     string
		outputDir   string
		engine      string
		provenance  bool
		profile     bool
		debugReport string
		show        bool
		run         bool
		optimize    bool
	)

	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&factDir, "facts", "", "directory input relations are loaded from")
	flag.StringVar(&outputDir, "out", "", "directory output relations are written to")
	flag.StringVar(&engine, "engine", "", "external communication engine name")
	flag.BoolVar(&provenance, "provenance", false, "generate subproof subroutines and keep all relations")
	flag.BoolVar(&profile, "profile", false, "wrap the program in a timing statement")
	flag.StringVar(&debugReport, "debug-report", "", "write a translation report to this file")
	flag.BoolVar(&show, "show", false, "print the translated program")
	flag.BoolVar(&run, "run", false, "evaluate the program and print output relations")
	flag.BoolVar(&optimize, "O", true, "run the transform pipeline")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] program.dl\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Translates a Datalog program to RAM and optionally runs it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -show path.dl                 # print the lowered program\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -facts ./facts -run path.dl   # load, evaluate, print outputs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -debug-report report.txt path.dl\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := translate.Config{}
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if factDir != "" {
		cfg.FactDir = factDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if engine != "" {
		cfg.Engine = engine
	}
	if provenance {
		cfg.Provenance = true
	}
	if profile {
		cfg.Profile = true
	}
	if debugReport != "" {
		cfg.DebugReport = debugReport
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read program: %v", err)
	}
	prog, err := parser.Parse(string(source))
	if err != nil {
		log.Fatalf("Parse error: %v", err)
	}

	res := analysis.Run(prog)
	translated, err := translate.NewTranslator(cfg).Translate(prog, res)
	if err != nil {
		log.Fatalf("Translation failed: %v", err)
	}

	rep := report.New()
	rep.AddProgram("translated", translated)
	if optimize {
		transform.Standard().Transform(translated)
		rep.AddProgram("optimized", translated)
	}
	if cfg.DebugReport != "" {
		if err := rep.RenderFile(cfg.DebugReport); err != nil {
			log.Fatalf("Failed to write debug report: %v", err)
		}
	}

	if show {
		fmt.Println(translated)
	}
	if run {
		if err := runProgram(translated, prog.Symbols, outputRelations(prog)); err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
	}
}

func loadConfig(path string) (translate.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return translate.Config{}, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return translate.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return translate.Config{
		FactDir:     fc.FactDir,
		OutputDir:   fc.OutputDir,
		Engine:      fc.Engine,
		Provenance:  fc.Provenance,
		Profile:     fc.Profile,
		DebugReport: fc.DebugReport,
	}, nil
}

func outputRelations(prog *ast.Program) []string {
	var names []string
	for _, rel := range prog.Relations {
		if rel.Output {
			names = append(names, rel.Name)
		}
	}
	return names
}

func runProgram(translated *ram.Program, symbols *ast.SymbolTable, outputs []string) error {
	machine := eval.NewMachine(eval.Options{Symbols: symbols})
	if err := machine.Execute(translated); err != nil {
		return err
	}
	for _, name := range outputs {
		rel, ok := machine.Relation(name)
		if !ok {
			// Dropped after store; nothing left to show.
			continue
		}
		fmt.Println(report.Banner(name))
		if err := report.RenderRelation(os.Stdout, rel, symbols); err != nil {
			return err
		}
	}
	return nil
}
