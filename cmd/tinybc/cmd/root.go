// Package cmd implements the tinybc CLI (spec.md §6): a single command
// with flags, no subcommands, grounded on go-dws's cmd/dwscript/cmd
// structure (a cobra root command, flags bound in init(), a RunE pipeline,
// exitWithError for the final failure path).
package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/cwbudde/tinybc/internal/config"
	"github.com/cwbudde/tinybc/internal/pipeline"
	"github.com/cwbudde/tinybc/internal/target"
	"github.com/cwbudde/tinybc/internal/wasminspect"
	"github.com/spf13/cobra"

	_ "github.com/cwbudde/tinybc/internal/target/aarch64"
	_ "github.com/cwbudde/tinybc/internal/target/wasm"
	_ "github.com/cwbudde/tinybc/internal/target/wasmedge"
	_ "github.com/cwbudde/tinybc/internal/target/x86_64"
)

var (
	targetName   string
	outputStem   string
	optimizeFlag int
	printIR      bool
	asmOnly      bool
	wasmedgeAOT  bool
	listTargets  bool
	parseFile    string

	loadedConfig = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "tinybc <file>",
	Short: "tinybc compiles a tiny C-like language to native or WASM code",
	Long: `tinybc is a small batch compiler: source text to tokens to an AST to
three-address IR to optimized IR to target assembly, for x86-64, AArch64,
or WebAssembly.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	if c, err := config.Load("tinybc.toml"); err == nil {
		loadedConfig = c
	}

	rootCmd.Flags().StringVarP(&targetName, "target", "t", loadedConfig.DefaultTarget, "target name (x86_64, aarch64, wasm, wasmedge, ...)")
	rootCmd.Flags().StringVarP(&outputStem, "output", "o", "", "output stem (default: input stem)")
	rootCmd.Flags().IntVar(&optimizeFlag, "optimize", 0, "optimization level 0-3 (accepted, currently inert)")
	rootCmd.Flags().BoolVar(&printIR, "print-ir", false, "print the lowered+optimized IR to stdout")
	rootCmd.Flags().BoolVar(&asmOnly, "asm-only", false, "print generated assembly to stdout and stop")
	rootCmd.Flags().BoolVar(&wasmedgeAOT, "wasmedge-aot", false, "force target to wasmedge")
	rootCmd.Flags().BoolVar(&listTargets, "list-targets", false, "list known target names to stderr and exit")
	rootCmd.Flags().StringVar(&parseFile, "parse", "", "inspect a .wasm or .wat file and exit")
}

// Execute runs the root command and returns the process exit code: 0 on
// success, 1 on any diagnostic-producing failure (spec.md §6).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

func runRoot(_ *cobra.Command, args []string) error {
	if listTargets {
		names := target.Names()
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintln(os.Stderr, n)
		}
		return nil
	}

	if parseFile != "" {
		r, err := wasminspect.Inspect(parseFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, wasminspect.Describe(parseFile, r))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one input source file")
	}

	effectiveTarget := targetName
	if wasmedgeAOT {
		effectiveTarget = "wasmedge"
	}

	_, err := pipeline.Run(pipeline.Options{
		InputFile:      args[0],
		OutputStem:     outputStem,
		TargetName:     effectiveTarget,
		OptimizePasses: loadedConfig.OptimizePasses,
		PrintIR:        printIR,
		AsmOnly:        asmOnly,
	})
	return err
}
