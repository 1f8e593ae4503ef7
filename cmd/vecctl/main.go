// Command vecctl runs vector operations over named vectors from a JSON file
// or inline comma-separated values.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CK6170/densevec-go/file"
	"github.com/CK6170/densevec-go/logging"
	"github.com/CK6170/densevec-go/matrix"
	"github.com/CK6170/densevec-go/models"
	"github.com/CK6170/densevec-go/serial"
	"github.com/CK6170/densevec-go/ui"
)

const defaultTolerance = 1e-9

var (
	vectorsPath string
	logPath     string
	overwrite   bool
	serialPort  string
	baud        int
	recordPath  string
	quiet       bool
	strict      bool
	outputJSON  bool
	debug       bool

	// set up by the root pre-run, released by its post-run
	logger  logging.Logger
	closers []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "vecctl",
	Short: "Dense vector operations from the command line",
	Long: `vecctl loads vectors by name from a JSON vector file (--file) or takes them
inline as comma-separated values, runs one operation and prints the result.
Every engine outcome is logged to stderr, a file (--log) or a serial port (--serial).`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: closeLogging,
}

var normCmd = &cobra.Command{
	Use:   "norm <vector>",
	Short: "Print a vector's norm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := normFlag(cmd)
		if err != nil {
			return err
		}
		v, err := load(args[0])
		if err != nil {
			return err
		}
		defer v.Release()
		return printValue(cmd, "norm", v.Norm(kind))
	},
}

var addCmd = &cobra.Command{
	Use:   "add <a> <b>",
	Short: "Print a + b",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCombine(cmd, args, matrix.Add)
	},
}

var subCmd = &cobra.Command{
	Use:   "sub <a> <b>",
	Short: "Print a - b",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCombine(cmd, args, matrix.Sub)
	},
}

var dotCmd = &cobra.Command{
	Use:   "dot <a> <b>",
	Short: "Print the dot product of a and b",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b, err := loadPair(args)
		if err != nil {
			return err
		}
		defer a.Release()
		defer b.Release()
		if a.Dim() != b.Dim() {
			return fmt.Errorf("dot: %w", models.MISMATCHING_DIMENSIONS)
		}
		return printValue(cmd, "dot", matrix.Dot(a, b))
	},
}

var equalsCmd = &cobra.Command{
	Use:   "equals <a> <b>",
	Short: "Report whether |a - b| is within the tolerance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := normFlag(cmd)
		if err != nil {
			return err
		}
		tol, _ := cmd.Flags().GetFloat64("tol")
		if !cmd.Flags().Changed("tol") {
			tol = fileTolerance()
		}
		a, b, err := loadPair(args)
		if err != nil {
			return err
		}
		defer a.Release()
		defer b.Release()
		eq := matrix.Equals(a, b, kind, tol)
		if outputJSON {
			return writeJSON(cmd, map[string]interface{}{"equal": eq, "norm": kind.String(), "tol": tol})
		}
		fmt.Fprintln(cmd.OutOrStdout(), eq)
		return nil
	},
}

var scaleCmd = &cobra.Command{
	Use:   "scale <vector> <multiplier>",
	Short: "Print the vector multiplied by a scalar",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid multiplier: %w", err)
		}
		v, err := load(args[0])
		if err != nil {
			return err
		}
		defer v.Release()
		if code := v.Scale(by); code != models.SUCCESS {
			return fmt.Errorf("scale: %w", code)
		}
		return printVector(cmd, "scale", v)
	},
}

var ieeeCmd = &cobra.Command{
	Use:   "ieee <vector>",
	Short: "Print each element with its IEEE-754 encoding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := load(args[0])
		if err != nil {
			return err
		}
		defer v.Release()
		fmt.Fprintln(cmd.OutOrStdout(), matrix.FormatIEEE(args[0], v.Data()))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vectors in the vector file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vf, err := file.LoadVectors(vectorsPath)
		if err != nil {
			return err
		}
		if outputJSON {
			return writeJSON(cmd, vf)
		}
		for _, name := range file.Names(vf) {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s dim=%d\n", name, len(vf.VECTORS[name]))
		}
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <name> <values>",
	Short: "Validate values and store them under name in the vector file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args[1])
		if err != nil {
			return err
		}
		v, code := matrix.Create(len(values), values, options()...)
		if code != models.SUCCESS {
			return fmt.Errorf("save %s: %w", args[0], code)
		}
		defer v.Release()

		vf, err := file.LoadVectors(vectorsPath)
		if errors.Is(err, models.FILE_NOT_FOUND) {
			vf, err = &file.VectorFile{VECTORS: map[string][]float64{}}, nil
		}
		if err != nil {
			return err
		}
		vf.VECTORS[args[0]] = v.Data()
		if err := file.SaveVectors(vectorsPath, vf); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s (dim=%d) to %s\n", args[0], v.Dim(), vectorsPath)
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports usable with --serial",
	Args:  cobra.NoArgs,
	// Listing ports needs no log sink.
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if detect, _ := cmd.Flags().GetBool("detect"); detect {
			port, trace := serial.DetectPortTrace(serialPort, baud)
			for _, line := range trace {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
			if port == "" {
				return fmt.Errorf("no usable serial port found")
			}
			fmt.Fprintln(cmd.OutOrStdout(), port)
			return nil
		}
		ports := serial.ListPortDetails()
		if outputJSON {
			return writeJSON(cmd, ports)
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&vectorsPath, "file", "f", "vectors.json", "Vector file (JSON)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Append engine log records to this file")
	rootCmd.PersistentFlags().BoolVar(&overwrite, "overwrite", false, "Truncate the --log file instead of appending")
	rootCmd.PersistentFlags().StringVar(&serialPort, "serial", "", "Also write log records to this serial port (\"auto\" to detect)")
	rootCmd.PersistentFlags().IntVar(&baud, "baud", 115200, "Serial baud rate")
	rootCmd.PersistentFlags().StringVar(&recordPath, "record", "", "Append each result as a CSV line to this file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not log to stderr")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Validate every element Scale produces")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print resolved inputs")

	normCmd.Flags().String("kind", "second", "Norm kind: chebyshev|first|second (or inf|l1|l2)")
	equalsCmd.Flags().String("kind", "second", "Norm kind: chebyshev|first|second (or inf|l1|l2)")
	equalsCmd.Flags().Float64("tol", defaultTolerance, "Tolerance (defaults to the file's TOLERANCE when set)")
	portsCmd.Flags().Bool("detect", false, "Probe ports and print the one --serial auto would use")

	rootCmd.AddCommand(normCmd, addCmd, subCmd, dotCmd, equalsCmd, scaleCmd, ieeeCmd, listCmd, saveCmd, portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(ui.NewRedWriter(os.Stderr), "Error:", err)
		os.Exit(exitCode(err))
	}
}
