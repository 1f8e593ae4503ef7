package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
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

// setupLogging builds the logger every command's vectors report to.
func setupLogging(cmd *cobra.Command, args []string) error {
	// A failed command skips the post-run; drop what it left open.
	_ = closeLogging(cmd, args)
	var sinks []logging.Logger
	if !quiet {
		sinks = append(sinks, logging.NewConsole())
	}
	if logPath != "" {
		l, err := logging.Open(logPath, overwrite)
		if err != nil {
			return err
		}
		closers = append(closers, l)
		sinks = append(sinks, l)
	}
	if serialPort != "" {
		name := serialPort
		if strings.EqualFold(name, "auto") {
			if name = serial.DetectPort("", baud); name == "" {
				return fmt.Errorf("no usable serial port found")
			}
		}
		sink, err := serial.Open(name, baud)
		if err != nil {
			return err
		}
		closers = append(closers, sink)
		sinks = append(sinks, logging.NewWithWriter(sink))
	}
	logger = logging.Multi(sinks...)
	return nil
}

func closeLogging(cmd *cobra.Command, args []string) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	closers = nil
	logger = nil
	return errors.Join(errs...)
}

func options() []matrix.Option {
	opts := []matrix.Option{matrix.WithLogger(logger)}
	if strict {
		opts = append(opts, matrix.WithStrictChecks())
	}
	return opts
}

// parseValues parses comma-separated numbers. Non-finite values are left to
// the engine to reject.
func parseValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector format: %w", err)
		}
		out = append(out, val)
	}
	return out, nil
}

// isInline reports whether arg looks like values rather than a vector name.
func isInline(arg string) bool {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, ",") {
		return true
	}
	_, err := strconv.ParseFloat(arg, 64)
	return err == nil
}

// resolve returns the values arg stands for: inline values, or a vector from
// the vector file.
func resolve(arg string) ([]float64, error) {
	if isInline(arg) {
		return parseValues(arg)
	}
	vf, err := file.LoadVectors(vectorsPath)
	if err != nil {
		return nil, err
	}
	return file.Lookup(vf, arg)
}

func load(arg string) (*matrix.Vector, error) {
	values, err := resolve(arg)
	if err != nil {
		return nil, err
	}
	ui.Debugf(debug, "%s -> %v\n", arg, values)
	v, code := matrix.Create(len(values), values, options()...)
	if code != models.SUCCESS {
		return nil, fmt.Errorf("vector %s: %w", arg, code)
	}
	return v, nil
}

func loadPair(args []string) (*matrix.Vector, *matrix.Vector, error) {
	a, err := load(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := load(args[1])
	if err != nil {
		a.Release()
		return nil, nil, err
	}
	return a, b, nil
}

// fileTolerance is the vector file's TOLERANCE, or the default when the file
// is missing or does not set one.
func fileTolerance() float64 {
	vf, err := file.LoadVectors(vectorsPath)
	if err != nil || vf.TOLERANCE <= 0 {
		return defaultTolerance
	}
	return vf.TOLERANCE
}

func normFlag(cmd *cobra.Command) (models.Norm, error) {
	s, _ := cmd.Flags().GetString("kind")
	kind, ok := models.ParseNorm(s)
	if !ok {
		return kind, fmt.Errorf("norm kind %q: %w", s, models.INVALID_ARGUMENT)
	}
	return kind, nil
}

func runCombine(cmd *cobra.Command, args []string, fn func(a, b *matrix.Vector) *matrix.Vector) error {
	a, b, err := loadPair(args)
	if err != nil {
		return err
	}
	defer a.Release()
	defer b.Release()
	if a.Dim() != b.Dim() {
		return fmt.Errorf("%s: %w", cmd.Name(), models.MISMATCHING_DIMENSIONS)
	}
	res := fn(a, b)
	if res == nil {
		// Operands are finite and dimensions match, so only overflow is left.
		return fmt.Errorf("%s: %w", cmd.Name(), models.INFINITY_OVERFLOW)
	}
	defer res.Release()
	return printVector(cmd, cmd.Name(), res)
}

func printVector(cmd *cobra.Command, title string, v *matrix.Vector) error {
	text, csv := v.ToStrings(title, "")
	if err := record(title, csv); err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd, map[string]interface{}{"op": title, "values": v.Data()})
	}
	if v.Dim() > ui.MaxPrintedElements {
		fmt.Fprint(cmd.OutOrStdout(), ui.FormatVector(title, v.Data()))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func printValue(cmd *cobra.Command, title string, val float64) error {
	if math.IsNaN(val) {
		return fmt.Errorf("%s: no result", title)
	}
	if err := record(title, strconv.FormatFloat(val, 'g', -1, 64)); err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd, map[string]interface{}{"op": title, "value": val})
	}
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(val, 'g', -1, 64))
	return nil
}

// record appends "title,csv" to --record when set.
func record(title, csv string) error {
	if recordPath == "" {
		return nil
	}
	if err := file.AppendToFile(recordPath, title+","+csv); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode maps an engine error to a process exit status.
func exitCode(err error) int {
	var code models.ErrorCode
	if errors.As(err, &code) {
		return int(code)
	}
	if err != nil {
		return int(models.UNKNOWN)
	}
	return 0
}
