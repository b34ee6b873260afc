package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// generateFlags are the root command's flags; the root command itself
// produces the QR code.
type generateFlags struct {
	configPath string
	text       string
	upi        []string
	amount     string
	note       string
	outfile    string
	logo       string
	level      string
	boxSize    int
	border     int
	fg         string
	bg         string
	logoScale  float64
	terminal   bool
	verify     bool
}

func newRootCmd() *cobra.Command {
	var f generateFlags

	root := &cobra.Command{
		Use:   "smartqr",
		Short: "Create text or UPI QR codes (PNG or SVG)",
		Long: `smartqr encodes plain text or a UPI payment link into a QR code.
The output format follows the --outfile extension: .svg writes a vector
image, anything else a PNG.`,
		Example: `  smartqr --text "https://example.com"
  smartqr --upi shop@okbank "Corner Shop" --amount 499 --note "Order 42" --outfile pay.svg
  smartqr --text hello --logo logo.png -e H`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, &f, args)
		},
	}

	// --- generate flags ------------------------------------------------------
	fl := root.Flags()
	fl.StringVar(&f.text, "text", "", "Plain text, URL, Wi-Fi string ...")
	fl.StringSliceVar(&f.upi, "upi", nil, "Generate a UPI payment QR: VPA NAME (or VPA,NAME)")
	fl.StringVar(&f.amount, "amount", "", "Amount for UPI QR (e.g., 499.00)")
	fl.StringVar(&f.note, "note", "", "Message for UPI QR")
	fl.StringVar(&f.outfile, "outfile", "qr.png", "Output filename")
	fl.StringVar(&f.logo, "logo", "", "Path to centre logo (PNG output only)")
	fl.StringVarP(&f.level, "error", "e", "M", "Error-correction level: L, M, Q or H")
	fl.IntVar(&f.boxSize, "box-size", 10, "Pixels per QR module")
	fl.IntVar(&f.border, "border", 4, "Quiet zone width in modules")
	fl.StringVar(&f.fg, "fg", "#000000", "Module colour")
	fl.StringVar(&f.bg, "bg", "#ffffff", "Background colour")
	fl.Float64Var(&f.logoScale, "logo-scale", 0.20, "Logo edge as a fraction of the image width")
	fl.BoolVar(&f.terminal, "terminal", false, "Also print the QR code to the terminal")
	fl.BoolVar(&f.verify, "verify", false, "Decode the written file and check it matches the payload")
	root.MarkFlagsOneRequired("text", "upi")
	root.MarkFlagsMutuallyExclusive("text", "upi")

	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "smartqr.yaml", "Path to config file")

	// --- scan command --------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "scan [image]",
		Short: "Decode a QR code from a PNG, JPEG or SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0])
		},
	})

	// --- history command -----------------------------------------------------
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated QR codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, f.configPath, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	root.AddCommand(historyCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smartqr %s\n", version)
		},
	})

	return root
}
