package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/fiscaliza/internal/application/analysis"
	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON    bool
		highlight bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Screen a text file, or extract and screen a scanned document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			svc, stores, err := opts.service(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer stores.Close()
			defer svc.Wait()

			var rep *appanalysis.Report
			if isText(args[0], data) {
				rep, err = svc.AnalyzeText(cmd.Context(), string(data))
			} else {
				rep, err = svc.AnalyzeDocument(cmd.Context(), domain.Document{Name: filepath.Base(args[0]), Data: data})
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep, highlight)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "Print the text with evidence marked")
	return cmd
}

func isText(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text", "":
		return utf8.Valid(data)
	}
	return false
}

func printReport(w io.Writer, rep *appanalysis.Report, highlight bool) {
	res := rep.Result
	fmt.Fprintf(w, "Status:      %s\n", res.Status)
	fmt.Fprintf(w, "Fingerprint: %s\n", res.Fingerprint)
	if rep.Cached {
		fmt.Fprintf(w, "Cached:      yes (analyzed %s)\n", res.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if len(res.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
	} else {
		fmt.Fprintf(w, "Findings (%d):\n", res.Counts.Total)
		for _, f := range res.Findings {
			fmt.Fprintf(w, "  [%-6s] %s\n", f.Severity, f.Message)
		}
	}
	for _, warn := range rep.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	if highlight {
		fmt.Fprintln(w)
		fmt.Fprintln(w, res.HighlightedText)
	}
}
