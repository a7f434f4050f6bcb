package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <fingerprint>",
		Short: "Print a stored analysis by its content fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := domain.ParseFingerprint(args[0])
			if err != nil {
				return err
			}
			svc, stores, err := opts.service(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer stores.Close()

			res, err := svc.Get(cmd.Context(), fp)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
