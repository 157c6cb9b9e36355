/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signatures.go
Description: Signatures command. Lists the magic byte catalog in match order.
*/

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kleascm/hexaminer/pkg/analyzers"
)

// NewSignaturesCommand creates the signatures command
func NewSignaturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signatures",
		Short: "List the known file signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🧬 %d known file signatures:\n\n", len(analyzers.Signatures()))
			return WriteSignatureTable(out, analyzers.Signatures())
		},
	}
}

// WriteSignatureTable prints the catalog as a table
func WriteSignatureTable(w io.Writer, signatures []analyzers.Signature) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tOFFSET\tPATTERN\tDESCRIPTION")
	for _, sig := range signatures {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", sig.Key, sig.Offset, hexPattern(sig.Pattern), sig.Description)
	}
	return tw.Flush()
}

func hexPattern(pattern []byte) string {
	parts := make([]string, len(pattern))
	for i, b := range pattern {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
