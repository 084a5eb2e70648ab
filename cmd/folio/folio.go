// Package foliocmder
package foliocmder

import (
	askcmder "github.com/foliolabs/folio/cmd/folio/ask"
	indexcmder "github.com/foliolabs/folio/cmd/folio/index"
	servecmder "github.com/foliolabs/folio/cmd/folio/serve"
	"github.com/spf13/cobra"
)

const folioLongDesc string = `Folio answers questions about your documents.

Upload PDFs, text, or markdown and ask questions grounded in their
content:
  folio serve          Run the API server
  folio index <file>   Index a document from the command line
  folio ask <id> <q>   Ask a question about an indexed document`

const folioShortDesc string = "Folio - Document Question Answering"

func NewFolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: folioShortDesc,
		Long:  folioLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the .folio directory (default: ./.folio or ~/.folio)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(askcmder.NewAskCmd())

	return cmd
}
