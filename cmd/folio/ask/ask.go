// Package askcmder provides the ask command for answering a question
// about an indexed document from the command line.
package askcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/config"
	"github.com/foliolabs/folio/pkg/logger"
	qautils "github.com/foliolabs/folio/pkg/qa/utils"
)

type askCommander struct {
	configDir   string
	debug       bool
	showSources bool
	logger      *zap.Logger
}

const askLongDesc string = `Ask a question about an indexed document.

The document id is printed by "folio index" and by the upload API.`

const askShortDesc string = "Ask a question about a document"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <document-id> <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return cmder.run(args[0], args[1])
		},
	}

	cmd.Flags().BoolVarP(&cmder.showSources, "sources", "s", false, "Print the source chunks used for the answer")

	return cmd
}

func (c *askCommander) run(documentID, question string) error {
	c.logger = logger.New(logger.WithDebug(c.debug))
	defer c.logger.Sync()

	cfg, err := config.Load(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	bundle, err := qautils.NewBundle(cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer bundle.Close()

	record, err := bundle.Service.AnswerQuestion(context.Background(), documentID, question)
	if err != nil {
		return err
	}

	fmt.Println(record.Answer)

	if c.showSources {
		for i, source := range record.Sources {
			fmt.Printf("\n--- source %d (chunk %d) ---\n%s\n", i+1, source.ChunkID, source.Text)
		}
	}

	return nil
}
