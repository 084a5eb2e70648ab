// Package indexcmder provides the index command for ingesting a
// document without running the server.
package indexcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/config"
	"github.com/foliolabs/folio/pkg/extract"
	"github.com/foliolabs/folio/pkg/logger"
	qautils "github.com/foliolabs/folio/pkg/qa/utils"
	"github.com/foliolabs/folio/pkg/storage"
)

type indexCommander struct {
	configDir string
	debug     bool
	logger    *zap.Logger
}

const indexLongDesc string = `Extract, chunk, embed, and index a document from the command line.

Prints the document id on success; use it with "folio ask".`

const indexShortDesc string = "Index a document"

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.ExactArgs(1),
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
			return cmder.run(args[0])
		},
	}

	return cmd
}

func (c *indexCommander) run(path string) error {
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

	result, err := extract.FromFile(path)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stating %s: %w", path, err)
	}

	doc := &storage.Document{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(path),
		SizeBytes:  info.Size(),
		PageCount:  result.PageCount,
		Text:       result.Text,
		UploadedAt: time.Now().UTC(),
	}

	if err := bundle.Service.IndexDocument(context.Background(), doc); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}

	fmt.Println(doc.ID)
	return nil
}
