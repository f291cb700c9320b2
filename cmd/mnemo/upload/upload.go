// Package uploadcmder provides the upload command for ingesting documents.
package uploadcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mnemo/pkg/cliui"
	"github.com/papercomputeco/mnemo/pkg/config"
	"github.com/papercomputeco/mnemo/pkg/documents"
)

type uploadCommander struct {
	paths []string

	apiTarget string
}

const uploadLongDesc string = `Upload documents into mnemo memory.

Each file is sent to a running mnemo server, which chunks its text,
embeds the chunks, and stores them for semantic search. The upload
returns a document id that can later be passed to mnemo rm.

Example:
  mnemo upload notes.md
  mnemo upload docs/*.md
  mnemo upload report.txt --api-target http://localhost:8081`

const uploadShortDesc string = "Upload documents into memory"

func NewUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: uploadShortDesc,
		Long:  uploadLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			cmder.paths = args
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Mnemo API server URL")

	return cmd
}

func (c *uploadCommander) run() error {
	fmt.Println()

	var failed int
	receipts := make([]documents.UploadReceipt, 0, len(c.paths))

	for _, path := range c.paths {
		name := filepath.Base(path)

		var receipt *documents.UploadReceipt
		err := cliui.Step(os.Stdout, fmt.Sprintf("Uploading %s", name), func() error {
			var stepErr error
			receipt, stepErr = UploadAPI(c.apiTarget, path)
			return stepErr
		})
		if err != nil {
			fmt.Printf("      %s\n", cliui.DimStyle.Render(err.Error()))
			failed++
			continue
		}

		receipts = append(receipts, *receipt)
		fmt.Printf("      %s %s  %s\n",
			cliui.KeyStyle.Render("document:"),
			cliui.ValueStyle.Render(receipt.DocumentID),
			cliui.DimStyle.Render(fmt.Sprintf("(%d chunks)", receipt.ChunkCount)),
		)
	}

	fmt.Printf("\n  %d uploaded, %d failed\n\n", len(receipts), failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(c.paths))
	}
	return nil
}
