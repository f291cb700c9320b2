// Package rmcmder provides the rm command for deleting documents.
package rmcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/mnemo/pkg/cliui"
	"github.com/papercomputeco/mnemo/pkg/config"
)

type rmCommander struct {
	documentIDs []string

	apiTarget string
}

const rmLongDesc string = `Delete documents and their stored segments.

Removes every segment belonging to the given document ids from the vector
store. Deleting an unknown document id is not an error.

Example:
  mnemo rm 3f6e1a9c-1d2b-4c8e-9f0a-5b6c7d8e9f0a
  mnemo rm $(mnemo search "stale notes" --quiet)`

const rmShortDesc string = "Delete documents from memory"

func NewRmCmd() *cobra.Command {
	cmder := &rmCommander{}

	cmd := &cobra.Command{
		Use:   "rm <document-id>...",
		Short: rmShortDesc,
		Long:  rmLongDesc,
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
			cmder.documentIDs = args
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Mnemo API server URL")

	return cmd
}

func (c *rmCommander) run() error {
	for _, id := range c.documentIDs {
		if err := deleteDocument(c.apiTarget, id); err != nil {
			return err
		}
		fmt.Printf("  %s Deleted %s\n", cliui.SuccessMark, cliui.ValueStyle.Render(id))
	}
	return nil
}

func deleteDocument(apiTarget, documentID string) error {
	deleteURL, err := url.Parse(apiTarget)
	if err != nil {
		return fmt.Errorf("invalid API target URL: %w", err)
	}
	deleteURL.Path = "/v1/documents/" + documentID

	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, deleteURL.String(), nil)
	if err != nil {
		return fmt.Errorf("creating delete request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to mnemo API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
