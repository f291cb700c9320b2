// Package mnemocmder
package mnemocmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/mnemo/cmd/mnemo/config"
	rmcmder "github.com/papercomputeco/mnemo/cmd/mnemo/rm"
	searchcmder "github.com/papercomputeco/mnemo/cmd/mnemo/search"
	servecmder "github.com/papercomputeco/mnemo/cmd/mnemo/serve"
	uploadcmder "github.com/papercomputeco/mnemo/cmd/mnemo/upload"
	watchcmder "github.com/papercomputeco/mnemo/cmd/mnemo/watch"
	versioncmder "github.com/papercomputeco/mnemo/cmd/version"
)

const mnemoLongDesc string = `Mnemo is retrieval-augmented memory for your agents.

Run the server with:
  mnemo serve          Run the mnemo API server

Work with documents using:
  mnemo upload         Upload documents into memory
  mnemo search         Search stored memories
  mnemo rm             Delete a document and its segments
  mnemo watch          Watch a directory and upload changed files`

const mnemoShortDesc string = "Mnemo - Agent Memory"

func NewMnemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemo",
		Short: mnemoShortDesc,
		Long:  mnemoLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing the .mnemo config directory (default: walk up from cwd, then $HOME)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(uploadcmder.NewUploadCmd())
	cmd.AddCommand(rmcmder.NewRmCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
