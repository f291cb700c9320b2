// Package watchcmder provides the watch command for automatically uploading
// changed files from a directory.
package watchcmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	uploadcmder "github.com/papercomputeco/mnemo/cmd/mnemo/upload"
	"github.com/papercomputeco/mnemo/pkg/config"
	"github.com/papercomputeco/mnemo/pkg/logger"
)

// debounceWindow batches rapid successive writes to the same file (editors
// often write a file several times in quick succession) into one upload.
const debounceWindow = 500 * time.Millisecond

type watchCommander struct {
	dir        string
	extensions []string

	apiTarget string

	debug  bool
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

const watchLongDesc string = `Watch a directory and upload changed files into memory.

Watches the given directory for file creations and writes, uploading each
changed file to a running mnemo server. Rapid successive writes to the same
file are batched into a single upload.

Only files matching the configured extensions are uploaded, so editor swap
files and build artifacts are ignored.

Example:
  mnemo watch ./notes
  mnemo watch ./docs --ext .md,.txt,.rst
  mnemo watch ./notes --api-target http://localhost:8081`

const watchShortDesc string = "Watch a directory and upload changed files"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{
		timers: make(map[string]*time.Timer),
	}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.dir = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringSliceVar(&cmder.extensions, "ext", []string{".md", ".txt"}, "File extensions to upload")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Mnemo API server URL")

	return cmd
}

func (c *watchCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
	)

	info, err := os.Stat(c.dir)
	if err != nil {
		return fmt.Errorf("watch target: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", c.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watching %s: %w", c.dir, err)
	}

	c.logger.Info("watching directory",
		"dir", c.dir,
		"extensions", c.extensions,
		"api_target", c.apiTarget,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("watch error", "error", err)
		case sig := <-sigChan:
			c.logger.Info("received signal, stopping watch", "signal", sig.String())
			return nil
		}
	}
}

func (c *watchCommander) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	if !c.wantsFile(event.Name) {
		c.logger.Debug("ignoring file", "path", event.Name)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Reset the pending timer so only the last write in a burst uploads.
	if timer, ok := c.timers[event.Name]; ok {
		timer.Stop()
	}

	path := event.Name
	c.timers[path] = time.AfterFunc(debounceWindow, func() {
		c.mu.Lock()
		delete(c.timers, path)
		c.mu.Unlock()

		c.upload(path)
	})
}

func (c *watchCommander) wantsFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range c.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (c *watchCommander) upload(path string) {
	receipt, err := uploadcmder.UploadAPI(c.apiTarget, path)
	if err != nil {
		c.logger.Warn("upload failed", "path", path, "error", err)
		return
	}

	c.logger.Info("uploaded document",
		"path", path,
		"document_id", receipt.DocumentID,
		"chunks", receipt.ChunkCount,
	)
}
