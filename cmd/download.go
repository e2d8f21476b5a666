package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/logging"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/drive_tools"
	"github.com/teemow/driveagent/internal/transfer"
)

type downloadOptions struct {
	output        string
	account       string
	sharedDriveID string
}

func newDownloadCmd() *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download <file-path-or-id>",
		Short: "Download a file from Google Drive",
		Long: `Download a file from Google Drive to the local disk. Files larger than the
inline limit are fetched chunk by chunk and reassembled; progress is written
to stderr.

The download passes the same confirmation gate as the GoogleDrive_DownloadFile
tool.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: the Drive file name in the current directory, - for stdout)")
	cmd.Flags().StringVar(&opts.account, "account", "", "Account name (default: 'default')")
	cmd.Flags().StringVar(&opts.sharedDriveID, "shared-drive-id", "", "Shared drive that holds the file")

	return cmd
}

func runDownload(cmd *cobra.Command, ref string, opts downloadOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	approver, closer := newApprover(cfg, logger)
	defer closer.Close()
	gate := confirm.NewGate(cfg.Policy(), approver, confirm.WithLogger(logger))

	params := map[string]any{"file_path_or_id": ref}
	if opts.sharedDriveID != "" {
		params["shared_drive_id"] = opts.sharedDriveID
	}
	if err := gate.Authorize(ctx, confirm.NewRequest(drive_tools.ToolDownloadFile, params)); err != nil {
		return err
	}

	sc, err := server.NewServerContext(ctx, cfg, gate, server.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	client, err := sc.DriveClientForAccount(opts.account)
	if err != nil {
		return err
	}

	result, err := client.Download(ctx, ref, opts.sharedDriveID)
	if err != nil {
		return err
	}

	var data []byte
	if result.RequiresChunkedDownload {
		logger.Info("file exceeds the inline limit, downloading in chunks",
			logging.File(result.FileID), "size", result.Size)
		data, err = transfer.Fetch(ctx, client.ChunkSource(opts.sharedDriveID), result.FileID, transfer.FetchOptions{
			ChunkSize:    cfg.ChunkSize,
			ExpectedSize: result.Size,
			OnProgress:   progressPrinter(cmd.ErrOrStderr()),
			Logger:       logger,
		})
		if err != nil {
			return err
		}
	} else {
		data, err = base64.StdEncoding.DecodeString(result.Base64)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", result.Name, err)
		}
	}

	return writeDownload(cmd, outputPath(opts.output, result), data)
}

// outputPath picks the local file name. Drive names may contain path
// separators, so only the base name is used.
func outputPath(output string, result *drive.DownloadResult) string {
	if output != "" {
		return output
	}
	name := filepath.Base(filepath.Clean("/" + result.Name))
	if name == "/" || name == "." {
		return result.FileID
	}
	return name
}

func writeDownload(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s (%d bytes)\n", path, len(data))
	return nil
}

// progressPrinter reports chunk progress on one updating line.
func progressPrinter(w io.Writer) func(received, total int64) {
	return func(received, total int64) {
		if total > 0 {
			fmt.Fprintf(w, "\rDownloaded %d / %d bytes (%d%%)", received, total, received*100/total)
			if received >= total {
				fmt.Fprintln(w)
			}
			return
		}
		fmt.Fprintf(w, "\rDownloaded %d bytes", received)
	}
}
