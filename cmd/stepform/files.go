package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/upload"
)

var filesFlags struct {
	year        string
	target      string
	concurrency int
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List and upload the documents of a return",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runFilesList,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload local files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesUpload,
}

func init() {
	filesCmd.PersistentFlags().StringVar(&filesFlags.year, "year", "", "Return year (overrides return_year)")
	filesCmd.PersistentFlags().StringVar(&filesFlags.target, "target", "", "Target user of the documents")
	filesUploadCmd.Flags().IntVar(&filesFlags.concurrency, "concurrency", 4, "Files uploaded at once")

	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesUploadCmd)
}

func newUploadManager() (*upload.Manager, string, error) {
	app, err := loadApp()
	if err != nil {
		return nil, "", err
	}
	year := filesFlags.year
	if year == "" {
		year = app.Config.ReturnYear
	}
	manager, err := upload.NewManager(
		api.NewUploadService(app.Client),
		year,
		filesFlags.target,
		upload.WithLogger(app.Logger),
		upload.WithConcurrency(filesFlags.concurrency),
	)
	return manager, year, err
}

func runFilesList(cmd *cobra.Command, args []string) error {
	manager, _, err := newUploadManager()
	if err != nil {
		return err
	}
	if err := manager.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("%s: %w", manager.State().Error, err)
	}
	printFiles(cmd, manager.State().Files)
	return nil
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	manager, year, err := newUploadManager()
	if err != nil {
		return err
	}

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	requests := make([]api.UploadRequest, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			return err
		}
		requests = append(requests, api.UploadRequest{
			Name:   filepath.Base(path),
			Type:   mime.TypeByExtension(filepath.Ext(path)),
			Size:   info.Size(),
			Year:   year,
			Target: filesFlags.target,
			Body:   f,
		})
	}

	if err := manager.UploadBatch(cmd.Context(), requests); err != nil {
		return fmt.Errorf("%s: %w", manager.State().Error, err)
	}
	printFiles(cmd, manager.State().Files)
	return nil
}

func printFiles(cmd *cobra.Command, files []api.File) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tDATE\tDESCRIPTION")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, upload.BytesToSize(f.Size), upload.FormattedDate(f.Created), f.Description)
	}
	_ = w.Flush()
}
