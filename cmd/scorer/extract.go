package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/config"
	"github.com/talentsift/resume-scorer/internal/services"
)

var (
	extractPassword string
	extractDir      string
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract text, hyperlinks, and metadata from a PDF",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runExtract(args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractPassword, "password", "", "password for encrypted files")
	extractCmd.Flags().StringVar(&extractDir, "dir", "", "directory the interactive picker lists files from (default from config)")
}

func runExtract(args []string) {
	zlog := newLogger()
	defer zlog.Sync()

	pdf := services.NewPDFExtractorService(zlog)

	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		dir := extractDir
		if dir == "" {
			dir = config.Load().Storage.ScratchDir
		}
		picked, err := pickDocument(dir, "Select a file", []string{".pdf"})
		if err != nil {
			if errors.Is(err, errBack) {
				return
			}
			zlog.Fatal("picking a file", zap.Error(err))
		}
		path = picked
	}

	content, err := pdf.ExtractContentWithPassword(path, extractPassword)
	if err != nil {
		zlog.Fatal("extracting the file", zap.Error(err))
	}

	fmt.Println(content.Text())
	fmt.Println()
	fmt.Println(content.LinksMarkdown())

	for key, value := range content.Metadata {
		zlog.Debug("document metadata", zap.String(key, value))
	}
}
