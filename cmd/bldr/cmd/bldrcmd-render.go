// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

var renderPage bool
var renderOpen bool

var renderCmd = &cobra.Command{
	Use:   "render <doc.json|->",
	Short: "render a saved document to html",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenderCmd,
}

func init() {
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "render a full standalone html page")
	renderCmd.Flags().BoolVar(&renderOpen, "open", false, "write the page to a temp file and open it in the default browser")
	rootCmd.AddCommand(renderCmd)
}

func readInputFile(fileName string) ([]byte, error) {
	if fileName == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(fileName)
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	barr, err := readInputFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	doc, err := doctree.Decode(barr, Registry)
	if err != nil {
		return err
	}
	if renderOpen {
		return openPreview(doc)
	}
	var html string
	if renderPage {
		html, err = doctree.RenderPage(doc)
	} else {
		html, err = doctree.RenderHTML(doc)
	}
	if err != nil {
		return err
	}
	WriteStdout("%s\n", html)
	return nil
}

func openPreview(doc *doctree.Document) error {
	html, err := doctree.RenderPage(doc)
	if err != nil {
		return err
	}
	previewFile, err := os.CreateTemp("", "bldr-preview-*.html")
	if err != nil {
		return fmt.Errorf("cannot create preview file: %w", err)
	}
	defer previewFile.Close()
	if _, err := previewFile.WriteString(html); err != nil {
		return fmt.Errorf("cannot write preview file: %w", err)
	}
	if err := open.Run(previewFile.Name()); err != nil {
		return fmt.Errorf("error opening preview %s: %w", previewFile.Name(), err)
	}
	WriteStdout("opened %s\n", previewFile.Name())
	return nil
}
