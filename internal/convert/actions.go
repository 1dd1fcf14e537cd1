package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/wiki-triage/internal/common"
	"github.com/dtnitsch/wiki-triage/models"
	"github.com/dtnitsch/wiki-triage/pkg/parser"
	"github.com/dtnitsch/wiki-triage/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ConvertAction prints the markdown rendering of one document read from --file or stdin.
func ConvertAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit("", 2)
	}

	var raw []byte
	if path := c.String("file"); path != "" && path != "-" {
		raw, err = (&storage.Storage{}).ReadFile(path)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return cli.Exit("", 1)
	}

	markdown, err := Markdown(parser.New(cfg, parser.WithLogger(logger), parser.WithMarkdown(true)), string(raw), c.Bool("rendered"), c.String("url"))
	if err != nil {
		logger.Error("failed to convert", "error", err)
		return cli.Exit("", 1)
	}
	fmt.Fprint(c.App.Writer, markdown)
	return nil
}

// Markdown converts raw through p. Rendered pages are distilled first.
func Markdown(p *parser.Parser, raw string, rendered bool, pageURL string) (string, error) {
	req := models.ParseRequest{ID: "stdin", URL: pageURL, Body: raw}
	if rendered {
		req.Format = models.FormatRendered
	}
	report, err := p.Parse(req)
	if err != nil {
		return "", err
	}
	return report.Markdown, nil
}
