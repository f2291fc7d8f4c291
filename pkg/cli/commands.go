package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/jsbridge"
	"github.com/devicelab-dev/reportsections/pkg/logger"
	"github.com/devicelab-dev/reportsections/pkg/report"
	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Write the result here instead of overwriting the input",
}

var renderCommand = &cli.Command{
	Name:      "render",
	Usage:     "Render a report definition to HTML",
	ArgsUsage: "<definition.yaml>",
	Description: `Render a YAML or JSON report definition to a single HTML page.

Passed and skipped sections start collapsed, failed and info sections start
expanded, unless the definition, config or flags say otherwise.

Examples:
  reportsections render report.yaml
  reportsections render report.json -o build-1234.html --collapse logPanel`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output HTML file (default: report.html)",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Report title override",
		},
		&cli.StringSliceFlag{
			Name:  "collapse",
			Usage: "Section ids to start collapsed",
		},
		&cli.StringSliceFlag{
			Name:  "expand",
			Usage: "Section ids to start expanded",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "Also write a JSON index of sections and their initial visibility",
		},
	},
	Action: runRender,
}

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "Show sections of an HTML report",
	ArgsUsage: "<report.html> <section-id>...",
	Flags:     []cli.Flag{outputFlag},
	Action: func(c *cli.Context) error {
		return runEdit(c, (*visibility.Toggler).Show)
	},
}

var hideCommand = &cli.Command{
	Name:      "hide",
	Usage:     "Hide sections of an HTML report",
	ArgsUsage: "<report.html> <section-id>...",
	Flags:     []cli.Flag{outputFlag},
	Action: func(c *cli.Context) error {
		return runEdit(c, (*visibility.Toggler).Hide)
	},
}

var toggleCommand = &cli.Command{
	Name:      "toggle",
	Usage:     "Toggle sections of an HTML report",
	ArgsUsage: "<report.html> <section-id>...",
	Flags:     []cli.Flag{outputFlag},
	Action: func(c *cli.Context) error {
		return runEdit(c, (*visibility.Toggler).Toggle)
	},
}

var statusCommand = &cli.Command{
	Name:      "status",
	Usage:     "Print whether sections are visible",
	ArgsUsage: "<report.html> [section-id]...",
	Description: `Print one line per section: "<id>	visible", "<id>	hidden" or
"<id>	not found". Without ids, every element marked data-section is listed.`,
	Action: runStatus,
}

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Run inline handlers such as toggleElement('id') against a report",
	ArgsUsage: "<report.html> <handler>...",
	Description: `Evaluate click handlers with the report's own script, as a browser
would, and save the resulting visibility. Handlers that return a value, such
as isVisible('id'), print "<handler>	<value>".

Examples:
  reportsections replay report.html "toggleElement('errorsPanel')" "hide('logPanel')"
  reportsections replay report.html "isVisible('errorsPanel')"`,
	Flags:  []cli.Flag{outputFlag},
	Action: runReplay,
}

func runRender(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one definition file")
	}
	cfg := appConfig(c)

	def, err := report.LoadDefinition(c.Args().First())
	if err != nil {
		return err
	}

	out := c.String("output")
	if out == "" {
		out = cfg.Output
	}
	title := c.String("title")
	if title == "" {
		title = cfg.Title
	}

	htmlCfg := report.HTMLConfig{
		OutputPath: out,
		Title:      title,
		Collapsed:  append(append([]string{}, cfg.Collapsed...), c.StringSlice("collapse")...),
		Expanded:   append(append([]string{}, cfg.Expanded...), c.StringSlice("expand")...),
		IndexPath:  c.String("json"),
	}
	if err := report.GenerateHTML(def, htmlCfg); err != nil {
		return err
	}

	if htmlCfg.OutputPath == "" {
		htmlCfg.OutputPath = "report.html"
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s (%d sections)\n", htmlCfg.OutputPath, len(def.Sections))
	return nil
}

// openReport parses the report named by the first argument. With needIDs set
// at least one section id must follow.
func openReport(c *cli.Context, needIDs bool) (*dom.Document, string, []visibility.ElementID, error) {
	if c.NArg() < 1 {
		return nil, "", nil, fmt.Errorf("missing report file")
	}
	if needIDs && c.NArg() < 2 {
		return nil, "", nil, fmt.Errorf("missing section id")
	}

	path := c.Args().First()
	doc, err := dom.ParseFile(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("read report: %w", err)
	}

	var ids []visibility.ElementID
	for _, arg := range c.Args().Tail() {
		id := visibility.ElementID(arg)
		if err := id.Validate(); err != nil {
			return nil, "", nil, err
		}
		ids = append(ids, id)
	}
	return doc, path, ids, nil
}

func saveReport(c *cli.Context, doc *dom.Document, path string) error {
	out := c.String("output")
	if out == "" {
		out = path
	}
	if err := doc.WriteFile(out); err != nil {
		return err
	}
	logger.Info("saved %s", out)
	return nil
}

func runEdit(c *cli.Context, op func(*visibility.Toggler, visibility.ElementID)) error {
	doc, path, ids, err := openReport(c, true)
	if err != nil {
		return err
	}

	tg := visibility.New(doc.Resolver(appConfig(c).Legacy))
	for _, id := range ids {
		if _, err := tg.State(id); err != nil {
			// Missing sections are skipped, matching the in-page behaviour.
			logger.Warn("%s: %v", c.Command.Name, err)
			fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
			continue
		}
		op(tg, id)
	}

	return saveReport(c, doc, path)
}

func runStatus(c *cli.Context) error {
	doc, _, ids, err := openReport(c, false)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		for _, s := range doc.Sections() {
			ids = append(ids, visibility.ElementID(s))
		}
	}

	tg := visibility.New(doc.Resolver(appConfig(c).Legacy))
	for _, id := range ids {
		state := "hidden"
		visible, err := tg.State(id)
		switch {
		case err != nil:
			state = "not found"
		case visible:
			state = "visible"
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", id, state)
	}
	return nil
}

func runReplay(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("expected a report file and at least one handler")
	}

	path := c.Args().First()
	doc, err := dom.ParseFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	engine, err := jsbridge.ForDocument(doc, jsbridge.BindOptions{Legacy: appConfig(c).Legacy})
	if err != nil {
		return err
	}
	defer engine.Close()

	handlers := c.Args().Tail()
	results, err := engine.Replay(handlers)
	if err != nil {
		return err
	}
	for i, r := range results {
		if r != nil {
			fmt.Fprintf(c.App.Writer, "%s\t%v\n", handlers[i], r)
		}
	}

	return saveReport(c, doc, path)
}
