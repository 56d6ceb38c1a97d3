package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"subcatalog/internal/app"
	"subcatalog/internal/archive"
	"subcatalog/internal/catalog"
	"subcatalog/internal/config"
	"subcatalog/internal/reconcile"
	"subcatalog/internal/tools"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "subcatalog",
		Usage: "Subdomain catalog: enumerate, verify, tag and export targets",
		Commands: []*cli.Command{
			enumerateCommand(),
			importCommand(),
			verifyCommand(),
			exportCommand(),
			backupCommand(),
			statsCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		color.Red("[ERR] %v", err)
		os.Exit(1)
	}
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

func readInput(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("the file %q does not exist", path)
	}
	return tools.ReadLines(path)
}

func enumerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "enumerate",
		Usage: "Enumerate subdomains of the seed domains in a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-file", Aliases: []string{"l"}, Required: true, Usage: "file with one seed domain per line"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			seeds, err := readInput(c.String("input-file"))
			if err != nil {
				return err
			}
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			sum := a.Engine.EnumerateSeeds(ctx, seeds)
			for tool, n := range sum.Found {
				fmt.Printf("INFO: %s found %d subdomains\n", tool, n)
			}
			printImportSummary(sum.ImportSummary)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import target domains or nuclei results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "targets", Usage: "file with one target domain per line"},
			&cli.BoolFlag{Name: "extract", Usage: "extract hostnames from free text (URLs) in --targets"},
			&cli.StringFlag{Name: "nuclei-results", Usage: "nuclei results text file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			targets, nuclei := c.String("targets"), c.String("nuclei-results")
			if (targets == "") == (nuclei == "") {
				return errors.New("specify exactly one of --targets or --nuclei-results")
			}

			path := targets
			if nuclei != "" {
				path = nuclei
			}
			lines, err := readInput(path)
			if err != nil {
				return err
			}
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}

			if nuclei != "" {
				if n, err := archive.AppendUnique(a.Config.NucleiLogs, lines); err != nil {
					a.Logger.Printf("[ERR] append nuclei logs: %v", err)
				} else {
					a.Logger.Printf("[INF] %d new lines appended to %s", n, a.Config.NucleiLogs)
				}
				sum := a.Engine.ImportTags(ctx, lines)
				fmt.Printf("SUMMARY: %d tagged lines, %d skipped without a domain\n", sum.Parsed, sum.Dropped)
				fmt.Printf("SUMMARY: %d targets updated, %d created, %d unchanged\n", sum.Merge.Updated, sum.Merge.Created, sum.Merge.Unchanged)
				return nil
			}

			var sum reconcile.ImportSummary
			if c.Bool("extract") {
				sum = a.Engine.ImportTargetText(ctx, lines)
			} else {
				sum = a.Engine.ImportTargets(ctx, lines)
			}
			printImportSummary(sum)
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Resolve targets and record their external DNS records",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "verify all domains"},
			&cli.BoolFlag{Name: "unverified", Usage: "verify only unverified domains"},
			&cli.StringFlag{Name: "date", Usage: "only unverified domains created on this date (YYYY-MM-DD)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			all, unverified, day := c.Bool("all"), c.Bool("unverified"), c.String("date")
			if all == unverified {
				return errors.New("please specify either --all or --unverified")
			}
			if day != "" && !unverified {
				return errors.New("--date can only be used with --unverified")
			}
			var date time.Time
			if day != "" {
				var err error
				if date, err = time.Parse(time.DateOnly, day); err != nil {
					return fmt.Errorf("%s is not a valid date, use YYYY-MM-DD format", day)
				}
			}

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}

			var sum reconcile.ValidationSummary
			switch {
			case all:
				fmt.Println("Verifying all subdomains ...")
				sum = a.Engine.ValidateAll(ctx)
			case day != "":
				fmt.Printf("Verifying unverified records created on: %s\n", day)
				sum = a.Engine.ValidateUnverifiedOnDate(ctx, date)
			default:
				fmt.Println("Verifying only unverified domains ...")
				sum = a.Engine.ValidateUnverified(ctx)
			}

			if sum.TimedOut {
				color.Yellow("[-] resolution timed out, no records were merged")
			}
			if sum.Filtered > 0 {
				fmt.Printf("INFO: %d answers pointed at internal addresses and were dropped\n", sum.Filtered)
			}
			fmt.Printf("SUMMARY: Verified %d new subdomains\n", sum.NewlyVerified())
			fmt.Printf("SUMMARY: Total Verified/Total: %d/%d\n", sum.VerifiedAfter, sum.Total)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export target domains matching a filter",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "where", Required: true, Usage: `filter, e.g. "validated = true and tags contains [high]"`},
			&cli.StringFlag{Name: "output-file", Aliases: []string{"o"}, Required: true, Usage: "file to write the domains to"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			filters, err := catalog.ParseWhere(c.String("where"))
			if err != nil {
				return err
			}
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}

			domains := a.Engine.Export(ctx, filters...)
			if len(domains) == 0 {
				fmt.Println("INFO: No domains matched the where clause criteria")
				return nil
			}
			fmt.Printf("SUMMARY: Fetched %d domains\n", len(domains))
			if err := tools.WriteLines(c.String("output-file"), domains); err != nil {
				return fmt.Errorf("file I/O error: %w", err)
			}
			fmt.Printf("INFO: Domains successfully saved to %s\n", c.String("output-file"))
			return nil
		},
	}
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Back up the targets table as csv, xlsx and txt",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			res, err := archive.Backup(ctx, a.Store, a.Config.BackupDir)
			if err != nil {
				return err
			}
			fmt.Printf("DB was successfully backed-up in %s (%d targets)\n", a.Config.BackupDir, res.Targets)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show catalog counts",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Seed domains: %d\n", len(a.Store.SeedDomainNames(ctx)))
			fmt.Printf("Targets: %d\n", a.Store.CountTargets(ctx))
			fmt.Printf("Verified: %d\n", a.Store.CountVerified(ctx))
			return nil
		},
	}
}

func printImportSummary(sum reconcile.ImportSummary) {
	if sum.Failed > 0 {
		color.Red("[ERR] %d targets could not be stored", sum.Failed)
	}
	fmt.Printf("SUMMARY: Added %d subdomains\n", sum.Added())
	fmt.Printf("SUMMARY: Current Total: %d subdomains\n", sum.After)
}
