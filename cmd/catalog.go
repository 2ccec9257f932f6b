// file: cmd/catalog.go
// version: 2.1.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jdfalk/qualification-planner/internal/backup"
	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/config"
)

var (
	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the qualification catalog",
		Long:  "Utilities for listing, checking, importing and exporting the qualification catalog.",
	}

	catalogListCmd = &cobra.Command{
		Use:   "list",
		Short: "List qualifications with their staffing rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, provider, err := openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()
			printCatalog(cmd.OutOrStdout(), provider.Current())
			return nil
		},
	}

	catalogLintCmd = &cobra.Command{
		Use:   "lint",
		Short: "Report catalog entries the planner cannot use as written",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, provider, err := openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()
			return runLint(cmd.OutOrStdout(), provider.Current())
		},
	}

	catalogImportCmd = &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Sync the catalog from a requirements workbook",
		Long: `Read qualification rows from the requirements workbook and sync the catalog:
existing names are updated in place, new names are appended and names missing
from the workbook are removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetString("sheet")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			quiet, _ := cmd.Flags().GetBool("quiet")
			noBackup, _ := cmd.Flags().GetBool("no-backup")
			return runImport(cmd.OutOrStdout(), args[0], sheet, importOptions{
				dryRun: dryRun,
				quiet:  quiet,
				backup: !noBackup,
			})
		},
	}

	catalogExportCmd = &cobra.Command{
		Use:   "export <path>",
		Short: "Write the catalog to a JSON or YAML file",
		Long:  "Copy the configured catalog store into a file, e.g. to move a Pebble catalog back to JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, provider, err := openCatalog()
			if err != nil {
				return err
			}
			defer store.Close()

			c := provider.Current()
			if err := catalog.NewFileStore(args[0]).Save(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d qualifications to %s\n", c.Len(), args[0])
			return nil
		},
	}

	catalogBackupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the catalog store into the backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := backup.Create(config.AppConfig.StoreLocation(), config.AppConfig.CatalogType, backupConfig())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%d bytes)\n", info.Path, info.Size)
			return nil
		},
	}

	catalogBackupsCmd = &cobra.Command{
		Use:   "backups",
		Short: "List catalog snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := backup.List(config.AppConfig.BackupDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintf(out, "No backups in %s\n", config.AppConfig.BackupDir)
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(out, "%s  %-6s  %8d  %s\n",
					b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.StoreType, b.Size, b.Filename)
			}
			return nil
		},
	}

	catalogRestoreCmd = &cobra.Command{
		Use:   "restore <archive>",
		Short: "Extract a catalog snapshot",
		Long: `Extract a snapshot created by "catalog backup" or an import. Files are written
next to the configured catalog unless --target is given. The archive checksum is
verified first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("target")
			if target == "" {
				target = filepath.Dir(config.AppConfig.StoreLocation())
			}
			archive := args[0]
			if _, err := os.Stat(archive); errors.Is(err, os.ErrNotExist) && !strings.ContainsRune(archive, os.PathSeparator) {
				archive = filepath.Join(config.AppConfig.BackupDir, archive)
			}
			if err := backup.Restore(archive, target, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s\n", filepath.Base(archive), target)
			return nil
		},
	}

	catalogKeysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Dump raw Pebble keys of the catalog store",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			return runRawPebbleQuery(cmd.OutOrStdout(), limit, prefix)
		},
	}
)

func init() {
	catalogImportCmd.Flags().String("sheet", catalog.DefaultSheet, "worksheet holding the requirements")
	catalogImportCmd.Flags().Bool("dry-run", false, "report changes without saving them")
	catalogImportCmd.Flags().Bool("quiet", false, "hide the progress bar")
	catalogImportCmd.Flags().Bool("no-backup", false, "skip the snapshot taken before saving")

	catalogRestoreCmd.Flags().String("target", "", "directory to extract into")

	catalogKeysCmd.Flags().Int("limit", 5, "Number of records to display")
	catalogKeysCmd.Flags().String("prefix", "qualification:", "Key prefix to inspect")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogLintCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogBackupCmd)
	catalogCmd.AddCommand(catalogBackupsCmd)
	catalogCmd.AddCommand(catalogRestoreCmd)
	catalogCmd.AddCommand(catalogKeysCmd)
}

func printCatalog(out io.Writer, c *catalog.Catalog) {
	if c.Len() == 0 {
		fmt.Fprintln(out, "Catalog is empty.")
		return
	}
	for i, q := range c.All() {
		rule := "any titles"
		if q.RequireAllTypes {
			rule = "all titles"
		}
		fmt.Fprintf(out, "%3d. %s\n", i+1, q.Name)
		fmt.Fprintf(out, "     total %d, %s: %s\n", q.TotalCount, rule, strings.Join(q.Types, "、"))
	}
}

func runLint(out io.Writer, c *catalog.Catalog) error {
	issues := catalog.Lint(c)
	if len(issues) == 0 {
		fmt.Fprintf(out, "No issues found in %d qualifications.\n", c.Len())
		return nil
	}
	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
	}
	return fmt.Errorf("%d catalog issues found", len(issues))
}

type importOptions struct {
	dryRun bool
	quiet  bool
	backup bool
}

func backupConfig() backup.Config {
	cfg := backup.DefaultConfig()
	cfg.Dir = config.AppConfig.BackupDir
	cfg.MaxBackups = config.AppConfig.MaxBackups
	return cfg
}

func runImport(out io.Writer, path, sheet string, opts importOptions) error {
	rows, err := catalog.ReadWorkbookRows(path, sheet)
	if err != nil {
		return err
	}

	var progress catalog.Progress
	if !opts.quiet {
		bar := progressbar.Default(int64(catalog.DataRowCount(rows)), "reading rows")
		defer bar.Finish()
		progress = bar
	}
	imported, err := catalog.ParseRows(rows, progress)
	if err != nil {
		return err
	}

	store, err := catalog.Open(config.AppConfig.CatalogType, config.AppConfig.StoreLocation())
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer store.Close()

	var report catalog.SyncReport
	if opts.dryRun {
		current, err := store.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		_, report = catalog.Sync(current, imported)
	} else {
		if opts.backup {
			if err := snapshotBeforeImport(out, config.AppConfig.StoreLocation()); err != nil {
				return err
			}
		}
		report, err = catalog.Apply(store, imported)
		if err != nil {
			return err
		}
	}

	printReport(out, report)
	switch {
	case opts.dryRun:
		fmt.Fprintln(out, "Dry run enabled; the catalog was not modified.")
	case report.Changed():
		fmt.Fprintf(out, "Catalog saved to %s\n", store.Location())
	default:
		fmt.Fprintln(out, "Catalog already up to date.")
	}
	return nil
}

// snapshotBeforeImport archives the store at location. A store that does not
// exist yet has nothing to protect.
func snapshotBeforeImport(out io.Writer, location string) error {
	if _, err := os.Stat(location); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	info, err := backup.Create(location, config.AppConfig.CatalogType, backupConfig())
	if err != nil {
		return fmt.Errorf("failed to back up catalog before import: %w", err)
	}
	fmt.Fprintf(out, "Backup: %s\n", info.Path)
	return nil
}

func printReport(out io.Writer, report catalog.SyncReport) {
	section := func(label string, names []string) {
		fmt.Fprintf(out, "%s: %d\n", label, len(names))
		for _, n := range names {
			fmt.Fprintf(out, "  - %s\n", n)
		}
	}
	section("Added", report.Added)
	section("Updated", report.Updated)
	section("Removed", report.Removed)
}

func runRawPebbleQuery(out io.Writer, limit int, prefix string) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if config.AppConfig.CatalogType != catalog.StoreTypePebble {
		return fmt.Errorf("raw inspection is only available for Pebble catalogs")
	}

	db, err := pebble.Open(config.AppConfig.CatalogDBPath, &pebble.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		fmt.Fprintf(out, "Key: %s\n", string(iter.Key()))
		fmt.Fprintf(out, "Value: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(out, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

// truncateString cuts at a rune boundary.
func truncateString(in string, max int) string {
	runes := []rune(in)
	if len(runes) <= max {
		return in
	}
	return string(runes[:max]) + "..."
}
