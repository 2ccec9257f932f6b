// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/config"
	"github.com/jdfalk/qualification-planner/internal/matcher"
	"github.com/jdfalk/qualification-planner/internal/server"
	"github.com/jdfalk/qualification-planner/internal/staffing"
)

// envPrefix namespaces environment overrides, e.g. QUALPLAN_CATALOG_PATH.
const envPrefix = "QUALPLAN"

var cfgFile string
var catalogPath string
var catalogType string
var catalogDBPath string
var fuzzyThreshold float64
var backupDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qualification-planner",
	Short: "Plan the minimum staffing for a set of construction qualifications",
	Long: `Qualification Planner looks up construction enterprise qualifications,
merges their professional-title staffing rules into one headcount plan and
checks proposed headcounts against them.

Run "serve" for the HTTP API or use the commands below from the shell.`,
	SilenceUsage: true,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP API serving search, staffing computation, verification and catalog management.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.AppConfig.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		store, provider, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("Using catalog: %s (%d qualifications)\n", store.Location(), provider.Current().Len())

		srv := server.NewServer(provider, server.OptionsFromConfig(config.AppConfig))
		if config.AppConfig.WatchCatalog && config.AppConfig.CatalogType == catalog.StoreTypeFile {
			if err := srv.WatchCatalog(config.AppConfig.CatalogPath); err != nil {
				fmt.Printf("Warning: catalog file watching disabled: %v\n", err)
			}
		}

		cfg := server.GetDefaultServerConfig()
		cfg.Host = config.AppConfig.Host
		cfg.Port = strconv.Itoa(config.AppConfig.Port)
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search qualification names",
	Long:  `Rank catalog names against a query. Without a query every name is listed in catalog order.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, provider, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		svc := server.NewQualificationService(provider, config.AppConfig.FuzzyThreshold, 0)
		results := svc.Search(query)

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No matching qualifications.")
			return nil
		}
		for i, name := range results {
			fmt.Fprintf(out, "%2d. %s\n", i+1, name)
		}
		return nil
	},
}

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute <qualification>...",
	Short: "Compute the merged staffing plan for qualifications",
	Long: `Compute one title headcount plan that satisfies every named qualification.

With --fuzzy each argument may hold several queries separated by "," or "，";
every query selects its best-ranked catalog name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fuzzyMode, _ := cmd.Flags().GetBool("fuzzy")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, provider, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		names := args
		if fuzzyMode {
			var unmatched []string
			names, unmatched = resolveFuzzy(args, provider.Current().Names(), config.AppConfig.FuzzyThreshold)
			for _, q := range unmatched {
				fmt.Fprintf(cmd.ErrOrStderr(), "No qualification matches %q\n", q)
			}
		}

		svc := server.NewQualificationService(provider, config.AppConfig.FuzzyThreshold, 0)
		resp, err := svc.Compute(names, "cli")
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, resp)
		}
		printPlan(out, resp)
		return nil
	},
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <qualification>...",
	Short: "Check title headcounts against qualifications",
	Long: `Check a proposed headcount per title against each named qualification.

Headcounts come from repeated --count title=n flags and/or a JSON object file
given with --counts-file; flags win over the file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		countsFile, _ := cmd.Flags().GetString("counts-file")
		flagCounts, _ := cmd.Flags().GetStringToInt("count")
		asJSON, _ := cmd.Flags().GetBool("json")

		counts, err := loadTitleCounts(countsFile, flagCounts)
		if err != nil {
			return err
		}

		store, provider, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		svc := server.NewQualificationService(provider, config.AppConfig.FuzzyThreshold, 0)
		results, err := svc.Verify(args, counts, "cli")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, server.VerifyResponse{Results: results})
		}
		printResults(out, results)
		for _, r := range results {
			if !r.Satisfied {
				return fmt.Errorf("%s is not satisfied", r.Qualification)
			}
		}
		return nil
	},
}

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.MarshalSettings()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Write the effective configuration to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.SaveConfigToFile(args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.qualification-planner.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", config.DefaultCatalogPath, "qualification catalog file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&catalogType, "catalog-type", config.DefaultCatalogType, "catalog store: file (default) or pebble")
	rootCmd.PersistentFlags().StringVar(&catalogDBPath, "catalog-db", config.DefaultCatalogDBPath, "PebbleDB directory when --catalog-type=pebble")
	rootCmd.PersistentFlags().Float64Var(&fuzzyThreshold, "threshold", config.DefaultFuzzyThreshold, "minimum similarity for fuzzy matches (0-1)")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", config.DefaultBackupDir, "directory for catalog snapshots")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(catalogCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)

	// Add serve command specific flags
	serveCmd.Flags().Int("port", config.DefaultPort, "port to run the web server on")
	serveCmd.Flags().String("host", "", "host to bind the web server to (empty for all interfaces)")
	serveCmd.Flags().Bool("watch", true, "reload the catalog file when it changes")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")

	computeCmd.Flags().Bool("fuzzy", false, "treat arguments as search queries")
	computeCmd.Flags().Bool("json", false, "print the plan as JSON")

	verifyCmd.Flags().StringToInt("count", nil, "headcount for a title, e.g. --count 结构=2 (repeatable)")
	verifyCmd.Flags().String("counts-file", "", "JSON file holding a title to headcount object")
	verifyCmd.Flags().Bool("json", false, "print results as JSON")

	bindFlags()
}

// bindFlags maps command-line flags onto config keys.
func bindFlags() {
	viper.BindPFlag("catalog_path", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("catalog_type", rootCmd.PersistentFlags().Lookup("catalog-type"))
	viper.BindPFlag("catalog_db_path", rootCmd.PersistentFlags().Lookup("catalog-db"))
	viper.BindPFlag("fuzzy_threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("backup_dir", rootCmd.PersistentFlags().Lookup("backup-dir"))
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("watch_catalog", serveCmd.Flags().Lookup("watch"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".qualification-planner")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}

// openCatalog opens the configured store and loads its catalog.
func openCatalog() (catalog.Store, *catalog.Provider, error) {
	store, err := catalog.Open(config.AppConfig.CatalogType, config.AppConfig.StoreLocation())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog store: %w", err)
	}
	provider, err := catalog.NewProvider(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, provider, nil
}

// splitQueries splits on ASCII and full-width commas and drops blanks.
func splitQueries(arg string) []string {
	parts := strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == '，' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveFuzzy picks the best catalog name for each query. A name chosen by
// several queries is returned once.
func resolveFuzzy(args []string, names []string, threshold float64) (resolved []string, unmatched []string) {
	seen := make(map[string]bool)
	for _, arg := range args {
		for _, q := range splitQueries(arg) {
			name, ok := matcher.BestMatch(q, names, threshold)
			if !ok {
				unmatched = append(unmatched, q)
				continue
			}
			if !seen[name] {
				seen[name] = true
				resolved = append(resolved, name)
			}
		}
	}
	return resolved, unmatched
}

// loadTitleCounts merges the counts file with flag values.
func loadTitleCounts(path string, flags map[string]int) (map[string]int, error) {
	counts := make(map[string]int)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read counts file: %w", err)
		}
		if err := json.Unmarshal(data, &counts); err != nil {
			return nil, fmt.Errorf("counts file must be a JSON object of title to headcount: %w", err)
		}
	}
	for title, n := range flags {
		counts[title] = n
	}
	for title, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("headcount for %s must not be negative", title)
		}
	}
	return counts, nil
}

func printPlan(out io.Writer, resp *server.MatchResponse) {
	fmt.Fprintf(out, "Qualifications: %s\n", strings.Join(resp.MatchedQualifications, "、"))
	for _, title := range resp.FinalCounts.Titles() {
		marker := " "
		if resp.TypeAttributes[title].IsHighlighted {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %d\n", marker, title, resp.FinalCounts.Get(title))
	}
	fmt.Fprintf(out, "Total staff: %d\n", resp.TotalStaff)
}

func printResults(out io.Writer, results []staffing.Result) {
	for _, r := range results {
		status := "OK"
		if !r.Satisfied {
			status = "NOT SATISFIED"
		}
		fmt.Fprintf(out, "%s: %s (%d/%d)\n", r.Qualification, status, r.CurrentTotal, r.RequiredTotal)
		for _, reason := range r.Reasons {
			fmt.Fprintf(out, "  - %s\n", reason)
		}
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
