package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lifeboat/internal/app"
	"lifeboat/internal/config"
	"lifeboat/internal/encryption"
	"lifeboat/internal/life"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run (e.g. "Save").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "lifeboat",
	Short: "Snapshot, restore and profile manager for a containerized service",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"], defaults["data_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID:  %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Data Dir: %s\n", defaults["data_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Container:  %s\n", cfg.Service.ContainerName)
		fmt.Printf("Health URL: %s\n", cfg.Service.HealthURL)
		fmt.Printf("Data File:  %s\n", cfg.Service.DataFile)
		fmt.Printf("Cache Dir:  %s\n", cfg.Service.CacheDir)
		fmt.Printf("Retention:  %d day(s)\n", cfg.Snapshots.RetentionDays)
		return nil
	},
}

var configInitKeysCmd = &cobra.Command{
	Use:   "init-keys",
	Short: "Generate the age key pair for sealing replica uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		sealer := encryption.NewAgeSealer(cfg.Encryption)
		if err := sealer.Setup(); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Recipient: %s\n", cfg.Encryption.RecipientPath)
		fmt.Printf("Identity:  %s\n", cfg.Encryption.IdentityPath)
		return nil
	},
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot the live service state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Save")
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.Save(cmd.Context())
		if err != nil {
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Saved snapshot %s (%s)\n", snap.ID, formatBytes(snap.SizeBytes))
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [SNAPSHOT_ID]",
	Short: "Restore a snapshot over the live service state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		id := ""
		if len(args) > 0 {
			id = args[0]
		}

		// Interactive safety gate: when the service is running and the
		// caller did not force, ask. Only on a real terminal:
		// Non-interactive callers must pass --force explicitly.
		if !force && term.IsTerminal(int(os.Stdin.Fd())) && a.IsServiceRunning(cmd.Context()) {
			if !confirm("Service is running. Restoring now may corrupt its state. Continue?") {
				return fmt.Errorf("restore declined")
			}
			force = true
		}

		res, err := a.Restore(cmd.Context(), id, force)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored snapshot %s (data=%v cache=%v)\n", res.ID, res.RestoredData, res.RestoredCache)
		if res.PreRestore != "" {
			fmt.Printf("Pre-restore copy: %s\n", res.PreRestore)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots by creation time",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		snaps, err := a.List()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}

		current, _ := a.Current()
		for _, s := range snaps {
			contents := contentIndicator(s)
			marker := ""
			if s.ID == current {
				marker = "  [current]"
			}
			version := s.ServiceVersion
			if version == "" {
				version = "-"
			}
			fmt.Printf("%s  %s  %10s  %s  %s%s\n",
				s.ID,
				s.CreatedAt.Format("2006-01-02 15:04:05"),
				formatBytes(s.SizeBytes),
				contents,
				version,
				marker,
			)
		}
		return nil
	},
}

// clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [RETENTION_DAYS]",
	Short: "Sweep items older than the retention threshold",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp("Clean")
		if err != nil {
			return err
		}
		defer a.Close()

		days := a.RetentionDays()
		if len(args) > 0 {
			days, err = strconv.Atoi(args[0])
			if err != nil || days < 0 {
				return fmt.Errorf("invalid retention days: %q", args[0])
			}
		}

		removed, err := a.Sweep(life.SweepKind(target), days, dryRun)
		if err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}

		if dryRun {
			for _, p := range removed {
				fmt.Println(p)
			}
			fmt.Printf("Would remove %d item(s) older than %d day(s)\n", len(removed), days)
			return nil
		}
		fmt.Printf("Removed %d item(s) older than %d day(s)\n", len(removed), days)
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print snapshot store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Snapshots: %d\n", st.SnapshotCount)
		fmt.Printf("Total:     %s\n", formatBytes(st.TotalBytes))
		if st.CurrentID != "" {
			fmt.Printf("Current:   %s\n", st.CurrentID)
		}
		if st.OldestID != "" {
			fmt.Printf("Oldest:    %s\n", st.OldestID)
			fmt.Printf("Newest:    %s\n", st.NewestID)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the journal of mutating operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(1e6).String()
			}
			target := op.Target
			if target == "" {
				target = "-"
			}
			fmt.Printf("#%d  %-10s  %-16s  %s  %-8s  %s\n",
				op.ID,
				op.Operation,
				target,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service container and health status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Status")
		if err != nil {
			return err
		}
		defer a.Close()

		running, info, healthy := a.ServiceStatus(cmd.Context())
		if !running {
			fmt.Println("Service: not running")
			return nil
		}

		fmt.Println("Service: running")
		fmt.Printf("Container: %s\n", info.ContainerID)
		fmt.Printf("Image:     %s\n", info.Image)
		fmt.Printf("Uptime:    %s\n", info.Uptime)
		if healthy {
			fmt.Println("Health:    ok")
		} else {
			fmt.Println("Health:    failing")
		}
		return nil
	},
}

// pull command
var pullCmd = &cobra.Command{
	Use:   "pull SNAPSHOT_ID",
	Short: "Fetch a snapshot's data file from the replica",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Pull")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Pull(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}

		fmt.Printf("Pulled snapshot %s to %s\n", args[0], path)
		return nil
	},
}

// profile commands
var createProfileCmd = &cobra.Command{
	Use:   "create-profile NAME [TEMPLATE]",
	Short: "Create a profile from a template",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CreateProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		template := ""
		if len(args) > 1 {
			template = args[1]
		}

		prof, err := a.CreateProfile(args[0], template)
		if err != nil {
			return err
		}

		fmt.Printf("Created profile %s (%d entries)\n", prof.Name, len(prof.Entries))
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch-profile NAME",
	Short: "Activate a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SwitchProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SwitchProfile(args[0]); err != nil {
			return err
		}

		fmt.Printf("Active profile: %s\n", args[0])
		return nil
	},
}

var showActiveCmd = &cobra.Command{
	Use:   "show-active",
	Short: "Print the active profile's entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowActive")
		if err != nil {
			return err
		}
		defer a.Close()

		prof, err := a.ActiveProfile()
		if err != nil {
			return err
		}

		fmt.Printf("# %s\n", prof.Name)
		for _, e := range prof.Entries {
			fmt.Printf("%s=%s\n", e.Key, e.Value)
		}
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListProfiles")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListProfiles()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No profiles.")
			return nil
		}

		active, _ := a.ActiveProfile()
		for _, name := range names {
			if active != nil && name == active.Name {
				fmt.Printf("%s  [active]\n", name)
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

var removeProfileCmd = &cobra.Command{
	Use:   "remove-profile NAME",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RemoveProfile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveProfile(args[0]); err != nil {
			return err
		}

		fmt.Printf("Removed profile %s\n", args[0])
		return nil
	},
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config FILE",
	Short: "Validate a key=value config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ValidateConfig")
		if err != nil {
			return err
		}
		defer a.Close()

		violations, err := a.ValidateConfigFile(args[0])
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Println("OK")
			return nil
		}

		for _, v := range violations {
			fmt.Println(v)
		}
		return fmt.Errorf("%d violation(s) found", len(violations))
	},
}

var compareProfilesCmd = &cobra.Command{
	Use:   "compare-profiles NAME_A NAME_B",
	Short: "Print the line differences between two profiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CompareProfiles")
		if err != nil {
			return err
		}
		defer a.Close()

		diffs, err := a.DiffProfiles(args[0], args[1])
		if err != nil {
			return err
		}
		if len(diffs) == 0 {
			fmt.Println("Profiles are identical.")
			return nil
		}

		for _, d := range diffs {
			if d.Left != "" {
				fmt.Printf("%4d  -%s\n", d.Line, d.Left)
			}
			if d.Right != "" {
				fmt.Printf("%4d  +%s\n", d.Line, d.Right)
			}
		}
		return nil
	},
}

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func contentIndicator(s *life.Snapshot) string {
	switch {
	case s.HasData && s.HasCache:
		return "DC"
	case s.HasData:
		return "D "
	case s.HasCache:
		return " C"
	default:
		return "  "
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configInitKeysCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("force", "f", false, "Restore even while the service is running")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("dry-run", false, "List what would be removed without deleting")
	cleanCmd.Flags().String("target", "snapshots", "What to sweep: snapshots, cache or logs")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(createProfileCmd)
	rootCmd.AddCommand(switchProfileCmd)
	rootCmd.AddCommand(showActiveCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(removeProfileCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(compareProfilesCmd)
}
