package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fastpin/internal/app"
	"fastpin/internal/config"
	"fastpin/internal/fastpin"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Pin", "Watch").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id: %q", arg)
	}
	return id, nil
}

// timeParseDay parses a YYYY-MM-DD flag value in local time.
func timeParseDay(s string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return day, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

func printItem(item *fastpin.PinnedItem) {
	var summary string
	switch item.Type {
	case fastpin.TypeText:
		summary = item.TextContent
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		summary = strings.ReplaceAll(summary, "\n", " ")
	case fastpin.TypeImage:
		summary = fmt.Sprintf("%dx%d png (%d bytes)", item.ImageWidth, item.ImageHeight, len(item.ImageData))
	case fastpin.TypeFile:
		cached := ""
		if item.IsCached {
			cached = "  [cached]"
		}
		summary = fmt.Sprintf("%s (%d bytes)%s", item.FilePath, item.FileSize, cached)
	}

	tags := ""
	if len(item.Tags) > 0 {
		names := make([]string, len(item.Tags))
		for i, t := range item.Tags {
			names[i] = t.Name
		}
		tags = "  #" + strings.Join(names, " #")
	}

	fmt.Printf("#%-5d %-5s %s  %s%s\n",
		item.ID,
		item.Type.String(),
		item.CreatedAt.Format("2006-01-02 15:04:05"),
		summary,
		tags,
	)
}

var rootCmd = &cobra.Command{
	Use:   "fastpin",
	Short: "Clipboard history and pinning tool",
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

		installID := uuid.New().String()
		cfg := config.NewConfig(installID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
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
		fmt.Printf("Install ID: %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the clipboard and preview captures",
	Long: `Watch polls the OS clipboard and keeps the most recent capture as a
pending preview. Send SIGUSR1 to pin the pending preview immediately.
Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Watch")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hotkey := make(chan struct{}, 1)
		usr1 := make(chan os.Signal, 1)
		signal.Notify(usr1, syscall.SIGUSR1)
		defer signal.Stop(usr1)
		go func() {
			for range usr1 {
				select {
				case hotkey <- struct{}{}:
				default:
				}
			}
		}()

		fmt.Println("Watching clipboard. SIGUSR1 pins the pending preview; Ctrl-C stops.")
		return a.Watch(ctx, hotkey)
	},
}

// pin command
var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin content directly",
}

var pinTextCmd = &cobra.Command{
	Use:   "text [TEXT]",
	Short: "Pin a text item (reads stdin when TEXT is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		var text string
		if len(args) > 0 {
			text = args[0]
		} else {
			data, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}
		if text == "" {
			return fmt.Errorf("nothing to pin")
		}

		a, err := newApp("Pin")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.PinText(cmd.Context(), text, tags)
		if err != nil {
			return err
		}
		fmt.Printf("Pinned text item #%d\n", item.ID)
		return nil
	},
}

var pinImageCmd = &cobra.Command{
	Use:   "image PATH",
	Short: "Pin an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		a, err := newApp("Pin")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.PinImage(cmd.Context(), args[0], tags)
		if err != nil {
			return err
		}
		fmt.Printf("Pinned image item #%d (%dx%d)\n", item.ID, item.ImageWidth, item.ImageHeight)
		return nil
	},
}

var pinFileCmd = &cobra.Command{
	Use:   "file PATH",
	Short: "Pin a file reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		a, err := newApp("Pin")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.PinFile(cmd.Context(), args[0], tags)
		if err != nil {
			return err
		}
		fmt.Printf("Pinned file item #%d: %s\n", item.ID, item.FilePath)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pinned items",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		typeName, _ := cmd.Flags().GetString("type")
		tagName, _ := cmd.Flags().GetString("tag")
		dateStr, _ := cmd.Flags().GetString("date")
		group, _ := cmd.Flags().GetBool("group")

		filter := fastpin.Filter{Search: search, TagName: tagName}

		if typeName != "" {
			t, ok := fastpin.ParseItemType(typeName)
			if !ok {
				return fmt.Errorf("unknown type %q (want text, image, or file)", typeName)
			}
			filter.Type = &t
		}

		if dateStr != "" {
			day, err := timeParseDay(dateStr)
			if err != nil {
				return err
			}
			filter.Day = &day
		}

		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		a.SetFilters(filter)
		a.SetGroupByDate(group)

		groups, err := a.Items(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No items found.")
			return nil
		}
		for _, g := range groups {
			if g.Label != "" {
				fmt.Printf("%s\n", g.Label)
			}
			for _, item := range g.Items {
				printItem(item)
			}
			if g.Label != "" {
				fmt.Println()
			}
		}
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a pinned item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteItem(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted item #%d\n", id)
		return nil
	},
}

// tag command
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add ID NAME",
	Short: "Tag an item (creates the tag on first use)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("TagAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddTag(cmd.Context(), id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Tagged item #%d with %q\n", id, args[1])
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm ID NAME",
	Short: "Remove a tag from an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("TagRemove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveTag(cmd.Context(), id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed tag %q from item #%d\n", args[1], id)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("TagList")
		if err != nil {
			return err
		}
		defer a.Close()

		tags, err := a.ListTags(cmd.Context())
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Println("No tags.")
			return nil
		}
		for _, t := range tags {
			fmt.Printf("%s\n", t.Name)
		}
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a tag everywhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("TagDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteTag(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted tag %q\n", args[0])
		return nil
	},
}

// cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the embedded file cache",
}

var cacheOnCmd = &cobra.Command{
	Use:   "on ID",
	Short: "Cache a file item's bytes into the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("CacheOn")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := <-a.ToggleFileCache(cmd.Context(), id, true); err != nil {
			return err
		}
		fmt.Printf("Cached file for item #%d\n", id)
		return nil
	},
}

var cacheOffCmd = &cobra.Command{
	Use:   "off ID",
	Short: "Drop a file item's cached bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseItemID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("CacheOff")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := <-a.ToggleFileCache(cmd.Context(), id, false); err != nil {
			return err
		}
		fmt.Printf("Cleared cache for item #%d\n", id)
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Export the history database to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export(args[0], encrypt); err != nil {
			return err
		}
		fmt.Printf("Exported history to %s\n", args[0])
		return nil
	},
}

var exportSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the export encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		a, err := newApp("ExportSetup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetupKeys(pass); err != nil {
			return err
		}
		fmt.Println("Export keys generated.")
		return nil
	},
}

var exportDecryptCmd = &cobra.Command{
	Use:   "decrypt SRC DEST",
	Short: "Decrypt an encrypted export archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		a, err := newApp("ExportDecrypt")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DecryptExport(args[0], args[1], pass); err != nil {
			return err
		}
		fmt.Printf("Decrypted export to %s\n", args[1])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// pin subcommands
	pinCmd.AddCommand(pinTextCmd)
	pinCmd.AddCommand(pinImageCmd)
	pinCmd.AddCommand(pinFileCmd)
	pinTextCmd.Flags().StringSliceP("tag", "t", nil, "Tag to apply (repeatable)")
	pinImageCmd.Flags().StringSliceP("tag", "t", nil, "Tag to apply (repeatable)")
	pinFileCmd.Flags().StringSliceP("tag", "t", nil, "Tag to apply (repeatable)")

	// tag subcommands
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagDeleteCmd)

	// cache subcommands
	cacheCmd.AddCommand(cacheOnCmd)
	cacheCmd.AddCommand(cacheOffCmd)

	// export subcommands
	exportCmd.AddCommand(exportSetupCmd)
	exportCmd.AddCommand(exportDecryptCmd)
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the export with the configured public key")

	// list flags
	listCmd.Flags().StringP("search", "s", "", "Case-insensitive substring match on text, file name, or tag")
	listCmd.Flags().String("type", "", "Filter by type: text, image, or file")
	listCmd.Flags().String("tag", "", "Filter by exact tag name")
	listCmd.Flags().String("date", "", "Filter by capture day (YYYY-MM-DD)")
	listCmd.Flags().BoolP("group", "g", false, "Group output into date buckets")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(exportCmd)
}
