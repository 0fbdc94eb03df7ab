package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/chatter/remap/internal/app"
	"github.com/chatter/remap/internal/config"
	"github.com/chatter/remap/internal/firmware"
	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/keymap"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

// env is the loaded configuration shared by every command.
type env struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "remap",
		Short: "Terminal keyboard configurator",
		Long: `remap edits the keymap of a QMK/VIA style keyboard and keeps a local
history of firmware builds.

Run without arguments to start the TUI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.log.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runTUI()
		},
	}

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/remap/config.toml)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newSearchCmd(e),
		newCategoriesCmd(e),
		newFirmwareCmd(e),
	)
	return root
}

func (e *env) load() error {
	if e.configPath != "" {
		os.Setenv("REMAP_CONFIG", e.configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}

	e.cfg = cfg
	e.log = log
	return nil
}

func (e *env) openStore() (*firmware.SQLStore, error) {
	return firmware.OpenSQLStore(e.cfg.Firmware.DBPath, e.cfg.Firmware.BlobDir, e.log.With("component", "store"))
}

// output wraps w so colors are downsampled to what the terminal supports.
func output(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

func (e *env) runTUI() error {
	state, err := keymap.LoadOrDefault(e.cfg.Device.DumpPath, e.cfg.Device.LayerCount, e.log.With("component", "keymap"))
	if err != nil {
		return err
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := app.Options{
		Config:  e.cfg,
		Version: version,
		State:   state,
		Store:   store,
		Log:     e.log,
	}

	watcher, err := firmware.NewDropWatcher(e.cfg.Firmware.DropDir, firmware.DefaultSettle, e.log.With("component", "drops"))
	if err != nil {
		// Don't fail if the watcher can't start, just disable drop-directory uploads
		e.log.Warn("drop directory disabled", "dir", e.cfg.Firmware.DropDir, "error", err)
	} else {
		defer watcher.Close()
		opts.Drops = watcher.Drops()
	}

	p := tea.NewProgram(app.New(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// =============================================================================
// Keycodes
// =============================================================================

func (e *env) categoryMap(lang string, macroEdit bool) (*keycodes.CategoryMap, error) {
	l := e.cfg.Lang()
	if lang != "" {
		parsed, err := labellang.Parse(lang)
		if err != nil {
			return nil, err
		}
		l = parsed
	}

	builder := keycodes.NewBuilder(hid.NewCatalog(), e.log)
	return builder.Rebuild(keycodes.Params{
		Lang:          l,
		MacroEditMode: macroEdit,
		LayerCount:    e.cfg.Device.LayerCount,
		BleMicroPro:   e.cfg.Device.BleMicroPro,
	}), nil
}

func newSearchCmd(e *env) *cobra.Command {
	var (
		lang      string
		macroEdit bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search keycodes by label, keyword or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.categoryMap(lang, macroEdit)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			keys := keycodes.Filter(m, query, keycodes.Basic)
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				if name, ok := keycodes.Suggest(m, query); ok {
					fmt.Fprintf(out, "no match for %q, did you mean %s?\n", query, name)
					return nil
				}
				fmt.Fprintf(out, "no match for %q\n", query)
				return nil
			}
			return printKeys(out, keys)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "label language: en-us, en-gb, ja-jp, de-de")
	cmd.Flags().BoolVar(&macroEdit, "macro", false, "only list keycodes usable in macros")
	return cmd
}

func newCategoriesCmd(e *env) *cobra.Command {
	var (
		lang      string
		macroEdit bool
	)

	cmd := &cobra.Command{
		Use:   "categories [name]",
		Short: "List keycode categories, or the keys of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := e.categoryMap(lang, macroEdit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if !m.Has(args[0]) {
					return fmt.Errorf("unknown category %q", args[0])
				}
				return printKeys(out, m.Keys(args[0]))
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range m.Names() {
				fmt.Fprintf(tw, "%s\t%d\n", name, m.Len(name))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "label language: en-us, en-gb, ja-jp, de-de")
	cmd.Flags().BoolVar(&macroEdit, "macro", false, "list the macro-edit categories")
	return cmd
}

func printKeys(w io.Writer, keys []*keycodes.Key) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "0x%04X\t%s\t%s\n", k.Code(), k.Meta, strings.ReplaceAll(k.Label, "\n", " "))
	}
	return tw.Flush()
}

// =============================================================================
// Firmware
// =============================================================================

func newFirmwareCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmware",
		Short: "Manage stored firmware builds",
	}
	cmd.AddCommand(
		newFirmwareListCmd(e),
		newFirmwareUploadCmd(e),
		newFirmwareDownloadCmd(e),
		newFirmwareDeleteCmd(e),
		newFirmwareShowCmd(e),
	)
	return cmd
}

// withStore opens the store for one command.
func (e *env) withStore(fn func(ctx context.Context, store *firmware.SQLStore) error) error {
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func newFirmwareListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored firmwares, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withStore(func(ctx context.Context, store *firmware.SQLStore) error {
				list, err := store.List(ctx, e.cfg.Firmware.DefinitionID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "no firmware uploaded yet")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tNAME\tSIZE")
				for _, fw := range firmware.SortedHistory(list) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", shortID(fw.ID), fw.CreatedAt.Local().Format("2006-01-02 15:04"), fw.Name, fw.Size)
				}
				return tw.Flush()
			})
		},
	}
}

func newFirmwareUploadCmd(e *env) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a firmware file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := firmware.FileFromPath(args[0])
			if err != nil {
				return err
			}

			var form firmware.Form
			form.SetFile(file)
			form.SetName(strings.TrimSpace(name))
			form.SetDescription(strings.TrimSpace(description))
			upload, ok := form.Submit()
			if !ok {
				return errors.New("--name and --description are required")
			}

			return e.withStore(func(ctx context.Context, store *firmware.SQLStore) error {
				fw, err := store.Upload(ctx, e.cfg.Firmware.DefinitionID, upload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\n%s\n", fw.Name, shortID(fw.ID), fw.HashLabel())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "firmware name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "firmware description")
	return cmd
}

func newFirmwareDownloadCmd(e *env) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a stored firmware to a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = e.cfg.Firmware.DownloadDir
			}
			return e.withStore(func(ctx context.Context, store *firmware.SQLStore) error {
				fw, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				path, err := firmware.Download(ctx, store, fw, dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "o", "", "target directory (default from config)")
	return cmd
}

func newFirmwareDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored firmware",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(func(ctx context.Context, store *firmware.SQLStore) error {
				fw, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if err := store.Delete(ctx, fw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", fw.Name)
				return nil
			})
		},
	}
}

func newFirmwareShowCmd(e *env) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored firmware",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withStore(func(ctx context.Context, store *firmware.SQLStore) error {
				fw, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}

				renderer, err := glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(width),
				)
				if err != nil {
					return fmt.Errorf("markdown renderer: %w", err)
				}
				text, err := renderer.Render(firmwareMarkdown(fw))
				if err != nil {
					return fmt.Errorf("render firmware: %w", err)
				}
				_, err = io.WriteString(output(cmd.OutOrStdout()), text)
				return err
			})
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}

// firmwareMarkdown describes fw as a markdown document.
func firmwareMarkdown(fw firmware.Firmware) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", fw.Name)
	if fw.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", fw.Description)
	}
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| ID | `%s` |\n", fw.ID)
	fmt.Fprintf(&b, "| Keyboard | %s |\n", fw.DefinitionID)
	fmt.Fprintf(&b, "| Uploaded | %s |\n", fw.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "| File | `%s` (%d bytes) |\n", firmware.DownloadName(fw.Filename), fw.Size)
	fmt.Fprintf(&b, "| Hash | `%s` |\n", fw.HashLabel())
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
