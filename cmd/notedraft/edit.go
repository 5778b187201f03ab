package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/autosave"
	"github.com/fyrsmithlabs/notedraft/internal/editor"
	"github.com/fyrsmithlabs/notedraft/internal/manifest"
	"github.com/fyrsmithlabs/notedraft/internal/recovery"
)

// Recovery modes for --recover.
const (
	recoverAsk    = "ask"
	recoverAlways = "always"
	recoverNever  = "never"
)

var (
	// edit command flags
	editManifest    string
	editOut         string
	editMetricsFile string
	editRecover     string
)

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editManifest, "manifest", "", "TOML file listing the fields to edit (default: a single note field)")
	editCmd.Flags().StringVar(&editOut, "out", "", "write submitted notes as JSON to this file instead of stdout")
	editCmd.Flags().StringVar(&editMetricsFile, "metrics-file", "", "write prometheus metrics in text format to this file on exit")
	editCmd.Flags().StringVar(&editRecover, "recover", recoverAsk, "what to do with saved drafts: ask, always or never")
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the note editor",
	Long: `Open the note editor.

Every field is saved as a draft at the configured interval while you type.
When a field has a saved draft that differs from its content, you are asked
whether to restore it. ctrl+s submits the focused field's form: its drafts
are cleared and the note is written as JSON. esc quits and keeps the drafts.

Examples:
  # Edit a single note
  notedraft edit

  # Edit the fields listed in a manifest and save submitted notes
  notedraft edit --manifest post.toml --out post.json

  # Restore every saved draft without asking
  notedraft edit --recover always`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(editManifest)
	if err != nil {
		return err
	}
	prompt, err := recoveryPrompt(editRecover, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	feed := editor.NewFeed()
	reg := autosave.NewRegistrar(a.store, prompt,
		autosave.WithInterval(a.cfg.Autosave.Interval.Duration()),
		autosave.WithLogger(a.logger),
		autosave.WithTracerProvider(a.tel.TracerProvider()),
		autosave.WithMeterProvider(a.tel.MeterProvider()),
		autosave.WithSavedHook(feed.Hook),
	)
	defer reg.Close()

	regs, texts := editor.Registrations(m)
	reg.Register(ctx, regs...)
	reg.Start(ctx)

	a.logger.Info(ctx, "editor opened",
		zap.Int("fields", len(m.Fields)),
		zap.Duration("interval", a.cfg.Autosave.Interval.Duration()),
		zap.String("backend", a.cfg.Store.Backend))

	model := editor.NewModel("notedraft", m, texts, reg, feed)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	reg.Close()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("running editor: %w", err)
	}

	var notes []editor.Note
	if fm, ok := final.(editor.Model); ok {
		notes = fm.Notes()
	}
	a.logger.Info(ctx, "editor closed", zap.Int("submitted", len(notes)))

	if err := writeNotes(notes, editOut, cmd.OutOrStdout()); err != nil {
		return err
	}
	if editMetricsFile != "" {
		if err := prometheus.WriteToTextfile(editMetricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("writing metrics file: %w", err)
		}
	}
	return nil
}

// loadManifest reads path, or returns the default manifest when path is empty.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(path)
}

// recoveryPrompt returns the prompt for a --recover mode.
func recoveryPrompt(mode string, in io.Reader, out io.Writer) (recovery.Prompt, error) {
	switch mode {
	case recoverAsk:
		return recovery.NewTerminal(recovery.WithInput(in), recovery.WithOutput(out)), nil
	case recoverAlways:
		return recovery.Static(true), nil
	case recoverNever:
		return recovery.Static(false), nil
	default:
		return nil, fmt.Errorf("invalid --recover %q (must be ask, always or never)", mode)
	}
}

// writeNotes writes notes as indented JSON to path, or to stdout when path is
// empty. Nothing is written when no form was submitted.
func writeNotes(notes []editor.Note, path string, stdout io.Writer) error {
	if len(notes) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing notes: %w", err)
	}
	return nil
}
