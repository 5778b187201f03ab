package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/notedraft/internal/config"
	"github.com/fyrsmithlabs/notedraft/internal/draftstore"
)

var (
	// drafts command flags
	draftsOutputJSON bool
	draftsClearAll   bool
)

func init() {
	rootCmd.AddCommand(draftsCmd)
	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsGetCmd)
	draftsCmd.AddCommand(draftsClearCmd)
	draftsCmd.AddCommand(draftsWatchCmd)

	draftsListCmd.Flags().BoolVar(&draftsOutputJSON, "json", false, "Output results as JSON")
	draftsClearCmd.Flags().BoolVar(&draftsClearAll, "all", false, "Clear every draft of the configured origin")
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect the draft store",
	Long: `Inspect and manage saved drafts in the configured store.

Examples:
  # List saved drafts
  notedraft drafts list

  # Print the draft of the "content" field
  notedraft drafts get content

  # Remove drafts
  notedraft drafts clear title body
  notedraft drafts clear --all

  # Follow draft changes made by running editors (file backend only)
  notedraft drafts watch`,
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drafts",
	Args:  cobra.NoArgs,
	RunE:  runDraftsList,
}

var draftsGetCmd = &cobra.Command{
	Use:   "get <field-id>",
	Short: "Print the saved draft of a field",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsGet,
}

var draftsClearCmd = &cobra.Command{
	Use:   "clear [field-id...]",
	Short: "Remove saved drafts",
	RunE:  runDraftsClear,
}

var draftsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print draft changes as they happen (file backend only)",
	Args:  cobra.NoArgs,
	RunE:  runDraftsWatch,
}

// DraftInfo describes one saved draft.
type DraftInfo struct {
	FieldID string `json:"field_id"`
	Key     string `json:"key"`
	Bytes   int    `json:"bytes"`
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	drafts, err := listDrafts(ctx, a.store)
	if err != nil {
		return err
	}
	return printDrafts(cmd.OutOrStdout(), drafts, draftsOutputJSON)
}

// listDrafts returns every draft of the store in key order.
func listDrafts(ctx context.Context, store draftstore.Store) ([]DraftInfo, error) {
	keys, err := draftstore.Keys(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	drafts := make([]DraftInfo, 0, len(keys))
	for _, key := range keys {
		fieldID, ok := draftstore.FieldID(key)
		if !ok {
			continue
		}
		content, found, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading draft %s: %w", key, err)
		}
		if !found {
			continue
		}
		drafts = append(drafts, DraftInfo{FieldID: fieldID, Key: key, Bytes: len(content)})
	}
	return drafts, nil
}

func printDrafts(w io.Writer, drafts []DraftInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(drafts)
	}

	if len(drafts) == 0 {
		fmt.Fprintln(w, "No drafts saved.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tKEY\tBYTES")
	for _, d := range drafts {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", d.FieldID, d.Key, d.Bytes)
	}
	return tw.Flush()
}

func runDraftsGet(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	key := draftstore.Key(args[0])
	content, found, err := a.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading draft %s: %w", key, err)
	}
	if !found {
		return fmt.Errorf("no draft saved for field %q", args[0])
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), content)
	return err
}

func runDraftsClear(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !draftsClearAll {
		return errors.New("name at least one field id, or pass --all")
	}

	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	keys := make([]string, 0, len(args))
	for _, id := range args {
		keys = append(keys, draftstore.Key(id))
	}
	if draftsClearAll {
		all, err := draftstore.Keys(ctx, a.store)
		if err != nil {
			return fmt.Errorf("listing drafts: %w", err)
		}
		keys = all
	}

	var errs []error
	for _, key := range keys {
		if err := a.store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", key, err))
			continue
		}
		a.logger.Info(ctx, "draft removed", zap.String("key", key))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d draft(s).\n", len(keys)-len(errs))
	return errors.Join(errs...)
}

func runDraftsWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	if a.cfg.Store.Backend != config.BackendFile {
		return fmt.Errorf("watch needs the file backend, configured backend is %q", a.cfg.Store.Backend)
	}
	fs, err := draftstore.NewFileStore(a.cfg.Store.Path, a.cfg.Store.Origin)
	if err != nil {
		return err
	}
	w, err := draftstore.NewWatcher(fs, a.logger.Underlying())
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (ctrl+c to stop)\n", fs.Dir())
	for ev := range w.Events() {
		printEvent(cmd.OutOrStdout(), ev)
	}
	return nil
}

func printEvent(w io.Writer, ev draftstore.Event) {
	field, _ := draftstore.FieldID(ev.Key)
	fmt.Fprintf(w, "%s\t%s\t%s\n", ev.Timestamp.Format(time.RFC3339), ev.Op, field)
}
