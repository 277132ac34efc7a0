package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-climate-risk/internal/repository"
)

var pruneKeep int

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List prepared datasets in the snapshot store",
	RunE:  runSnapshots,
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	RunE:  runSnapshotsPrune,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsPruneCmd)

	snapshotsPruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "snapshots to keep (default DB_KEEP_SNAPSHOTS)")
}

func openRequiredStore() (*repository.SQLiteDB, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	db, err := openStore(cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("error opening snapshot store: %w", err)
	}
	if db == nil {
		return nil, 0, errors.New("snapshot store disabled: DB_PATH is empty")
	}
	return db, cfg.DB.KeepSnapshots, nil
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	db, _, err := openRequiredStore()
	if err != nil {
		return err
	}
	defer db.Close()

	infos, err := db.ListSnapshots(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HASH\tEVENTS\tCREATED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%d\t%s\n", info.Hash[:min(12, len(info.Hash))], info.EventCount, info.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runSnapshotsPrune(cmd *cobra.Command, args []string) error {
	db, keep, err := openRequiredStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if pruneKeep > 0 {
		keep = pruneKeep
	}

	removed, err := db.PruneSnapshots(context.Background(), keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshot(s), kept %d\n", removed, keep)
	return nil
}
