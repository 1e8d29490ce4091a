package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seaswell/rollcall/internal/infrastructure/sqlite"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List saved registration drafts",
	RunE:  runDraftsList,
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <draft-id>",
	Short: "Delete a saved draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsDelete,
}

func init() {
	draftsCmd.AddCommand(draftsDeleteCmd)
	rootCmd.AddCommand(draftsCmd)
}

func openDrafts() (*sqlite.DB, *sqlite.DraftRepository, error) {
	if !cfg.Drafts.Enabled {
		return nil, nil, fmt.Errorf("draft persistence is disabled in the config")
	}
	db, err := sqlite.NewDB(cfg.Drafts.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening draft store: %w", err)
	}
	return db, db.DraftRepository(), nil
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	db, repo, err := openDrafts()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	drafts, err := repo.List()
	if err != nil {
		return fmt.Errorf("listing drafts: %w", err)
	}
	if len(drafts) == 0 {
		cmd.Println("No saved drafts.")
		return nil
	}

	for _, d := range drafts {
		name := d.ProgramName
		if name == "" {
			name = "(no program selected)"
		}
		cmd.Printf("%s  %-30s  updated %s\n",
			d.ID, name, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDraftsDelete(cmd *cobra.Command, args []string) error {
	db, repo, err := openDrafts()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := repo.Delete(args[0]); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	cmd.Printf("Deleted draft %s\n", args[0])
	return nil
}
