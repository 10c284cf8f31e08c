package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbaille/orgadmin/internal/api"
	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/gateway"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export companies.json, config.json and tasks.json to the download directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.ExportAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("All documents exported to %s\n", a.exporter.Dir())
			fmt.Println("Replace the files in the data directory to make them current.")
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [document] [file]",
		Short: "Replace a document with a local JSON file and export the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseDocumentKind(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.ctrl.Import(kind, data)
			if err != nil {
				return fmt.Errorf("%s could not be imported, nothing changed: %w", args[1], err)
			}

			for _, path := range res.Dropped {
				fmt.Printf("warning: %s is not kept and will be missing from the export\n", path)
			}
			if !res.Changed {
				fmt.Printf("%s matches the current %s\n", args[1], kind.FileName())
			} else {
				fmt.Printf("%d change(s):\n", len(res.Patch))
				for _, op := range res.Patch {
					fmt.Printf("  %s %s\n", op.Type, op.Path)
				}
			}

			if dryRun {
				fmt.Println("(dry run, nothing exported)")
				return nil
			}
			if err := a.ctrl.Export(cmd.Context(), kind); err != nil {
				return err
			}
			fmt.Printf("%s loaded and exported to %s\n", args[1], a.exporter.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only show what would change")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived exports",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := getHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			records, err := h.List(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No exports yet.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %s  %s\n", r.ID[:8], r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.FileName)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of exports to show")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Print an archived export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := getHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			rec, err := h.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(rec.Content))
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore [id]",
		Short: "Write an archived export back to the download directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := getHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			rec, err := h.Get(args[0])
			if err != nil {
				return err
			}
			path, err := gateway.WriteFile(settings.DownloadDir, rec.FileName, rec.Content)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %s from %s\n", path, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.AddCommand(list, show, restore)
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator UI endpoints over one in-memory edit session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			// Note: don't defer a.Close() as server runs indefinitely

			server := api.New(a.ctrl, settings.Addr, a.log)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&settings.Addr, "addr", "a", settings.Addr, "server address")
	return cmd
}
