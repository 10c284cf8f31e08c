package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/session"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage change types, risk levels, impact levels, priorities and categories",
	}

	list := &cobra.Command{
		Use:   "list [type]",
		Short: "List config items, optionally of a single list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			types := domain.ConfigListTypes
			if len(args) == 1 {
				types = []domain.ConfigListType{domain.ConfigListType(args[0])}
			}
			for _, t := range types {
				items, err := a.store.ConfigList(t)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s)\n", t.Title(), t)
				if len(items) == 0 {
					fmt.Println("  (empty)")
				}
				for i, item := range items {
					fmt.Printf("  [%d] %s  %s\n", i, item.ID, item.Name)
				}
			}
			return nil
		},
	}

	var id, name string
	add := &cobra.Command{
		Use:   "add [type]",
		Short: "Add an item to a config list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.NewConfigItem(domain.ConfigListType(args[0])); err != nil {
				return err
			}
			item, err := a.ctrl.SaveConfigItem(cmd.Context(), session.ConfigItemInput{ID: id, Name: name})
			if err != nil {
				return err
			}
			fmt.Printf("Added %s %q to %s\n", item.ID, item.Name, args[0])
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "item id")
	add.Flags().StringVar(&name, "name", "", "item name")

	edit := &cobra.Command{
		Use:   "edit [type] [index]",
		Short: "Change a config item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1], "item")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.ctrl.EditConfigItem(domain.ConfigListType(args[0]), i)
			if err != nil {
				return err
			}
			in := session.ConfigItemInput{ID: current.ID, Name: current.Name}
			if cmd.Flags().Changed("id") {
				in.ID = id
			}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			item, err := a.ctrl.SaveConfigItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s %q\n", item.ID, item.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&id, "id", "", "item id")
	edit.Flags().StringVar(&name, "name", "", "item name")

	var yes bool
	del := &cobra.Command{
		Use:   "delete [type] [index]",
		Short: "Delete a config item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex(args[1], "item")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			target := session.DeleteTarget{Kind: session.TargetConfigItem, Index: i, List: domain.ConfigListType(args[0])}
			_, err = runDelete(cmd, a, target, yes)
			return err
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(list, add, edit, del)
	return cmd
}
