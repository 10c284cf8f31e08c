package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/orgadmin/internal/session"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sum := a.store.Summary()
			fmt.Printf("Companies:   %d\n", sum.Companies)
			fmt.Printf("Departments: %d\n", sum.Departments)
			fmt.Printf("Persons:     %d\n", sum.Persons)
			fmt.Printf("Tasks:       %d\n", sum.Tasks)
			return nil
		},
	}
}

func companiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List companies with their departments and persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			companies := a.store.Companies()
			if len(companies) == 0 {
				fmt.Println("No companies yet. Use 'orgadmin company add' to create one.")
				return nil
			}

			// Indexes are what the edit and delete commands take
			for ci, c := range companies {
				fmt.Printf("[%d] %s (id %d)\n", ci, c.Name, c.ID)
				for di, d := range c.Departments {
					fmt.Printf("  [%d] %s (id %d)\n", di, d.Name, d.ID)
					for pi, p := range d.Persons {
						fmt.Printf("    [%d] %s <%s> (id %d)\n", pi, p.Name, p.Email, p.ID)
					}
				}
			}
			return nil
		},
	}
}

func companyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Add, edit or delete companies",
	}

	var name string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.NewCompany(); err != nil {
				return err
			}
			c, err := a.ctrl.SaveCompany(cmd.Context(), session.CompanyInput{Name: name})
			if err != nil {
				return err
			}
			fmt.Printf("Added company %q (id %d)\n", c.Name, c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "company name")

	edit := &cobra.Command{
		Use:   "edit [index]",
		Short: "Rename a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, err := parseIndex(args[0], "company")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			current, err := a.ctrl.EditCompany(ci)
			if err != nil {
				return err
			}
			in := session.CompanyInput{Name: current.Name}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			c, err := a.ctrl.SaveCompany(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Saved company %q (id %d)\n", c.Name, c.ID)
			return nil
		},
	}
	edit.Flags().StringVar(&name, "name", "", "company name")

	var yes bool
	del := &cobra.Command{
		Use:   "delete [index]",
		Short: "Delete a company with all its departments and persons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ci, err := parseIndex(args[0], "company")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = runDelete(cmd, a, session.DeleteTarget{Kind: session.TargetCompany, Index: ci}, yes)
			return err
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(add, edit, del)
	return cmd
}

func departmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "department",
		Short: "Add, edit or delete departments of a company",
	}

	var ci int
	cmd.PersistentFlags().IntVarP(&ci, "company", "c", 0, "company index")

	var name string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := a.ctrl.EditCompany(ci)
			if err != nil {
				return err
			}
			if err := a.ctrl.NewDepartment(); err != nil {
				return err
			}
			d, err := a.ctrl.SaveDepartment(cmd.Context(), session.DepartmentInput{Name: name})
			if err != nil {
				return err
			}
			fmt.Printf("Added department %q (id %d) to %s\n", d.Name, d.ID, company.Name)
			return flushCompany(cmd.Context(), a, company.Name)
		},
	}
	add.Flags().StringVar(&name, "name", "", "department name")

	edit := &cobra.Command{
		Use:   "edit [index]",
		Short: "Rename a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			di, err := parseIndex(args[0], "department")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := a.ctrl.EditCompany(ci)
			if err != nil {
				return err
			}
			current, err := a.ctrl.EditDepartment(di)
			if err != nil {
				return err
			}
			in := session.DepartmentInput{Name: current.Name}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			d, err := a.ctrl.SaveDepartment(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Saved department %q (id %d)\n", d.Name, d.ID)
			return flushCompany(cmd.Context(), a, company.Name)
		},
	}
	edit.Flags().StringVar(&name, "name", "", "department name")

	var yes bool
	del := &cobra.Command{
		Use:   "delete [index]",
		Short: "Delete a department with all its persons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			di, err := parseIndex(args[0], "department")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := a.ctrl.EditCompany(ci)
			if err != nil {
				return err
			}
			deleted, err := runDelete(cmd, a, session.DeleteTarget{Kind: session.TargetDepartment, Index: di}, yes)
			if err != nil || !deleted {
				return err
			}
			return flushCompany(cmd.Context(), a, company.Name)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(add, edit, del)
	return cmd
}

func personCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Add, edit or delete persons of a department",
	}

	var ci, di int
	cmd.PersistentFlags().IntVarP(&ci, "company", "c", 0, "company index")
	cmd.PersistentFlags().IntVarP(&di, "department", "d", 0, "department index")

	var name, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := openDepartment(a, ci, di)
			if err != nil {
				return err
			}
			if err := a.ctrl.NewPerson(); err != nil {
				return err
			}
			p, err := a.ctrl.SavePerson(cmd.Context(), session.PersonInput{Name: name, Email: email})
			if err != nil {
				return err
			}
			fmt.Printf("Added person %q <%s> (id %d)\n", p.Name, p.Email, p.ID)
			return flushCompany(cmd.Context(), a, company)
		},
	}
	add.Flags().StringVar(&name, "name", "", "person name")
	add.Flags().StringVar(&email, "email", "", "person email")

	edit := &cobra.Command{
		Use:   "edit [index]",
		Short: "Change a person's name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pi, err := parseIndex(args[0], "person")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := openDepartment(a, ci, di)
			if err != nil {
				return err
			}
			current, err := a.ctrl.EditPerson(pi)
			if err != nil {
				return err
			}
			in := session.PersonInput{Name: current.Name, Email: current.Email}
			if cmd.Flags().Changed("name") {
				in.Name = name
			}
			if cmd.Flags().Changed("email") {
				in.Email = email
			}
			p, err := a.ctrl.SavePerson(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Saved person %q <%s> (id %d)\n", p.Name, p.Email, p.ID)
			return flushCompany(cmd.Context(), a, company)
		},
	}
	edit.Flags().StringVar(&name, "name", "", "person name")
	edit.Flags().StringVar(&email, "email", "", "person email")

	var yes bool
	del := &cobra.Command{
		Use:   "delete [index]",
		Short: "Delete a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pi, err := parseIndex(args[0], "person")
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := openDepartment(a, ci, di)
			if err != nil {
				return err
			}
			deleted, err := runDelete(cmd, a, session.DeleteTarget{Kind: session.TargetPerson, Index: pi}, yes)
			if err != nil || !deleted {
				return err
			}
			return flushCompany(cmd.Context(), a, company)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(add, edit, del)
	return cmd
}

// openDepartment opens the company and department scopes and returns the company name
func openDepartment(a *app, ci, di int) (string, error) {
	company, err := a.ctrl.EditCompany(ci)
	if err != nil {
		return "", err
	}
	if _, err := a.ctrl.EditDepartment(di); err != nil {
		return "", err
	}
	return company.Name, nil
}

// flushCompany re-saves the open company when nested changes are not exported
// on their own, so a one-shot command never drops them.
func flushCompany(ctx context.Context, a *app, name string) error {
	if !settings.DeferNestedExport {
		return nil
	}
	a.ctrl.CloseDepartment()
	_, err := a.ctrl.SaveCompany(ctx, session.CompanyInput{Name: name})
	return err
}

// runDelete asks for confirmation and then deletes. It reports whether anything was removed.
func runDelete(cmd *cobra.Command, a *app, target session.DeleteTarget, yes bool) (bool, error) {
	p, err := a.ctrl.RequestDelete(target)
	if err != nil {
		return false, err
	}
	if !confirm(cmd, p.Prompt, yes) {
		fmt.Println("Cancelled.")
		return false, a.ctrl.CancelDelete(p.Token)
	}
	if err := a.ctrl.ConfirmDelete(cmd.Context(), p.Token); err != nil {
		if errors.Is(err, session.ErrStaleDeletion) {
			return false, fmt.Errorf("nothing deleted: %w", err)
		}
		return false, err
	}
	fmt.Println("Deleted.")
	return true, nil
}
