package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/client"
)

// namedResource wires the shared create/get/update/delete/list/search
// commands for a resource whose records carry a name and a description.
type namedResource[T, C, U any] struct {
	noun      string
	svc       func() *client.ResourceService[T, C, U]
	newCreate func(name string, description *string) *C
	newUpdate func(name, description *string) *U
	view      view[T]
}

func newItemCmd() *cobra.Command {
	return namedResource[client.Item, client.CreateItemRequest, client.UpdateItemRequest]{
		noun: "item",
		svc:  func() *client.ResourceService[client.Item, client.CreateItemRequest, client.UpdateItemRequest] { return apiClient.Items },
		newCreate: func(name string, description *string) *client.CreateItemRequest {
			return &client.CreateItemRequest{Name: name, Description: description}
		},
		newUpdate: func(name, description *string) *client.UpdateItemRequest {
			return &client.UpdateItemRequest{Name: name, Description: description}
		},
		view: view[client.Item]{
			headers: []string{"ID", "NAME", "DESCRIPTION"},
			row:     func(r *client.Item) []string { return []string{r.ID, r.Name, deref(r.Description)} },
		},
	}.command("Manage items")
}

func newRoleCmd() *cobra.Command {
	return namedResource[client.Role, client.CreateRoleRequest, client.UpdateRoleRequest]{
		noun: "role",
		svc:  func() *client.ResourceService[client.Role, client.CreateRoleRequest, client.UpdateRoleRequest] { return apiClient.Roles },
		newCreate: func(name string, description *string) *client.CreateRoleRequest {
			return &client.CreateRoleRequest{Name: name, Description: description}
		},
		newUpdate: func(name, description *string) *client.UpdateRoleRequest {
			return &client.UpdateRoleRequest{Name: name, Description: description}
		},
		view: view[client.Role]{
			headers: []string{"ID", "NAME", "DESCRIPTION"},
			row:     func(r *client.Role) []string { return []string{r.ID, r.Name, deref(r.Description)} },
		},
	}.command("Manage roles")
}

func (r namedResource[T, C, U]) command(short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.noun,
		Short: short,
	}
	cmd.AddCommand(r.createCmd())
	cmd.AddCommand(getCmd(r.noun, r.svc, r.view))
	cmd.AddCommand(r.updateCmd())
	cmd.AddCommand(deleteCmd(r.noun, r.svc))
	cmd.AddCommand(r.listCmd())
	cmd.AddCommand(searchCmd(r.noun, "name", r.svc))
	return cmd
}

func (r namedResource[T, C, U]) createCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a " + r.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			rec, err := r.svc().Create(cmd.Context(), r.newCreate(args[0], desc))
			if err != nil {
				return fmt.Errorf("create %s: %w", r.noun, err)
			}
			return outputOne(r.view, rec)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func (r namedResource[T, C, U]) updateCmd() *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + r.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var namePtr, descPtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("description") {
				descPtr = &description
			}
			if namePtr == nil && descPtr == nil {
				return errors.New("nothing to update: set --name or --description")
			}
			rec, err := r.svc().Update(cmd.Context(), args[0], r.newUpdate(namePtr, descPtr))
			if err != nil {
				return fmt.Errorf("update %s: %w", r.noun, err)
			}
			return outputOne(r.view, rec)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func (r namedResource[T, C, U]) listCmd() *cobra.Command {
	var p pageFlags
	var name, description string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + r.noun + "s",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := p.listOptions(map[string]string{"name": name, "description": description})
			if err != nil {
				return err
			}
			page, err := r.svc().List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("list %ss: %w", r.noun, err)
			}
			return outputList(r.view, page.Rows, page.Count)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Filter by name substring")
	cmd.Flags().StringVar(&description, "description", "", "Filter by description substring")
	return cmd
}

func getCmd[T, C, U any](noun string, svc func() *client.ResourceService[T, C, U], v view[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a " + noun + " by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := svc().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get %s: %w", noun, err)
			}
			return outputOne(v, rec)
		},
	}
}

func deleteCmd[T, C, U any](noun string, svc func() *client.ResourceService[T, C, U]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", noun, err)
			}
			if flagFmt != "quiet" {
				fmt.Println("deleted")
			}
			return nil
		},
	}
}

// searchCmd runs an autocomplete lookup against field.
func searchCmd[T, C, U any](noun, field string, svc func() *client.ResourceService[T, C, U]) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find " + noun + "s by " + field + " prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must be non-negative")
			}
			opts, err := svc().Autocomplete(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("search %ss: %w", noun, err)
			}
			return outputList(view[client.AutocompleteOption]{
				headers: []string{"ID", strings.ToUpper(field)},
				row:     func(o *client.AutocompleteOption) []string { return []string{(*o)["id"], (*o)[field]} },
			}, opts, int64(len(opts)))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (server default 10)")
	return cmd
}

// pageFlags holds the shared pagination flags of list commands.
type pageFlags struct {
	limit, offset int
	orderBy       string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", 0, "Max results")
	cmd.Flags().IntVar(&p.offset, "offset", 0, "Offset")
	cmd.Flags().StringVar(&p.orderBy, "order-by", "", "Sort as field_ASC or field_DESC")
}

func (p *pageFlags) validate() error {
	if p.limit < 0 {
		return errors.New("--limit must be non-negative")
	}
	if p.offset < 0 {
		return errors.New("--offset must be non-negative")
	}
	return nil
}

func (p *pageFlags) listOptions(filters map[string]string) (*client.ListOptions, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	opts := &client.ListOptions{Limit: p.limit, Offset: p.offset, OrderBy: p.orderBy, Filters: map[string]string{}}
	for k, v := range filters {
		if v != "" {
			opts.Filters[k] = v
		}
	}
	return opts, nil
}
