package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage packing templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packing templates",
	RunE:  runTemplatesList,
}

var templatesItemsCmd = &cobra.Command{
	Use:   "items <template-id>",
	Short: "Show the items in a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesItems,
}

var templatesSetItemsCmd = &cobra.Command{
	Use:   "set-items <template-id> <item-id>...",
	Short: "Replace a template's item list",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTemplatesSetItems,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesItemsCmd)
	templatesCmd.AddCommand(templatesSetItemsCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	templates, err := client.Templates()
	if err != nil {
		return err
	}

	for _, tpl := range templates {
		fmt.Printf("%-12s  %s (%d days)", tpl.ID, tpl.Name, tpl.DurationDays)
		if tpl.Notes != "" {
			fmt.Printf("  - %s", tpl.Notes)
		}
		fmt.Println()
	}
	return nil
}

func runTemplatesItems(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	tplItems, err := client.TemplateItems(args[0])
	if err != nil {
		return err
	}

	if len(tplItems) == 0 {
		fmt.Println("Template has no items.")
		return nil
	}

	for _, ti := range tplItems {
		name := ti.ItemID
		if item, err := client.GetItem(ti.ItemID); err == nil {
			name = fmt.Sprintf("%s %s", item.Icon, item.Name)
		}
		fmt.Printf("%-26s  %s\n", ti.ItemID, name)
	}
	return nil
}

func runTemplatesSetItems(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.SetTemplateItems(args[0], args[1:]); err != nil {
		return err
	}

	fmt.Printf("Template %s now has %d items\n", args[0], len(args)-1)
	return nil
}
