package main

import (
	"fmt"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage the camping inventory",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	RunE:  runItemsList,
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an inventory item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsAdd,
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an inventory item and its checklist references",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsDelete,
}

var (
	itemIcon     string
	itemCategory string
	itemLocation string
	itemQuantity int
	itemNotes    string
	itemCritical bool

	listCategory string
	listLocation string
	listCritical bool
)

func init() {
	itemsAddCmd.Flags().StringVar(&itemIcon, "icon", "", "Emoji for the item")
	itemsAddCmd.Flags().StringVar(&itemCategory, "category", "", "Item category")
	itemsAddCmd.Flags().StringVar(&itemLocation, "location", "", "Storage location")
	itemsAddCmd.Flags().IntVar(&itemQuantity, "quantity", 1, "Quantity to pack")
	itemsAddCmd.Flags().StringVar(&itemNotes, "notes", "", "Free-form notes")
	itemsAddCmd.Flags().BoolVar(&itemCritical, "critical", false, "Flag the item as trip-critical")

	itemsListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	itemsListCmd.Flags().StringVar(&listLocation, "location", "", "Filter by storage location")
	itemsListCmd.Flags().BoolVar(&listCritical, "critical", false, "Only show critical items")

	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsDeleteCmd)
}

func runItemsList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	var items []camperpack.Item
	switch {
	case listCritical:
		items, err = client.CriticalItems()
	case listCategory != "":
		items, err = client.ItemsByCategory(listCategory)
	case listLocation != "":
		items, err = client.ItemsByLocation(listLocation)
	default:
		items, err = client.Items()
	}
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("%-26s  %s %s", item.ID, item.Icon, item.Name)
		if item.Category != "" {
			line += fmt.Sprintf("  (%s)", item.Category)
		}
		if item.StorageLocation != "" {
			line += fmt.Sprintf("  @ %s", item.StorageLocation)
		}
		if item.IsCritical {
			line += "  [critical]"
		}
		fmt.Println(line)
	}
	return nil
}

func runItemsAdd(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	item := &camperpack.Item{
		Name:            args[0],
		Icon:            itemIcon,
		Category:        itemCategory,
		StorageLocation: itemLocation,
		Quantity:        itemQuantity,
		Notes:           itemNotes,
		IsCritical:      itemCritical,
	}

	saved, err := client.SaveItem(item)
	if err != nil {
		return err
	}

	fmt.Printf("Added %s %s [%s]\n", saved.Icon, saved.Name, saved.ID)
	return nil
}

func runItemsDelete(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteItem(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted item %s\n", args[0])
	return nil
}
