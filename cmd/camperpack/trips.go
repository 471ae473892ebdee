package main

import (
	"fmt"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Manage trips and packing checklists",
}

var tripsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trips",
	RunE:  runTripsList,
}

var tripsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a trip, optionally from a packing template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripsCreate,
}

var tripsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a trip and its checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripsDelete,
}

var tripsStatusCmd = &cobra.Command{
	Use:   "status [trip-id]",
	Short: "Show packing progress (defaults to the current trip)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTripsStatus,
}

var tripsPackCmd = &cobra.Command{
	Use:   "pack <trip-item-id>",
	Short: "Toggle a checklist entry between packed and unpacked",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripsPack,
}

var tripsAddItemCmd = &cobra.Command{
	Use:   "add-item <trip-id> <item-id>",
	Short: "Add an inventory item to a trip's checklist",
	Args:  cobra.ExactArgs(2),
	RunE:  runTripsAddItem,
}

var (
	tripTemplate    string
	tripDestination string
	tripStart       string
	tripEnd         string
	tripQuantity    int
)

func init() {
	tripsCreateCmd.Flags().StringVar(&tripTemplate, "template", "", "Packing template to build the checklist from")
	tripsCreateCmd.Flags().StringVar(&tripDestination, "destination", "", "Where the trip goes")
	tripsCreateCmd.Flags().StringVar(&tripStart, "start", "", "Start date (YYYY-MM-DD)")
	tripsCreateCmd.Flags().StringVar(&tripEnd, "end", "", "End date (YYYY-MM-DD)")

	tripsAddItemCmd.Flags().IntVar(&tripQuantity, "quantity", 1, "Quantity to pack")

	tripsCmd.AddCommand(tripsListCmd)
	tripsCmd.AddCommand(tripsCreateCmd)
	tripsCmd.AddCommand(tripsDeleteCmd)
	tripsCmd.AddCommand(tripsStatusCmd)
	tripsCmd.AddCommand(tripsPackCmd)
	tripsCmd.AddCommand(tripsAddItemCmd)
}

func runTripsList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	trips, err := client.Trips()
	if err != nil {
		return err
	}

	if len(trips) == 0 {
		fmt.Println("No trips yet.")
		return nil
	}

	for _, trip := range trips {
		line := fmt.Sprintf("%-26s  %s (%s)", trip.ID, trip.Name, trip.Status)
		if trip.Destination != "" {
			line += fmt.Sprintf("  → %s", trip.Destination)
		}
		if trip.StartDate != "" {
			line += fmt.Sprintf("  %s", trip.StartDate)
		}
		fmt.Println(line)
	}
	return nil
}

func runTripsCreate(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	trip := &camperpack.Trip{
		Name:        args[0],
		Destination: tripDestination,
		StartDate:   tripStart,
		EndDate:     tripEnd,
	}

	var saved *camperpack.Trip
	if tripTemplate != "" {
		saved, err = client.CreateTripFromTemplate(trip, tripTemplate)
	} else {
		saved, err = client.SaveTrip(trip)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created trip %s [%s]\n", saved.Name, saved.ID)
	if tripTemplate != "" {
		items, err := client.TripItems(saved.ID)
		if err == nil {
			fmt.Printf("Checklist seeded with %d items from template %s\n", len(items), tripTemplate)
		}
	}
	return nil
}

func runTripsDelete(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteTrip(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted trip %s\n", args[0])
	return nil
}

func runTripsStatus(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	var trip *camperpack.Trip
	if len(args) == 1 {
		trip, err = client.GetTrip(args[0])
	} else {
		trip, err = client.CurrentTrip()
	}
	if err != nil {
		return err
	}

	tripItems, err := client.TripItems(trip.ID)
	if err != nil {
		return err
	}

	packed := 0
	for _, ti := range tripItems {
		if ti.Packed != 0 {
			packed++
		}
	}

	fmt.Printf("%s (%s): %d/%d packed\n", trip.Name, trip.Status, packed, len(tripItems))
	for _, ti := range tripItems {
		mark := "[ ]"
		if ti.Packed != 0 {
			mark = "[x]"
		}
		name := ti.ItemID
		if item, err := client.GetItem(ti.ItemID); err == nil {
			name = fmt.Sprintf("%s %s", item.Icon, item.Name)
		}
		fmt.Printf("  %s %-26s  %s x%d\n", mark, ti.ID, name, ti.Quantity)
	}
	return nil
}

func runTripsPack(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ti, err := client.ToggleTripItemPacked(args[0])
	if err != nil {
		return err
	}

	if ti.Packed != 0 {
		fmt.Printf("Packed %s\n", ti.ID)
	} else {
		fmt.Printf("Unpacked %s\n", ti.ID)
	}
	return nil
}

func runTripsAddItem(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ti, err := client.AddTripItem(args[0], args[1], tripQuantity)
	if err != nil {
		return err
	}

	fmt.Printf("Added item %s to trip %s [%s]\n", args[1], args[0], ti.ID)
	return nil
}
