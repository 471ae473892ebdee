package main

import (
	"fmt"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Manage storage locations",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List storage locations grouped by area",
	RunE:  runLocationsList,
}

var locationsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a storage location",
	Args:  cobra.ExactArgs(1),
	RunE:  runLocationsAdd,
}

var locationArea string

func init() {
	locationsAddCmd.Flags().StringVar(&locationArea, "area", "trailer", "Area: trailer, truck, or house")

	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsAddCmd)
}

func runLocationsList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	locations, err := client.Locations()
	if err != nil {
		return err
	}

	area := ""
	for _, loc := range locations {
		if loc.Area != area {
			area = loc.Area
			fmt.Printf("%s:\n", area)
		}
		fmt.Printf("  %-26s  %s\n", loc.ID, loc.Name)
	}
	return nil
}

func runLocationsAdd(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	loc, err := client.SaveLocation(&camperpack.Location{
		Name: args[0],
		Area: locationArea,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added location %s [%s]\n", loc.Name, loc.ID)
	return nil
}
