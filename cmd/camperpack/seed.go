package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed default packing templates and storage locations",
	Long: `Populate a fresh database with the default packing templates
(weekend, week, extended, day, special) and the standard trailer, truck,
and house storage locations. Does nothing if templates already exist.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Seed(); err != nil {
		return err
	}

	templates, err := client.Templates()
	if err != nil {
		return err
	}
	locations, err := client.Locations()
	if err != nil {
		return err
	}

	fmt.Printf("Store has %d templates and %d locations\n", len(templates), len(locations))
	return nil
}
