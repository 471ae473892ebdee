package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/camperpack/camperpack"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <photo>",
	Short: "Identify inventory items in a photo",
	Long: `Send a photo to the vision model and list the camping items it
finds. Requires ANTHROPIC_API_KEY.

Example:
  camperpack identify pantry.jpg          # List everything in the photo
  camperpack identify mug.jpg --icon      # Suggest an icon for one item
  camperpack identify pantry.jpg --add    # Add identified items to inventory`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

var (
	identifyIcon bool
	identifyAdd  bool
)

func init() {
	identifyCmd.Flags().BoolVar(&identifyIcon, "icon", false, "Identify a single item and suggest an icon")
	identifyCmd.Flags().BoolVar(&identifyAdd, "add", false, "Add identified items to the inventory")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	mediaType := mime.TypeByExtension(filepath.Ext(args[0]))
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	mode := camperpack.VisionModeInventory
	if identifyIcon {
		mode = camperpack.VisionModeIcon
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	guesses, err := client.IdentifyItems(ctx, image, mediaType, mode)
	if errors.Is(err, camperpack.ErrVisionUnparseable) {
		fmt.Println("No items identified.")
		return nil
	}
	if err != nil {
		return err
	}

	if len(guesses) == 0 {
		fmt.Println("No items identified.")
		return nil
	}

	for _, g := range guesses {
		fmt.Printf("%s %s (%s)\n", g.Icon, g.Name, g.Category)
		if identifyAdd {
			item, err := client.SaveItem(&camperpack.Item{
				Name:     g.Name,
				Icon:     g.Icon,
				Category: g.Category,
				Quantity: 1,
			})
			if err != nil {
				return err
			}
			fmt.Printf("  added as %s\n", item.ID)
		}
	}
	return nil
}
