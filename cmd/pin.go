package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"crowdmarks/core/storage"
	"crowdmarks/feature/pins"

	"github.com/spf13/cobra"
)

var (
	pinName        string
	pinDescription string
	pinLatitude    float64
	pinLongitude   float64
	pinImage       string
)

// pinCmd is the parent command for pin operations.
var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Manage pins",
}

// pinAddCmd submits a pin the same way the HTTP endpoint does.
var pinAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Drop a new pin",
	Long: `Submits a pin with an optional photo.

Example:
  pin add --name Fountain --description "Old fountain" --lat 42.36 --lon -71.06 --image ./fountain.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logg.Sync()

		ctx := context.Background()

		sub := pins.Submission{
			Name:        pinName,
			Description: pinDescription,
			Latitude:    pinLatitude,
			Longitude:   pinLongitude,
		}
		if pinImage != "" {
			if sub.Image, err = os.ReadFile(pinImage); err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		fs, err := connectDocstore(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer fs.Close()

		feature := pins.NewFeature(pins.NewFirestoreStore(fs, cfg.Docstore.PinsCollection), client, cfg.Storage, logg)
		pin, err := feature.Service().Submit(ctx, sub)
		if err != nil {
			return err
		}

		out, _ := json.MarshalIndent(pin, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	pinAddCmd.Flags().StringVar(&pinName, "name", "", "Pin name")
	pinAddCmd.Flags().StringVar(&pinDescription, "description", "", "Pin description")
	pinAddCmd.Flags().Float64Var(&pinLatitude, "lat", 0, "Latitude")
	pinAddCmd.Flags().Float64Var(&pinLongitude, "lon", 0, "Longitude")
	pinAddCmd.Flags().StringVar(&pinImage, "image", "", "Path to a photo")
	_ = pinAddCmd.MarkFlagRequired("name")
	_ = pinAddCmd.MarkFlagRequired("description")

	pinCmd.AddCommand(pinAddCmd)
	RootCmd.AddCommand(pinCmd)
}
