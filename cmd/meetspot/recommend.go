package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetspot-ai/meetspot/internal/recommend"
)

func recommendCMD() *cobra.Command {
	var (
		cfgPath      string
		keywords     []string
		requirements string
		placeType    string
		radius       int
		asJSON       bool
	)
	var cmd = &cobra.Command{
		Use:   "recommend [locations...]",
		Short: "Recommend meeting venues for the given locations",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cfgPath)
			if err != nil {
				return err
			}

			timeout := a.cfg.General.DefaultTimeout
			if timeout <= 0 {
				timeout = 60 * time.Second
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := a.service.Recommend(ctx, recommend.Request{
				Locations:    args,
				Keywords:     keywords,
				Requirements: requirements,
				PlaceType:    placeType,
				Radius:       radius,
			})
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
			fmt.Print(result.Summary)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&keywords, "keywords", "k", []string{"咖啡馆"}, "venue categories")
	cmd.Flags().StringVarP(&requirements, "requirements", "r", "", "free-text preferences")
	cmd.Flags().StringVar(&placeType, "place-type", "", "AMap type code filter")
	cmd.Flags().IntVar(&radius, "radius", 0, "search radius in meters")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}
