package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jo-hoe/muralfolio/internal/client"
	"github.com/jo-hoe/muralfolio/internal/mapview"
)

func newMuralsCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "murals",
		Short: "List, inspect and add murals",
	}
	cmd.AddCommand(newMuralsListCmd(options), newMuralsShowCmd(options), newMuralsAddCmd(options))
	return cmd
}

func listMurals(cmd *cobra.Command, options *globalOptions, all bool) ([]client.Mural, error) {
	if all {
		return options.client().AdminListMurals(cmd.Context())
	}
	return options.client().ListMurals(cmd.Context())
}

func newMuralsListCmd(options *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List murals, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			murals, err := listMurals(cmd, options, all)
			if err != nil {
				return err
			}
			if len(murals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no murals")
				return nil
			}

			rows := make([][]string, 0, len(murals))
			for _, mural := range murals {
				year := ""
				if mural.Year != nil {
					year = strconv.Itoa(*mural.Year)
				}
				rows = append(rows, []string{
					mural.ID,
					mural.Title,
					year,
					fmt.Sprintf("%.5f, %.5f", mural.Latitude, mural.Longitude),
					strconv.FormatBool(mural.IsActive),
				})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "TITLE", "YEAR", "LOCATION", "ACTIVE").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive murals (requires an admin token)")
	return cmd
}

func newMuralsShowCmd(options *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the detail panel of one mural",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := mapview.NewView(mapview.DefaultOptions())
			defer view.Close()
			if err := view.Load(cmd.Context(), options.client()); err != nil {
				return err
			}
			if !view.SelectRecord(args[0]) {
				return fmt.Errorf("mural %s not found", args[0])
			}
			panel, _ := view.Panel()
			camera := view.Camera()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Render(panel.Title))
			if panel.Year != nil {
				fmt.Fprintf(out, "Year: %d\n", *panel.Year)
			}
			fmt.Fprintf(out, "Location: %.5f, %.5f\n", camera.Center.Lat(), camera.Center.Lon())
			if panel.Description != "" {
				fmt.Fprintln(out, panel.Description)
			}
			for _, item := range panel.Media {
				fmt.Fprintf(out, "- [%s] %s\n", item.Kind, item.URL)
			}
			return nil
		},
	}
}

func newMuralsAddCmd(options *globalOptions) *cobra.Command {
	var (
		input    client.NewMural
		year     int
		inactive bool
		files    []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload media and add a mural (requires an admin token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := options.client()
			if len(files) > 0 {
				uploads := make([]client.File, 0, len(files))
				for _, path := range files {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", path, err)
					}
					uploads = append(uploads, client.File{Name: filepath.Base(path), Data: data})
				}
				urls, err := c.UploadMedia(cmd.Context(), uploads)
				if err != nil {
					return err
				}
				input.Media = append(input.Media, urls...)
			}
			if cmd.Flags().Changed("year") {
				input.Year = &year
			}
			if inactive {
				active := false
				input.IsActive = &active
			}
			if err := c.CreateMural(cmd.Context(), input); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q with %d media item(s)\n", input.Title, len(input.Media))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&input.Title, "title", "", "mural title")
	flags.StringVar(&input.Description, "description", "", "mural description")
	flags.Float64Var(&input.Latitude, "lat", 0, "latitude")
	flags.Float64Var(&input.Longitude, "lng", 0, "longitude")
	flags.StringSliceVar(&input.Media, "media", nil, "existing media URLs")
	flags.StringSliceVar(&files, "file", nil, "local files to upload first")
	flags.IntVar(&year, "year", 0, "year completed")
	flags.BoolVar(&inactive, "inactive", false, "hide the mural from the public map")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
