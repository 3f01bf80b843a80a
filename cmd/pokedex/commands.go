package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/directory"
	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/search"
)

// clearProgressLine clears the progress line from the terminal
const clearProgressLine = "\r                                        \r"

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Page through the whole directory and print names containing term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			stderr := cmd.ErrOrStderr()
			names, err := a.catalog.FetchAll(cmd.Context(), limit, func(loaded, page int) {
				fmt.Fprintf(stderr, "\rLoading... %d pokémon (page %d)", loaded, page)
			})
			fmt.Fprint(stderr, clearProgressLine)
			if err != nil {
				return fmt.Errorf("failed to load pokémon: %w", err)
			}

			return printNames(cmd.OutOrStdout(), search.Filter(names, args[0]))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "page size used while paging (default 100)")
	return cmd
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite Pokémon",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorites in name order",
			Args:  cobra.NoArgs,
			RunE: withDirectory(opts, func(cmd *cobra.Command, dir *directory.Directory, args []string) error {
				return printNames(cmd.OutOrStdout(), dir.Favorites())
			}),
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a favorite",
			Args:  cobra.ExactArgs(1),
			RunE: withDirectory(opts, func(cmd *cobra.Command, dir *directory.Directory, args []string) error {
				name := normalizeName(args[0])
				if err := dir.AddFavorite(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added to favorites\n", name)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Remove a favorite",
			Args:  cobra.ExactArgs(1),
			RunE: withDirectory(opts, func(cmd *cobra.Command, dir *directory.Directory, args []string) error {
				name := normalizeName(args[0])
				if !dir.IsFavorite(name) {
					return fmt.Errorf("%s is not a favorite", name)
				}
				if err := dir.RemoveFavorite(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites\n", name)
				return nil
			}),
		},
		newExportCmd(opts),
	)
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the favorites map to stdout",
		Args:  cobra.NoArgs,
		RunE: withDirectory(opts, func(cmd *cobra.Command, dir *directory.Directory, args []string) error {
			return exportFavorites(cmd.OutOrStdout(), dir.FavoritesMap(), format)
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// withDirectory opens the store for a subcommand and closes it afterwards.
func withDirectory(opts *rootOptions, fn func(*cobra.Command, *directory.Directory, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a.dir, args)
	}
}

func exportFavorites(w io.Writer, favorites map[string]string, format string) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(favorites)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(favorites); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func printNames(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
