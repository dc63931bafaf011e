package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"painel/internal/log"
	"painel/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the dashboard theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active theme",
	RunE: func(_ *cobra.Command, _ []string) error {
		printTheme(loadThemes().Current())
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(_ *cobra.Command, _ []string) error {
		t, err := loadThemes().Toggle()
		if err != nil {
			return err
		}
		printTheme(t)
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <" + theme.NameLight + "|" + theme.NameDark + ">",
	Short:     "Set the active theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{theme.NameLight, theme.NameDark},
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := loadThemes().Set(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		printTheme(t)
		return nil
	},
}

func init() {
	themeCmd.AddCommand(themeShowCmd, themeToggleCmd, themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}

// loadThemes opens the preference file. A broken file is reported and the default theme used.
func loadThemes() *theme.Store {
	s := theme.NewStore(cfg.ThemeFile)
	if err := s.Load(); err != nil {
		logger.Warn("Failed to load theme preference, using default", log.FieldError, err)
	}
	return s
}

func printTheme(t theme.Theme) {
	fmt.Printf("  Theme:      %s\n", t.Name)
	fmt.Printf("  Preference: %s\n", cfg.ThemeFile)
	fmt.Printf("  Accent:     %s\n", t.Chart.Accent)
	fmt.Printf("  Background: %s\n", t.Background)
}
