package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("86")).
	Margin(1, 0, 0, 0)

// OptionsCommand creates the options command
func OptionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "options",
		Usage: "List the persons, places, functions and shelfmarks offered for selection",
		Action: func(ctx context.Context, c *cli.Command) error {
			cat, err := loadCatalogue(ctx, c)
			if err != nil {
				return err
			}
			fmt.Println(renderOptions(cat))
			return nil
		},
	}
}

func renderOptions(cat *catalogue.Catalogue) string {
	var b strings.Builder
	section := func(title string, values []string) {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(values))))
		b.WriteString("\n")
		for _, v := range values {
			b.WriteString("  " + v + "\n")
		}
	}

	section("Persons", cat.Persons())
	section("Places", cat.Places())
	section("Functions", cat.Functions())
	for _, g := range cat.ShelfmarkGroups() {
		section("Shelfmarks "+g.Heading, g.Labels)
	}
	return strings.TrimRight(b.String(), "\n")
}
