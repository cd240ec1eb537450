package boot

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const bannerArt = `
  _                 _
 | |__   ___   ___ | |_
 | '_ \ / _ \ / _ \| __|
 | |_) | (_) | (_) | |_
 |_.__/ \___/ \___/ \__|
`

func printBanner(w io.Writer, name, mode string, profiles []string) error {
	if _, err := color.New(color.FgCyan, color.Bold).Fprint(w, bannerArt); err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	label := color.New(color.Faint)
	_, err := fmt.Fprintf(w, " %s %s  %s %s  %s %s\n\n",
		label.Sprint("application:"), color.GreenString(name),
		label.Sprint("mode:"), mode,
		label.Sprint("profiles:"), strings.Join(profiles, ","))
	if err != nil {
		return fmt.Errorf("failed to write banner: %w", err)
	}
	return nil
}
