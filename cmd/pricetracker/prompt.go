package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aluiziolira/go-price-tracker/config"
)

// promptConfig solicits run parameters interactively. Empty input keeps the
// value already in cfg; anything else goes through the same normalization as
// flags, so invalid input lands on the documented defaults.
func promptConfig(r io.Reader, w io.Writer, cfg *config.Config) {
	scanner := bufio.NewScanner(r)

	fmt.Fprintf(w, "How many products to collect? [%d]: ", cfg.TargetCount)
	if line := readLine(scanner); line != "" {
		cfg.TargetCount = config.ParseCount(line)
	}

	fmt.Fprintf(w, "Target currency code [%s]: ", cfg.TargetCurrency)
	if line := readLine(scanner); line != "" {
		cfg.TargetCurrency = config.NormalizeCurrency(line)
	}

	fmt.Fprintf(w, "Render comparison chart? [y/N]: ")
	cfg.Chart = parseYes(readLine(scanner))
}

func readLine(scanner *bufio.Scanner) string {
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
