package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII banner for the interactive runner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-green gradient.
	s1 := termenv.String("   __ _      _           __ _               ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("  / _(_) ___| |__   __ _/ _| | _____      __").Foreground(p.Color("#34d399"))
	s3 := termenv.String(" | |_| |/ __| '_ \\ / _` | |_| |/ _ \\ \\ /\\ / /").Foreground(p.Color("#4ade80"))
	s4 := termenv.String(" |  _| | (__| | | | (_| |  _| | (_) \\ V  V / ").Foreground(p.Color("#a3e635"))
	s5 := termenv.String(" |_| |_|\\___|_| |_|\\__,_|_| |_|\\___/ \\_/\\_/  ").Foreground(p.Color("#facc15"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
