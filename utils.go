package main

import (
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

func checkf(err error, format string, args ...any) {
	if err != nil {
		log.Printf(format, args...)
		log.Println()
		log.Fatalf("%+v", errors.WithStack(err))
	}
}

func assertf(ok bool, format string, args ...any) {
	if !ok {
		log.Printf(format, args...)
		log.Println()
		log.Fatalf("%+v", errors.Errorf("Should be true, but is false"))
	}
}

var (
	errc  = color.New(color.BgRed, color.FgWhite).PrintfFunc()
	warnc = color.New(color.FgYellow).PrintfFunc()
	okc   = color.New(color.FgGreen).PrintfFunc()
)

func oerr(msg string) {
	errc("\tERROR: " + msg + " ")
	fmt.Println()
}

// printCount prints one line of the final run report.
func printCount(label string, n int) {
	color.New(color.BgBlue, color.FgWhite).Printf(" %-12s ", label)
	fmt.Printf(" %d\n", n)
}
