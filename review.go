package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
)

func singleCharMode() {
	// Raw single-key input, no echo.
	exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1").Run()
	exec.Command("stty", "-F", "/dev/tty", "-echo").Run()
}

func saneMode() {
	exec.Command("stty", "-F", "/dev/tty", "sane").Run()
}

func printTxnSummary(t ledgerTxn, idx, total int) {
	color.New(color.BgBlue, color.FgWhite).Printf(" [%d of %d] ", idx+1, total)
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", t.Date)
	color.New(color.BgWhite, color.FgBlack).Printf(" %-60s", truncate(t.Memo, 60))
	color.New(color.BgRed, color.FgWhite).Printf(" %10s ", milliToMajor(t.Amount))
	fmt.Println()
}

// reviewTransactions walks the transactions nothing could match and lets the
// operator pick a category per transaction with single-key shortcuts.
// Returns the number of transactions updated.
func reviewTransactions(ctx context.Context, client *ledgerClient,
	txns []ledgerTxn, vocab *vocabulary) int {

	singleCharMode()
	defer saneMode()

	var ks keys.Shortcuts
	ks.BestEffortAssign('q', ".quit", "default")
	ks.BestEffortAssign('s', ".skip", "default")
	for _, name := range vocab.assignable() {
		ks.AutoAssign(name, "default")
	}

	var updated int
	for i, t := range txns {
		fmt.Println()
		printTxnSummary(t, i, len(txns))
		ks.Print("default", false)

		r := make([]byte, 1)
		if _, err := os.Stdin.Read(r); err != nil {
			return updated
		}
		opt, has := ks.MapsTo(rune(r[0]), "default")
		if !has {
			continue
		}
		switch opt {
		case ".quit":
			return updated
		case ".skip":
			continue
		}

		id, ok := vocab.id(opt)
		if !ok {
			continue
		}
		if err := client.updateTransaction(ctx, t.ID, replacementFor(t, id)); err != nil {
			warnc("Failed to update %v: %v\n", t.ID, err)
			continue
		}
		updated++
		okc("  %s -> %s\n", t.Date, opt)
	}
	return updated
}
