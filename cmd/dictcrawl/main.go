// Command dictcrawl builds the English–Vietnamese dictionary table.
//
// Subcommands:
//
//	crawl    initial pass over a word list, failures go to failed_words.txt
//	retry    fallback pass over a failure ledger, overwriting stored rows
//	merge    join English and Vietnamese Wiktionary dumps (JSONL)
//	migrate  apply the embedded schema migrations
//	lookup   print the stored row of a word
//	version  print build information
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	err := c.rootCmd().ExecuteContext(ctx)
	c.finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dictcrawl:", err)
		stop()
		os.Exit(1)
	}
}
