package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"munaypaq.game/internal/persistence/prefs"
	"munaypaq.game/internal/score"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "last":
			lastCmd(os.Args[2:])
			return
		case "reset-scores":
			resetCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "scores":
			scoresCmd(os.Args[2:])
			return
		}
	}
	scoresCmd(os.Args[1:])
}

func openStore(fs *flag.FlagSet, args []string) prefs.Store {
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	store, err := prefs.Open("sqlite", filepath.Join(*dataDir, "prefs.sqlite"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open prefs:", err)
		os.Exit(1)
	}
	return store
}

func scoresCmd(args []string) {
	fs := flag.NewFlagSet("scores", flag.ExitOnError)
	store := openStore(fs, args)
	defer store.Close()
	printScores(os.Stdout, score.LoadHighScores(store))
}

func lastCmd(args []string) {
	fs := flag.NewFlagSet("last", flag.ExitOnError)
	store := openStore(fs, args)
	defer store.Close()
	if !store.HasKey(score.KeyLastScore) {
		fmt.Println("no saved session")
		return
	}
	fmt.Printf("player=%s score=%s city_dirt=%d\n",
		store.GetString(score.KeyLastName, score.DefaultPlayerName),
		humanize.Comma(int64(store.GetInt(score.KeyLastScore, 0))),
		store.GetInt(score.KeyLastDirt, -1))
}

func resetCmd(args []string) {
	fs := flag.NewFlagSet("reset-scores", flag.ExitOnError)
	store := openStore(fs, args)
	defer store.Close()
	store.SetString(score.KeyHighScores, `{"entries":[]}`)
	if err := store.Save(); err != nil {
		fmt.Fprintln(os.Stderr, "save:", err)
		os.Exit(1)
	}
	fmt.Println("high scores cleared")
}

func printScores(out io.Writer, list score.List) {
	if len(list.Entries) == 0 {
		fmt.Fprintln(out, "no high scores")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tDIRT\tTIME\tDATE")
	for i, e := range list.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			humanize.Ordinal(i+1), e.PlayerName, humanize.Comma(int64(e.Score)),
			e.CityDirtLevel, formatDuration(e.DurationSeconds), e.Date)
	}
	_ = tw.Flush()
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
