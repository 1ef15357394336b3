// Package main prints a session report from the trade journal and the
// ledger snapshot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"updown-bot/internal/domain"
	"updown-bot/internal/storage"
	filestore "updown-bot/internal/storage/file"
	pgstore "updown-bot/internal/storage/postgres"
)

func main() {
	stateFile := flag.String("state-file", "./data/state.json", "Ledger snapshot file")
	journalFile := flag.String("journal-file", "./data/trades.jsonl", "Trade journal file")
	postgresDSN := flag.String("postgres-dsn", "", "Read from PostgreSQL instead of files")
	flag.Parse()

	ctx := context.Background()

	var snapshot storage.SnapshotStore
	var journal storage.JournalStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		snapshot = pgstore.NewSnapshotStore(pool)
		journal = pgstore.NewJournalStore(pool)
	} else {
		snapshot = filestore.NewSnapshotStore(*stateFile)
		journal = filestore.NewJournalStore(*journalFile)
	}

	state, err := snapshot.LoadState(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
			os.Exit(1)
		}
		state = domain.NewLedgerState()
	}

	records, err := journal.ReadAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		os.Exit(1)
	}

	printSummary(state, records)
	printOpenPositions(state)
	printClosedTrades(records)
}

func printSummary(state *domain.LedgerState, records []*domain.JournalRecord) {
	var entries, exits, wins int
	var volume float64
	for _, r := range records {
		switch r.Type {
		case domain.JournalEntry:
			entries++
			volume += r.Size * r.PriceCents / 100
		case domain.JournalExit:
			exits++
			if r.Pnl > 0 {
				wins++
			}
		}
	}

	fmt.Println("=== Session Summary ===")
	if state.StartTime != nil {
		fmt.Printf("Started:        %s\n", state.StartTime.Format(time.RFC3339))
	}
	fmt.Printf("Entries:        %d\n", entries)
	fmt.Printf("Closed trades:  %d\n", exits)
	if exits > 0 {
		fmt.Printf("Wins:           %d (%.1f%%)\n", wins, 100*float64(wins)/float64(exits))
	}
	fmt.Printf("Volume:         $%.2f\n", volume)
	fmt.Printf("Total PnL:      $%+.2f\n", state.TotalPnl)
	fmt.Printf("Open positions: %d\n", len(state.Positions))
}

func printOpenPositions(state *domain.LedgerState) {
	if len(state.Positions) == 0 {
		return
	}

	slugs := make([]string, 0, len(state.Positions))
	for slug := range state.Positions {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	fmt.Println("\n=== Open Positions ===")
	fmt.Printf("%-40s %-5s %10s %8s %10s\n", "SLUG", "SIDE", "CONTRACTS", "ENTRY", "COST")
	for _, slug := range slugs {
		p := state.Positions[slug]
		fmt.Printf("%-40s %-5s %10.2f %7.0fc %9.2f$\n",
			p.Slug, p.Side, p.Size, p.AvgPriceCents, p.Cost())
	}
}

func printClosedTrades(records []*domain.JournalRecord) {
	var exits []*domain.JournalRecord
	for _, r := range records {
		if r.Type == domain.JournalExit {
			exits = append(exits, r)
		}
	}
	if len(exits) == 0 {
		return
	}

	fmt.Println("\n=== Closed Trades ===")
	fmt.Printf("%-40s %-5s %-5s %8s %8s %10s\n", "SLUG", "SIDE", "WIN", "ENTRY", "EXIT", "PNL")
	for _, r := range exits {
		fmt.Printf("%-40s %-5s %-5s %7.0fc %7.0fc %+9.2f$\n",
			r.Slug, r.Side, r.Outcome, r.EntryPriceCents, r.ExitPriceCents, r.Pnl)
	}
}
